// Package metrics aggregates in-memory counters for HTTP traffic and the
// shop's business events, and renders them in Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
)

type requestLabel struct {
	method string
	path   string
	status string
}

// Recorder aggregates request counters plus order, upload, vision, and
// notification event counters. It is safe for concurrent use.
type Recorder struct {
	mu              sync.RWMutex
	requestCount    map[requestLabel]uint64
	requestDuration map[requestLabel]float64
	orderCount      uint64
	uploadCount     map[string]uint64
	visionCount     map[string]uint64
	notifyFailures  uint64
}

var defaultRecorder = New()

// New constructs an empty Recorder.
func New() *Recorder {
	return &Recorder{
		requestCount:    make(map[requestLabel]uint64),
		requestDuration: make(map[requestLabel]float64),
		uploadCount:     make(map[string]uint64),
		visionCount:     make(map[string]uint64),
	}
}

// Default returns the singleton Recorder shared across the process.
func Default() *Recorder {
	return defaultRecorder
}

// ObserveRequest accumulates request count and cumulative duration by HTTP
// method, path, and status code.
func (r *Recorder) ObserveRequest(method, path string, status int, seconds float64) {
	label := requestLabel{
		method: strings.ToUpper(method),
		path:   path,
		status: fmt.Sprintf("%d", status),
	}
	r.mu.Lock()
	r.requestCount[label]++
	r.requestDuration[label] += seconds
	r.mu.Unlock()
}

// OrderCreated records a successfully stored order.
func (r *Recorder) OrderCreated() {
	r.mu.Lock()
	r.orderCount++
	r.mu.Unlock()
}

// UploadObserved records an upload attempt by outcome ("ok", "rejected",
// "failed").
func (r *Recorder) UploadObserved(outcome string) {
	r.mu.Lock()
	r.uploadCount[outcome]++
	r.mu.Unlock()
}

// VisionObserved records a photo analysis attempt by outcome ("ok",
// "upstream_error", "parse_error").
func (r *Recorder) VisionObserved(outcome string) {
	r.mu.Lock()
	r.visionCount[outcome]++
	r.mu.Unlock()
}

// NotifyFailed records a dropped order notification.
func (r *Recorder) NotifyFailed() {
	r.mu.Lock()
	r.notifyFailures++
	r.mu.Unlock()
}

// Reset clears all counters, for tests.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestCount = make(map[requestLabel]uint64)
	r.requestDuration = make(map[requestLabel]float64)
	r.orderCount = 0
	r.uploadCount = make(map[string]uint64)
	r.visionCount = make(map[string]uint64)
	r.notifyFailures = 0
}

// Handler exposes the Recorder as an http.Handler that writes Prometheus text
// exposition data with the appropriate content type.
func (r *Recorder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.Write(w)
	})
}

// Write renders the metrics in Prometheus text format, sorting label sets to
// provide stable output for scrapes and tests.
func (r *Recorder) Write(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requestLabels := r.sortedRequestLabels()

	fmt.Fprintln(w, "# HELP masterpieces_http_requests_total Total number of HTTP requests processed by the API")
	fmt.Fprintln(w, "# TYPE masterpieces_http_requests_total counter")
	for _, label := range requestLabels {
		fmt.Fprintf(w, "masterpieces_http_requests_total{method=%q,path=%q,status=%q} %d\n", label.method, label.path, label.status, r.requestCount[label])
	}

	fmt.Fprintln(w, "# HELP masterpieces_http_request_duration_seconds_sum Cumulative duration of HTTP requests in seconds")
	fmt.Fprintln(w, "# TYPE masterpieces_http_request_duration_seconds_sum counter")
	for _, label := range requestLabels {
		fmt.Fprintf(w, "masterpieces_http_request_duration_seconds_sum{method=%q,path=%q,status=%q} %f\n", label.method, label.path, label.status, r.requestDuration[label])
	}

	fmt.Fprintln(w, "# HELP masterpieces_orders_total Total number of orders accepted")
	fmt.Fprintln(w, "# TYPE masterpieces_orders_total counter")
	fmt.Fprintf(w, "masterpieces_orders_total %d\n", r.orderCount)

	fmt.Fprintln(w, "# HELP masterpieces_uploads_total Upload attempts by outcome")
	fmt.Fprintln(w, "# TYPE masterpieces_uploads_total counter")
	for _, outcome := range sortedKeys(r.uploadCount) {
		fmt.Fprintf(w, "masterpieces_uploads_total{outcome=%q} %d\n", outcome, r.uploadCount[outcome])
	}

	fmt.Fprintln(w, "# HELP masterpieces_vision_analyses_total Photo analysis attempts by outcome")
	fmt.Fprintln(w, "# TYPE masterpieces_vision_analyses_total counter")
	for _, outcome := range sortedKeys(r.visionCount) {
		fmt.Fprintf(w, "masterpieces_vision_analyses_total{outcome=%q} %d\n", outcome, r.visionCount[outcome])
	}

	fmt.Fprintln(w, "# HELP masterpieces_notify_failures_total Order notifications that could not be delivered")
	fmt.Fprintln(w, "# TYPE masterpieces_notify_failures_total counter")
	fmt.Fprintf(w, "masterpieces_notify_failures_total %d\n", r.notifyFailures)
}

func (r *Recorder) sortedRequestLabels() []requestLabel {
	labels := make([]requestLabel, 0, len(r.requestCount))
	for label := range r.requestCount {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].method != labels[j].method {
			return labels[i].method < labels[j].method
		}
		if labels[i].path != labels[j].path {
			return labels[i].path < labels[j].path
		}
		return labels[i].status < labels[j].status
	})
	return labels
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
