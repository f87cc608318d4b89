package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"masterpieces-api/internal/models"
)

func TestSendMessagePayload(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
	}))
	defer server.Close()
	notifier := NewNotifier("bot-token", "42", WithBaseURL(server.URL))

	if err := notifier.SendMessage(context.Background(), "привет"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotPayload["chat_id"] != "42" || gotPayload["text"] != "привет" || gotPayload["parse_mode"] != "HTML" {
		t.Fatalf("unexpected payload: %v", gotPayload)
	}
}

func TestSendToOverridesChat(t *testing.T) {
	var gotPayload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
	}))
	defer server.Close()
	notifier := NewNotifier("bot-token", "", WithBaseURL(server.URL))

	if err := notifier.SendTo(context.Background(), 777, "здравствуйте"); err != nil {
		t.Fatalf("SendTo returned error: %v", err)
	}
	if gotPayload["chat_id"] != "777" {
		t.Fatalf("expected chat 777, got %v", gotPayload)
	}
}

func TestDisabledNotifierSendsNothing(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	notifier := NewNotifier("", "42", WithBaseURL(server.URL))
	if notifier.Enabled() {
		t.Fatal("expected notifier without token to be disabled")
	}
	if err := notifier.SendMessage(context.Background(), "x"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no API calls, got %d", calls)
	}
}

func TestSendMessageNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	notifier := NewNotifier("bot-token", "42", WithBaseURL(server.URL))

	if err := notifier.SendMessage(context.Background(), "x"); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestNotifyOrderEscapesHTML(t *testing.T) {
	var gotPayload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
	}))
	defer server.Close()
	notifier := NewNotifier("bot-token", "42", WithBaseURL(server.URL))

	order := models.Order{
		ID:            7,
		ProductIndex:  2,
		ProductName:   "Ваза <script>",
		CustomerName:  "Игорь",
		ContactMethod: "phone",
		ContactValue:  "+79990001122",
		Comment:       "без комментария & спасибо",
		CreatedAt:     time.Now(),
	}
	if err := notifier.NotifyOrder(context.Background(), order); err != nil {
		t.Fatalf("NotifyOrder returned error: %v", err)
	}
	text := gotPayload["text"]
	if !strings.Contains(text, "Новый заказ #7") {
		t.Fatalf("expected order header with id, got %q", text)
	}
	if strings.Contains(text, "<script>") {
		t.Fatalf("expected HTML-escaped product name, got %q", text)
	}
	if !strings.Contains(text, "&lt;script&gt;") {
		t.Fatalf("expected escaped entities, got %q", text)
	}
	if !strings.Contains(text, "&amp; спасибо") {
		t.Fatalf("expected escaped comment, got %q", text)
	}
	// Storefront numbering is 1-based, so index 2 renders as №3.
	if !strings.Contains(text, "№3. ") {
		t.Fatalf("expected 1-based product number in message, got %q", text)
	}
	if !strings.Contains(text, "<b>Телефон:</b> +79990001122") {
		t.Fatalf("expected phone contact line, got %q", text)
	}
	if !strings.Contains(text, "<b>Время:</b>") {
		t.Fatalf("expected order timestamp line, got %q", text)
	}
}
