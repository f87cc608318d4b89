// Package notify delivers order notifications to the shop owner via the
// Telegram Bot API. Delivery failures never block order creation; callers log
// and continue.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"masterpieces-api/internal/models"
)

const (
	defaultBaseURL        = "https://api.telegram.org"
	defaultRequestTimeout = 10 * time.Second
)

// Option configures a Notifier.
type Option func(*Notifier)

// WithBaseURL points the notifier at a different API host, for tests.
func WithBaseURL(baseURL string) Option {
	return func(n *Notifier) {
		if baseURL != "" {
			n.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// Notifier sends messages through a Telegram bot to a fixed chat. A notifier
// without a token or chat ID is disabled and silently drops messages.
type Notifier struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// NewNotifier constructs a Telegram notifier.
func NewNotifier(token, chatID string, opts ...Option) *Notifier {
	notifier := &Notifier{
		token:      token,
		chatID:     chatID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(notifier)
		}
	}
	return notifier
}

// Enabled reports whether both the bot token and chat ID are configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.token != "" && n.chatID != ""
}

// SendMessage posts an HTML-formatted message to the configured chat.
func (n *Notifier) SendMessage(ctx context.Context, text string) error {
	if !n.Enabled() {
		return nil
	}
	return n.send(ctx, n.chatID, text)
}

// SendTo posts an HTML-formatted message to an arbitrary chat, used for
// webhook replies. It only needs the bot token.
func (n *Notifier) SendTo(ctx context.Context, chatID int64, text string) error {
	if n == nil || n.token == "" {
		return nil
	}
	return n.send(ctx, fmt.Sprintf("%d", chatID), text)
}

func (n *Notifier) send(ctx context.Context, chatID, text string) error {
	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := n.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("send telegram message: unexpected status %d", response.StatusCode)
	}
	return nil
}

// NotifyOrder formats and sends the new-order message. The product is shown
// with its 1-based storefront number.
func (n *Notifier) NotifyOrder(ctx context.Context, order models.Order) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "📦 <b>Новый заказ #%d</b>\n\n", order.ID)
	fmt.Fprintf(&builder, "<b>Товар:</b> №%d. %s\n", order.ProductIndex+1, html.EscapeString(order.ProductName))
	fmt.Fprintf(&builder, "<b>Клиент:</b> %s\n", html.EscapeString(order.CustomerName))
	if order.ContactMethod == "phone" {
		fmt.Fprintf(&builder, "<b>Телефон:</b> %s\n", html.EscapeString(order.ContactValue))
	} else {
		fmt.Fprintf(&builder, "<b>Связь:</b> %s — %s\n", html.EscapeString(order.ContactMethod), html.EscapeString(order.ContactValue))
	}
	if order.Comment != "" {
		fmt.Fprintf(&builder, "<b>Комментарий:</b> %s\n", html.EscapeString(order.Comment))
	}
	fmt.Fprintf(&builder, "<b>Время:</b> %s", order.CreatedAt.Format("02.01.2006 15:04"))
	return n.SendMessage(ctx, builder.String())
}
