package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"masterpieces-api/internal/notify"
)

// telegramStub records sendMessage calls made through the notifier.
type telegramStub struct {
	mu       sync.Mutex
	requests []map[string]string
	status   int
}

func newTelegramStub(status int) (*telegramStub, *httptest.Server) {
	stub := &telegramStub{status: status}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			stub.mu.Lock()
			stub.requests = append(stub.requests, payload)
			stub.mu.Unlock()
		}
		w.WriteHeader(stub.status)
	}))
	return stub, server
}

func (s *telegramStub) sent() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.requests...)
}

func TestCreateOrderValidation(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing product_index", map[string]interface{}{
			"action": "create_order", "product_name": "Ваза", "customer_name": "Игорь", "customer_phone": "+79990001122",
		}},
		{"missing product_name", map[string]interface{}{
			"action": "create_order", "product_index": 1, "customer_name": "Игорь", "customer_phone": "+79990001122",
		}},
		{"missing customer_name", map[string]interface{}{
			"action": "create_order", "product_index": 1, "product_name": "Ваза", "customer_phone": "+79990001122",
		}},
		{"missing contact", map[string]interface{}{
			"action": "create_order", "product_index": 1, "product_name": "Ваза", "customer_name": "Игорь",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, handler.Orders, http.MethodPost, "http://localhost/api/orders", tc.payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateOrderNotifiesOwner(t *testing.T) {
	handler, store := newTestHandler(t)
	stub, server := newTelegramStub(http.StatusOK)
	defer server.Close()
	handler.Notifier = notify.NewNotifier("test-token", "100", notify.WithBaseURL(server.URL))

	rec := doJSON(t, handler.Orders, http.MethodPost, "http://localhost/api/orders", map[string]interface{}{
		"action":         "create_order",
		"product_index":  3,
		"product_name":   "Ваза «Енисей»",
		"customer_name":  "Игорь",
		"customer_phone": "+79990001122",
		"comment":        "Подарочная упаковка",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	if resp["success"] != true || resp["message"] != orderAcceptedMessage {
		t.Fatalf("unexpected response: %v", resp)
	}
	if resp["order_id"] == nil {
		t.Fatal("expected order_id in response")
	}

	orders := store.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected 1 stored order, got %d", len(orders))
	}
	if orders[0].ContactMethod != "phone" {
		t.Fatalf("expected contact method to default to phone, got %q", orders[0].ContactMethod)
	}
	if orders[0].ContactValue != "+79990001122" {
		t.Fatalf("expected phone as contact value, got %q", orders[0].ContactValue)
	}

	sent := stub.sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 telegram message, got %d", len(sent))
	}
	if sent[0]["chat_id"] != "100" || sent[0]["parse_mode"] != "HTML" {
		t.Fatalf("unexpected telegram payload: %v", sent[0])
	}
}

func TestCreateOrderSurvivesNotificationFailure(t *testing.T) {
	handler, store := newTestHandler(t)
	_, server := newTelegramStub(http.StatusBadGateway)
	defer server.Close()
	handler.Notifier = notify.NewNotifier("test-token", "100", notify.WithBaseURL(server.URL))

	rec := doJSON(t, handler.Orders, http.MethodPost, "http://localhost/api/orders", map[string]interface{}{
		"action":         "create_order",
		"product_index":  1,
		"product_name":   "Кувшин",
		"customer_name":  "Мария",
		"contact_value":  "@maria",
		"contact_method": "telegram",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected order to succeed despite delivery failure, got %d", rec.Code)
	}
	if len(store.Orders()) != 1 {
		t.Fatal("expected order to be stored")
	}
}

func TestBotStartCommandReplies(t *testing.T) {
	handler, _ := newTestHandler(t)
	stub, server := newTelegramStub(http.StatusOK)
	defer server.Close()
	handler.Notifier = notify.NewNotifier("test-token", "100", notify.WithBaseURL(server.URL))

	rec := doJSON(t, handler.Orders, http.MethodPost, "http://localhost/api/orders", map[string]interface{}{
		"message": map[string]interface{}{
			"chat": map[string]interface{}{"id": 777},
			"text": "/start",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]bool
	decodeBody(t, rec, &resp)
	if !resp["ok"] {
		t.Fatalf("expected ok acknowledgement, got %v", resp)
	}

	sent := stub.sent()
	if len(sent) != 1 {
		t.Fatalf("expected greeting to be sent, got %d messages", len(sent))
	}
	if sent[0]["chat_id"] != "777" {
		t.Fatalf("expected reply to originating chat, got %v", sent[0])
	}
	if sent[0]["text"] != botGreeting {
		t.Fatalf("unexpected greeting text: %q", sent[0]["text"])
	}
}

func TestUnknownWebhookPayloadAcknowledged(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Orders, http.MethodPost, "http://localhost/api/orders", map[string]interface{}{
		"edited_message": map[string]interface{}{"text": "typo fix"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]bool
	decodeBody(t, rec, &resp)
	if !resp["ok"] {
		t.Fatalf("expected ok acknowledgement, got %v", resp)
	}
}
