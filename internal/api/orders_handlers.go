package api

import (
	"errors"
	"net/http"

	"masterpieces-api/internal/storage"
)

const orderAcceptedMessage = "Заказ успешно оформлен! Мы свяжемся с вами в ближайшее время."
const botGreeting = "👋 Привет! Я бот магазина Natural Masterpieces.\n\n" +
	"Я помогу оформить заказ. Просто нажмите кнопку 'Заказать' на сайте!"

type telegramChat struct {
	ID int64 `json:"id"`
}

type telegramMessage struct {
	Chat telegramChat `json:"chat"`
	Text string       `json:"text"`
}

type orderRequest struct {
	Action        string           `json:"action"`
	Message       *telegramMessage `json:"message"`
	ProductIndex  *int             `json:"product_index"`
	ProductName   string           `json:"product_name"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	ContactMethod string           `json:"contact_method"`
	ContactValue  string           `json:"contact_value"`
	Comment       string           `json:"comment"`
}

// Orders accepts storefront order submissions and doubles as the Telegram
// webhook endpoint for the notification bot.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	switch {
	case req.Message != nil:
		h.handleBotUpdate(w, r, req)
	case req.Action == "create_order":
		h.createOrder(w, r, req)
	default:
		// Unknown webhook payloads are acknowledged so Telegram stops
		// redelivering them.
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (h *Handler) handleBotUpdate(w http.ResponseWriter, r *http.Request, req orderRequest) {
	if req.Message.Text == "/start" && h.Notifier != nil {
		if err := h.Notifier.SendTo(r.Context(), req.Message.Chat.ID, botGreeting); err != nil {
			h.logger().Warn("bot greeting failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, req orderRequest) {
	if req.ProductIndex == nil {
		writeError(w, http.StatusBadRequest, errors.New("product_index is required"))
		return
	}
	if req.ProductName == "" {
		writeError(w, http.StatusBadRequest, errors.New("product_name is required"))
		return
	}
	if req.CustomerName == "" {
		writeError(w, http.StatusBadRequest, errors.New("customer_name is required"))
		return
	}
	contactValue := req.ContactValue
	if contactValue == "" {
		contactValue = req.CustomerPhone
	}
	if contactValue == "" {
		writeError(w, http.StatusBadRequest, errors.New("customer_phone or contact_value is required"))
		return
	}
	contactMethod := req.ContactMethod
	if contactMethod == "" {
		contactMethod = "phone"
	}
	order, err := h.Store.CreateOrder(r.Context(), storage.CreateOrderParams{
		ProductIndex:  *req.ProductIndex,
		ProductName:   req.ProductName,
		CustomerName:  req.CustomerName,
		ContactMethod: contactMethod,
		ContactValue:  contactValue,
		Comment:       req.Comment,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.metrics().OrderCreated()
	if h.Notifier != nil {
		if err := h.Notifier.NotifyOrder(r.Context(), order); err != nil {
			h.metrics().NotifyFailed()
			h.logger().Warn("order notification failed", "order_id", order.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"order_id": order.ID,
		"message":  orderAcceptedMessage,
	})
}
