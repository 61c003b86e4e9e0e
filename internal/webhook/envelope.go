package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope is the generic gateway event shape. Different providers name
// their fields differently, so every accessor tries an ordered list of
// synonyms and returns the first match; the order in each accessor is
// the documented precedence.
type Envelope struct {
	Event string
	Data  map[string]interface{}
	Raw   []byte
}

func ParseEnvelope(raw []byte) (*Envelope, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	env := &Envelope{Raw: raw}

	// Event name: event > type.
	env.Event, _ = firstString(payload, "event", "type")

	// Event data: data > payload > the root object itself.
	env.Data = payload
	for _, key := range []string{"data", "payload"} {
		if m, ok := payload[key].(map[string]interface{}); ok {
			env.Data = m
			break
		}
	}

	return env, nil
}

// IsCaptured reports whether the event signals a successful capture,
// accepting the synonyms gateways use for it.
func (e *Envelope) IsCaptured() bool {
	switch e.Event {
	case "payment.captured", "payment.succeeded", "payment.success":
		return true
	}
	return false
}

func (e *Envelope) IsFailed() bool {
	return e.Event == "payment.failed"
}

// ProviderPaymentID precedence: id > payment_id > providerPaymentId.
func (e *Envelope) ProviderPaymentID() string {
	s, _ := firstString(e.Data, "id", "payment_id", "providerPaymentId")
	return s
}

// OrderID precedence: order_id > orderId > order_id_raw > order >
// payload.payment.entity.order_id.
func (e *Envelope) OrderID() string {
	if s, ok := firstString(e.Data, "order_id", "orderId", "order_id_raw", "order"); ok {
		return s
	}
	if entity := dig(e.Data, "payload", "payment", "entity"); entity != nil {
		s, _ := firstString(entity, "order_id")
		return s
	}
	return ""
}

// Amount precedence: amount > value > payload.payment.entity.amount.
func (e *Envelope) Amount() float64 {
	if f, ok := firstNumber(e.Data, "amount", "value"); ok {
		return f
	}
	if entity := dig(e.Data, "payload", "payment", "entity"); entity != nil {
		f, _ := firstNumber(entity, "amount")
		return f
	}
	return 0
}

// Currency defaults to INR when the payload does not carry one.
func (e *Envelope) Currency() string {
	if s, ok := firstString(e.Data, "currency"); ok {
		return s
	}
	return "INR"
}

// RestaurantID precedence: restaurantId > restaurant_id.
func (e *Envelope) RestaurantID() string {
	s, _ := firstString(e.Data, "restaurantId", "restaurant_id")
	return s
}

func firstString(m map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func firstNumber(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func dig(m map[string]interface{}, keys ...string) map[string]interface{} {
	current := m
	for _, key := range keys {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return current
}
