package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/restom/restom-backend/internal/domain"
	"github.com/restom/restom-backend/internal/http/response"
	"github.com/restom/restom-backend/internal/webhook"
	"github.com/restom/restom-backend/pkg/logger"
)

// CreatePayment records a payment initiation in the created state.
func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	record, err := h.reconcileService.CreatePayment(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"id":       record.ID,
			"orderId":  record.OrderID,
			"amount":   record.Amount,
			"currency": record.Currency,
			"status":   record.Status,
		},
	})
}

// PaymentWebhook receives gateway callbacks. This is the one endpoint
// that must see the unmodified request body: the signature covers the
// exact bytes on the wire, so the body is read raw here and never
// routed through JSON middleware first.
func (h *Handlers) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Failed to read request body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if signature == "" {
		signature = r.Header.Get("X-Signature")
	}

	if err := h.verifier.Authenticate(r.Context(), raw, signature); err != nil {
		writeDomainError(w, err)
		return
	}

	// Once the signature has passed, the gateway always gets a 200.
	// Reconciliation problems are logged, not surfaced.
	env, err := webhook.ParseEnvelope(raw)
	if err != nil {
		logger.WarnContext(r.Context(), "Unparseable webhook payload", "error", err)
		response.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
		return
	}

	h.reconcileService.Reconcile(r.Context(), env)

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
