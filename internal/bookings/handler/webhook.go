package handler

import (
	"encoding/json"
	"net/http"

	"voyago/internal/bookings/service"
	httputil "voyago/pkg/http"
	"voyago/pkg/logger"
	"voyago/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WebhookResponse struct {
	Received bool   `json:"received"`
	Result   string `json:"result"`
}

// WebhookHandler accepts payment outcome deliveries over HTTP. The provider
// retries on any non-2xx status, so every request is answered 200 no matter
// what the payload did; the reconciler decides whether anything changes.
type WebhookHandler struct {
	reconciler *service.Reconciler
	log        *logger.Logger
}

func NewWebhookHandler(reconciler *service.Reconciler, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		log:        log,
	}
}

func (h *WebhookHandler) PaymentOutcome(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event model.PaymentOutcomeEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.log.Warn("Failed to decode payment webhook body, acknowledging", "error", err)
		httputil.WriteJSON(w, http.StatusOK, WebhookResponse{
			Received: true,
			Result:   string(service.ReconcileIgnored),
		})
		return
	}

	result := h.reconciler.Reconcile(r.Context(), &event)

	httputil.WriteJSON(w, http.StatusOK, WebhookResponse{
		Received: true,
		Result:   string(result),
	})
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/webhooks/payment", h.PaymentOutcome)
}
