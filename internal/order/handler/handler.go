package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/httpx"
	"github.com/fekuna/omnipos-availability-service/internal/order"
	"github.com/fekuna/omnipos-availability-service/internal/order/dto"
	"github.com/fekuna/omnipos-availability-service/internal/shopify"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	uc     order.UseCase
	secret string
	logger logger.ZapLogger
}

func NewWebhookHandler(uc order.UseCase, secret string, log logger.ZapLogger) *WebhookHandler {
	return &WebhookHandler{
		uc:     uc,
		secret: secret,
		logger: log,
	}
}

// Orders receives every orders/* webhook topic. A non 2xx answer makes
// Shopify redeliver, which ingestion tolerates.
func (h *WebhookHandler) Orders(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, httpx.MaxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if !shopify.VerifyWebhook(body, r.Header.Get(shopify.HeaderHmac), h.secret) {
		h.logger.Warn("Webhook HMAC verification failed",
			zap.String("shop_domain", r.Header.Get(shopify.HeaderShopDomain)),
			zap.String("topic", r.Header.Get(shopify.HeaderTopic)),
		)
		http.Error(w, "Invalid webhook signature", http.StatusUnauthorized)
		return
	}

	input := &dto.IngestInput{
		ShopDomain: r.Header.Get(shopify.HeaderShopDomain),
		Topic:      r.Header.Get(shopify.HeaderTopic),
	}
	if err := json.Unmarshal(body, &input.Order); err != nil {
		httpx.WriteError(w, h.logger, r, apperr.NewValidation("body", "invalid order payload"))
		return
	}

	result, err := h.uc.Ingest(r.Context(), input)
	if err != nil {
		h.logger.Error("Order ingestion failed",
			zap.String("shop_domain", input.ShopDomain),
			zap.Int64("order_id", input.Order.ID),
			zap.String("webhook_id", r.Header.Get(shopify.HeaderWebhookID)),
			zap.Error(err),
		)
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}
