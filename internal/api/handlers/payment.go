package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/errors"
	service "github.com/zenjaura/marketplace/internal/services"
	"github.com/zenjaura/marketplace/internal/utils"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

// Stripe signs payloads well under this size.
const maxWebhookBytes = 64 << 10

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentIntent godoc
//
//	@Summary		Start paying for an order
//	@Description	Creates (or returns the existing) Stripe PaymentIntent for the order total and returns its client secret.
//	@Tags			Payments
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	Format(uuid)
//	@Success		200	{object}	models.PaymentIntentResponse
//	@Failure		400	{object}	response.ErrorResponse	"Order cannot be paid"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		502	{object}	response.ErrorResponse	"Payment provider error"
//	@Security		BearerAuth
//	@Router			/orders/{id}/pay [post]
func (h *PaymentHandler) CreatePaymentIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		intent, err := h.paymentService.CreatePaymentIntent(r.Context(), id, claims.UserID)
		if err != nil {
			logger.Error("Failed to initiate payment", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment initiated", slog.String("orderId", id.String()), slog.String("paymentIntentId", intent.PaymentIntentID))
		response.Success(w, http.StatusOK, intent)
	}
}

// HandleStripeWebhook godoc
//
//	@Summary		Stripe webhook
//	@Description	Verifies the Stripe-Signature header and applies payment events to the matching order.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string	true	"Stripe signature"
//	@Success		200					{object}	map[string]bool
//	@Failure		400					{object}	response.ErrorResponse	"Missing or invalid signature"
//	@Router			/payments/webhook [post]
func (h *PaymentHandler) HandleStripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			logger.Error("Error reading webhook body", slog.Any("error", err))
			response.Error(w, errors.BadRequestError("Failed to read request body"))
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Warn("Missing Stripe signature")
			response.Error(w, errors.BadRequestError("Stripe signature is required"))
			return
		}

		if err := h.paymentService.HandleWebhook(r.Context(), payload, signature); err != nil {
			logger.Error("Failed to process payment webhook", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"received": true})
	}
}
