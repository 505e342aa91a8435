package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/models"
	service "github.com/zenjaura/marketplace/internal/services"
	"github.com/zenjaura/marketplace/internal/utils"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

type EventHandler struct {
	eventService service.EventService
	cartService  service.CartService
	validator    *validator.Validate
}

func NewEventHandler(eventService service.EventService, cartService service.CartService) *EventHandler {
	return &EventHandler{eventService: eventService, cartService: cartService, validator: validator.New()}
}

// ListEvents godoc
//
//	@Summary	List events
//	@Tags		Events
//	@Produce	json
//	@Param		page		query		int	false	"Page number"	default(1)
//	@Param		pageSize	query		int	false	"Page size"		default(10)
//	@Success	200			{object}	models.PaginatedResponse{data=[]models.Event}
//	@Router		/events [get]
func (h *EventHandler) ListEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		page, pageSize := utils.ParsePagination(r)

		events, total, err := h.eventService.ListEvents(r.Context(), page, pageSize)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list events", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, paginated(events, total, page, pageSize))
	}
}

// GetEvent godoc
//
//	@Summary	Get an event
//	@Tags		Events
//	@Produce	json
//	@Param		id	path		string	true	"Event ID"	Format(uuid)
//	@Success	200	{object}	models.Event
//	@Failure	404	{object}	response.ErrorResponse	"Event not found"
//	@Router		/events/{id} [get]
func (h *EventHandler) GetEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		event, err := h.eventService.GetEvent(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, event)
	}
}

// Register godoc
//
//	@Summary		Register for a free event
//	@Description	Paid events are bought through the cart instead.
//	@Tags			Events
//	@Produce		json
//	@Param			id	path		string	true	"Event ID"	Format(uuid)
//	@Success		201	{object}	models.Registration
//	@Failure		400	{object}	response.ErrorResponse	"Already registered, event full or paid event"
//	@Failure		404	{object}	response.ErrorResponse	"Event not found"
//	@Security		BearerAuth
//	@Router			/events/{id}/register [post]
func (h *EventHandler) Register() http.HandlerFunc {
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

		registration, err := h.eventService.Register(r.Context(), id, claims.UserID)
		if err != nil {
			logger.Warn("Event registration failed", slog.String("eventId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Registered for event", slog.String("eventId", id.String()))
		response.Success(w, http.StatusCreated, registration)
	}
}

// Purchase godoc
//
//	@Summary		Add a paid event to the cart
//	@Description	The ticket is priced from the stored event. The seat is taken at checkout.
//	@Tags			Events
//	@Produce		json
//	@Param			id	path		string	true	"Event ID"	Format(uuid)
//	@Success		200	{object}	models.Cart
//	@Failure		400	{object}	response.ErrorResponse	"Free or full event"
//	@Failure		404	{object}	response.ErrorResponse	"Event not found"
//	@Failure		409	{object}	response.ErrorResponse	"Cart changed concurrently"
//	@Security		BearerAuth
//	@Router			/events/{id}/purchase [post]
func (h *EventHandler) Purchase() http.HandlerFunc {
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

		cart, err := h.cartService.AddEvent(r.Context(), claims.UserID, id)
		if err != nil {
			logger.Warn("Failed to add event to cart", slog.String("eventId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// Ticket godoc
//
//	@Summary		Event ticket
//	@Description	PNG QR code carrying a signed proof of the caller's registration.
//	@Tags			Events
//	@Produce		png
//	@Param			id	path		string	true	"Event ID"	Format(uuid)
//	@Success		200	{file}		binary
//	@Failure		404	{object}	response.ErrorResponse	"Not registered"
//	@Security		BearerAuth
//	@Router			/events/{id}/ticket [get]
func (h *EventHandler) Ticket() http.HandlerFunc {
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

		png, err := h.eventService.Ticket(r.Context(), id, claims.UserID)
		if err != nil {
			logger.Warn("Failed to render ticket", slog.String("eventId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}

// CreateEvent godoc
//
//	@Summary	Create an event
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		event	body		models.CreateEventRequest	true	"Event details"
//	@Success	201		{object}	models.Event
//	@Failure	400		{object}	response.ErrorResponse	"Validation error"
//	@Security	BearerAuth
//	@Router		/admin/events [post]
func (h *EventHandler) CreateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateEventRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		event, err := h.eventService.CreateEvent(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to create event", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Event created", slog.String("eventId", event.ID.String()))
		response.Success(w, http.StatusCreated, event)
	}
}

// UpdateEvent godoc
//
//	@Summary		Update an event
//	@Description	Capacity cannot drop below the current registrations.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Event ID"	Format(uuid)
//	@Param			event	body		models.UpdateEventRequest	true	"Event details"
//	@Success		200		{object}	models.Event
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		404		{object}	response.ErrorResponse	"Event not found"
//	@Security		BearerAuth
//	@Router			/admin/events/{id} [put]
func (h *EventHandler) UpdateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateEventRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		event, err := h.eventService.UpdateEvent(r.Context(), id, &req)
		if err != nil {
			logger.Warn("Failed to update event", slog.String("eventId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, event)
	}
}

// DeleteEvent godoc
//
//	@Summary	Delete an event
//	@Tags		Admin
//	@Param		id	path	string	true	"Event ID"	Format(uuid)
//	@Success	204
//	@Failure	404	{object}	response.ErrorResponse	"Event not found"
//	@Security	BearerAuth
//	@Router		/admin/events/{id} [delete]
func (h *EventHandler) DeleteEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.eventService.DeleteEvent(r.Context(), id); err != nil {
			logger.Warn("Failed to delete event", slog.String("eventId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Event deleted", slog.String("eventId", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
