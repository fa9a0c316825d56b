package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/request"
	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/response"
	"github.com/propexpo/stall-booking-api/internal/domain"
)

type EventService interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, update domain.EventUpdate) (domain.Event, error)
	GetEventInventory(ctx context.Context, id uint) (domain.EventInventory, error)
	ListEvents(ctx context.Context, upcomingOnly bool) ([]domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
}

type CapacityService interface {
	RemainingCapacity(ctx context.Context, eventID uint, excluding *uint) (int, error)
	CanAllocate(ctx context.Context, eventID uint, quantity int, excluding *uint) (bool, int, error)
}

type EventHandler struct {
	svc      EventService
	capacity CapacityService
}

func NewEventHandler(svc EventService, capacity CapacityService) *EventHandler {
	return &EventHandler{
		svc:      svc,
		capacity: capacity,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Creates a property exhibition event with a fixed number of stalls.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "Event details"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := req.ToDomain()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		renderServiceErr(ctx, "HandleCreateEvent -> h.svc.CreateEvent", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListEvents godoc
// @Summary      List events
// @Tags         events
// @Produce      json
// @Param        upcoming  query     bool  false  "Only events that have not ended before today"
// @Success      200       {array}   domain.Event
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	upcoming, respErr := parseBoolQuery(ctx, "upcoming")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), upcoming)
	if err != nil {
		renderServiceErr(ctx, "HandleListEvents -> h.svc.ListEvents", err)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event with its inventory
// @Description  Returns the event with allocated, remaining, booked and available stall counts.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.EventInventory
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inventory, err := h.svc.GetEventInventory(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "HandleGetEvent -> h.svc.GetEventInventory", err)
		return
	}

	ctx.JSON(http.StatusOK, inventory)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Lowering stall_count below the quantity already allocated to stall types is refused with 409.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        request  body      request.UpdateEventRequest  true  "Fields to change"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	update, err := req.ToDomain()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateEvent(ctx.Request.Context(), eventID, update)
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateEvent -> h.svc.UpdateEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Refused with 409 while any of its stalls is booked.
// @Tags         events
// @Param        eventID  path      int  true  "Event ID"
// @Success      204
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), eventID); err != nil {
		renderServiceErr(ctx, "HandleDeleteEvent -> h.svc.DeleteEvent", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetCapacity godoc
// @Summary      Preview remaining capacity
// @Description  Remaining stall capacity of an event, optionally ignoring one stall type (when editing it). With quantity, also answers whether that many stalls would fit.
// @Tags         events
// @Produce      json
// @Param        eventID    path      int  true   "Event ID"
// @Param        excluding  query     int  false  "Stall type ID to leave out"
// @Param        quantity   query     int  false  "Candidate quantity"
// @Success      200        {object}  response.CapacityResponse
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /events/{eventID}/capacity [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetCapacity(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	excluding, respErr := parseOptionalIDQuery(ctx, "excluding")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	resp := response.CapacityResponse{
		EventID:              eventID,
		ExcludingStallTypeID: excluding,
	}

	rawQuantity, ok := ctx.GetQuery("quantity")
	if !ok {
		remaining, err := h.capacity.RemainingCapacity(ctx.Request.Context(), eventID, excluding)
		if err != nil {
			renderServiceErr(ctx, "HandleGetCapacity -> h.capacity.RemainingCapacity", err)
			return
		}

		resp.Remaining = remaining
		ctx.JSON(http.StatusOK, resp)
		return
	}

	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil || quantity < 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid quantity: %q", rawQuantity)))
		return
	}

	canAllocate, remaining, err := h.capacity.CanAllocate(ctx.Request.Context(), eventID, quantity, excluding)
	if err != nil {
		renderServiceErr(ctx, "HandleGetCapacity -> h.capacity.CanAllocate", err)
		return
	}

	resp.Remaining = remaining
	resp.Quantity = &quantity
	resp.CanAllocate = &canAllocate
	ctx.JSON(http.StatusOK, resp)
}
