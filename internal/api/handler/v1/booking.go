package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/response"
	"github.com/propexpo/stall-booking-api/internal/domain"
)

type BookingService interface {
	ListAvailableStalls(ctx context.Context, eventID uint, stallTypeID *uint) ([]domain.Stall, error)
	BookStall(ctx context.Context, stallID, builderID uint) (domain.Booking, error)
	BookNextAvailable(ctx context.Context, eventID uint, stallTypeID *uint, builderID uint) (domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, bookingID uint) (domain.Booking, error)
	ListBuilderBookings(ctx context.Context, builderID uint) ([]domain.Booking, error)
	ListEventBookings(ctx context.Context, eventID uint) ([]domain.Booking, error)
}

type BookingHandler struct {
	svc BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{
		svc: svc,
	}
}

// HandleListAvailableStalls godoc
// @Summary      List available stalls
// @Tags         stalls
// @Produce      json
// @Param        eventID        path      int  true   "Event ID"
// @Param        stall_type_id  query     int  false  "Only stalls of this type"
// @Success      200            {array}   domain.Stall
// @Failure      400            {object}  response.Err
// @Failure      401            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /events/{eventID}/stalls/available [get]
// @Security     BearerAuth
func (h *BookingHandler) HandleListAvailableStalls(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallTypeID, respErr := parseOptionalIDQuery(ctx, "stall_type_id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stalls, err := h.svc.ListAvailableStalls(ctx.Request.Context(), eventID, stallTypeID)
	if err != nil {
		renderServiceErr(ctx, "HandleListAvailableStalls -> h.svc.ListAvailableStalls", err)
		return
	}

	ctx.JSON(http.StatusOK, stalls)
}

// HandleBookStall godoc
// @Summary      Book a stall
// @Description  Books the stall for the calling builder. A stall someone else booked first answers 409.
// @Tags         bookings
// @Produce      json
// @Param        stallID  path      int  true  "Stall ID"
// @Success      201      {object}  domain.Booking
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /stalls/{stallID}/book [post]
// @Security     BearerAuth
func (h *BookingHandler) HandleBookStall(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallID, respErr := parseIDParam(ctx, "stallID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	booking, err := h.svc.BookStall(ctx.Request.Context(), stallID, actor.ID)
	if err != nil {
		renderServiceErr(ctx, "HandleBookStall -> h.svc.BookStall", err)
		return
	}

	ctx.JSON(http.StatusCreated, booking)
}

// HandleBookNextAvailable godoc
// @Summary      Book the next available stall
// @Description  Books the lowest numbered available stall of the event, optionally of one type.
// @Tags         bookings
// @Produce      json
// @Param        eventID        path      int  true   "Event ID"
// @Param        stall_type_id  query     int  false  "Stall type ID"
// @Success      201            {object}  domain.Booking
// @Failure      400            {object}  response.Err
// @Failure      401            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /events/{eventID}/book-next [post]
// @Security     BearerAuth
func (h *BookingHandler) HandleBookNextAvailable(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallTypeID, respErr := parseOptionalIDQuery(ctx, "stall_type_id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	booking, err := h.svc.BookNextAvailable(ctx.Request.Context(), eventID, stallTypeID, actor.ID)
	if err != nil {
		renderServiceErr(ctx, "HandleBookNextAvailable -> h.svc.BookNextAvailable", err)
		return
	}

	ctx.JSON(http.StatusCreated, booking)
}

// HandleCancelBooking godoc
// @Summary      Cancel a booking
// @Description  Builders cancel their own bookings, admins any. The stall becomes available again.
// @Tags         bookings
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  domain.Booking
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /bookings/{bookingID} [delete]
// @Security     BearerAuth
func (h *BookingHandler) HandleCancelBooking(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	bookingID, respErr := parseIDParam(ctx, "bookingID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	booking, err := h.svc.CancelBooking(ctx.Request.Context(), actor, bookingID)
	if err != nil {
		renderServiceErr(ctx, "HandleCancelBooking -> h.svc.CancelBooking", err)
		return
	}

	ctx.JSON(http.StatusOK, booking)
}

// HandleListMyBookings godoc
// @Summary      List the caller's bookings
// @Tags         bookings
// @Produce      json
// @Success      200  {array}   domain.Booking
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /bookings/mine [get]
// @Security     BearerAuth
func (h *BookingHandler) HandleListMyBookings(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	bookings, err := h.svc.ListBuilderBookings(ctx.Request.Context(), actor.ID)
	if err != nil {
		renderServiceErr(ctx, "HandleListMyBookings -> h.svc.ListBuilderBookings", err)
		return
	}

	ctx.JSON(http.StatusOK, bookings)
}

// HandleListEventBookings godoc
// @Summary      List the bookings of an event
// @Tags         bookings
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.Booking
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/bookings [get]
// @Security     BearerAuth
func (h *BookingHandler) HandleListEventBookings(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	bookings, err := h.svc.ListEventBookings(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "HandleListEventBookings -> h.svc.ListEventBookings", err)
		return
	}

	ctx.JSON(http.StatusOK, bookings)
}
