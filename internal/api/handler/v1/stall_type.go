package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/request"
	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/response"
	"github.com/propexpo/stall-booking-api/internal/domain"
)

type StallTypeService interface {
	CreateStallType(ctx context.Context, stallType domain.StallType) (domain.StallTypeAllocation, error)
	UpdateStallType(ctx context.Context, id uint, update domain.StallTypeUpdate) (domain.StallTypeAllocation, error)
	DeleteStallType(ctx context.Context, id uint, force bool) (domain.StallType, []domain.Booking, error)
	GetStallType(ctx context.Context, id uint) (domain.StallType, error)
	ListStallTypes(ctx context.Context, eventID uint) ([]domain.StallTypeSummary, error)
}

type StallTypeHandler struct {
	svc StallTypeService
}

func NewStallTypeHandler(svc StallTypeService) *StallTypeHandler {
	return &StallTypeHandler{
		svc: svc,
	}
}

// HandleListStallTypes godoc
// @Summary      List the stall types of an event
// @Tags         stall-types
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.StallTypeSummary
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/stall-types [get]
// @Security     BearerAuth
func (h *StallTypeHandler) HandleListStallTypes(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	types, err := h.svc.ListStallTypes(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "HandleListStallTypes -> h.svc.ListStallTypes", err)
		return
	}

	ctx.JSON(http.StatusOK, types)
}

// HandleCreateStallType godoc
// @Summary      Create a stall type
// @Description  Allocates quantity stalls of the event to a new type and creates them. Refused with 409 when the event has fewer stalls left.
// @Tags         stall-types
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                             true  "Event ID"
// @Param        request  body      request.CreateStallTypeRequest  true  "Stall type"
// @Success      201      {object}  domain.StallTypeAllocation
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/stall-types [post]
// @Security     BearerAuth
func (h *StallTypeHandler) HandleCreateStallType(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateStallTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateStallType(ctx.Request.Context(), req.ToDomain(eventID))
	if err != nil {
		renderServiceErr(ctx, "HandleCreateStallType -> h.svc.CreateStallType", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetStallType godoc
// @Summary      Get a stall type
// @Tags         stall-types
// @Produce      json
// @Param        stallTypeID  path      int  true  "Stall type ID"
// @Success      200          {object}  domain.StallType
// @Failure      400          {object}  response.Err
// @Failure      401          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /stall-types/{stallTypeID} [get]
// @Security     BearerAuth
func (h *StallTypeHandler) HandleGetStallType(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "stallTypeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallType, err := h.svc.GetStallType(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "HandleGetStallType -> h.svc.GetStallType", err)
		return
	}

	ctx.JSON(http.StatusOK, stallType)
}

// HandleUpdateStallType godoc
// @Summary      Update a stall type
// @Description  Growing quantity creates stalls, shrinking removes available ones (highest numbers first). Refused with 409 when capacity or available stalls do not allow it.
// @Tags         stall-types
// @Accept       json
// @Produce      json
// @Param        stallTypeID  path      int                             true  "Stall type ID"
// @Param        request      body      request.UpdateStallTypeRequest  true  "Fields to change"
// @Success      200          {object}  domain.StallTypeAllocation
// @Failure      400          {object}  response.Err
// @Failure      401          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      409          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /stall-types/{stallTypeID} [put]
// @Security     BearerAuth
func (h *StallTypeHandler) HandleUpdateStallType(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "stallTypeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateStallTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateStallType(ctx.Request.Context(), id, req.ToDomain())
	if err != nil {
		renderServiceErr(ctx, "HandleUpdateStallType -> h.svc.UpdateStallType", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteStallType godoc
// @Summary      Delete a stall type
// @Description  Removes the type and its stalls. Booked stalls block deletion unless force is set, which cancels their bookings.
// @Tags         stall-types
// @Produce      json
// @Param        stallTypeID  path      int   true   "Stall type ID"
// @Param        force        query     bool  false  "Cancel active bookings"
// @Success      200          {object}  response.DeleteStallTypeResponse
// @Failure      400          {object}  response.Err
// @Failure      401          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      409          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /stall-types/{stallTypeID} [delete]
// @Security     BearerAuth
func (h *StallTypeHandler) HandleDeleteStallType(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "stallTypeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	force, respErr := parseBoolQuery(ctx, "force")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	deleted, cancelled, err := h.svc.DeleteStallType(ctx.Request.Context(), id, force)
	if err != nil {
		renderServiceErr(ctx, "HandleDeleteStallType -> h.svc.DeleteStallType", err)
		return
	}

	if cancelled == nil {
		cancelled = []domain.Booking{}
	}

	ctx.JSON(http.StatusOK, response.DeleteStallTypeResponse{
		StallType:         deleted,
		CancelledBookings: cancelled,
	})
}
