package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/request"
	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/response"
	"github.com/propexpo/stall-booking-api/internal/domain"
)

type CheckInService interface {
	IssueStallCheckIn(ctx context.Context, actor domain.Actor, eventID, stallID uint) (domain.CheckInReference, error)
	IssueEventCheckIn(ctx context.Context, eventID uint) (domain.CheckInReference, error)
	Resolve(ctx context.Context, referenceOrURL string) (domain.CheckInTarget, error)
}

type CheckInHandler struct {
	svc CheckInService
}

func NewCheckInHandler(svc CheckInService) *CheckInHandler {
	return &CheckInHandler{
		svc: svc,
	}
}

// HandleIssueStallCheckIn godoc
// @Summary      Get the check-in reference of a stall
// @Description  The same event and stall always yield the same reference and URL. Builders only get references for stalls they hold.
// @Tags         check-in
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Param        stallID  path      int  true  "Stall ID"
// @Success      200      {object}  domain.CheckInReference
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/stalls/{stallID}/checkin [get]
// @Security     BearerAuth
func (h *CheckInHandler) HandleIssueStallCheckIn(ctx *gin.Context) {
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

	stallID, respErr := parseIDParam(ctx, "stallID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ref, err := h.svc.IssueStallCheckIn(ctx.Request.Context(), actor, eventID, stallID)
	if err != nil {
		renderServiceErr(ctx, "HandleIssueStallCheckIn -> h.svc.IssueStallCheckIn", err)
		return
	}

	ctx.JSON(http.StatusOK, ref)
}

// HandleIssueEventCheckIn godoc
// @Summary      Get the check-in reference of an event
// @Tags         check-in
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.CheckInReference
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/checkin [get]
// @Security     BearerAuth
func (h *CheckInHandler) HandleIssueEventCheckIn(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ref, err := h.svc.IssueEventCheckIn(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "HandleIssueEventCheckIn -> h.svc.IssueEventCheckIn", err)
		return
	}

	ctx.JSON(http.StatusOK, ref)
}

// HandleResolveCheckIn godoc
// @Summary      Resolve a scanned check-in reference
// @Description  Accepts the bare reference or the full URL from the QR code.
// @Tags         check-in
// @Accept       json
// @Produce      json
// @Param        request  body      request.ResolveCheckInRequest  true  "Scanned reference"
// @Success      200      {object}  domain.CheckInTarget
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /checkin/resolve [post]
// @Security     BearerAuth
func (h *CheckInHandler) HandleResolveCheckIn(ctx *gin.Context) {
	var req request.ResolveCheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	target, err := h.svc.Resolve(ctx.Request.Context(), req.Reference)
	if err != nil {
		renderServiceErr(ctx, "HandleResolveCheckIn -> h.svc.Resolve", err)
		return
	}

	ctx.JSON(http.StatusOK, target)
}
