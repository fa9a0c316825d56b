package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/response"
	"github.com/propexpo/stall-booking-api/internal/api/middleware"
	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/service"
)

var errMissingActor = errors.New("missing authenticated user")

var notFoundErrs = []error{
	service.ErrEventNotFound,
	service.ErrStallTypeNotFound,
	service.ErrStallNotFound,
	service.ErrBookingNotFound,
}

func getActorFromContext(ctx *gin.Context) (domain.Actor, *response.Err) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, response.ErrUnauthorized(errMissingActor)
	}

	return actor, nil
}

func parseIDParam(ctx *gin.Context, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, ctx.Param(name)))
	}

	return uint(id), nil
}

// parseOptionalIDQuery returns nil when the query parameter is absent.
func parseOptionalIDQuery(ctx *gin.Context, name string) (*uint, *response.Err) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, raw))
	}

	v := uint(id)
	return &v, nil
}

func parseBoolQuery(ctx *gin.Context, name string) (bool, *response.Err) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, raw))
	}

	return v, nil
}

// renderServiceErr maps service errors to responses. Conflicts carry the
// numbers behind them in meta.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	var (
		capacityErr     *service.CapacityExceededError
		insufficientErr *service.InsufficientAvailableStallsError
		bookedErr       *service.HasActiveBookingsError
	)

	switch {
	case errors.Is(err, service.ErrValidation):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrInvalidReference):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidReference))
	case errors.As(err, &capacityErr):
		response.RenderErr(ctx, response.ErrConflict(service.ErrCapacityExceeded, map[string]any{
			"by":        capacityErr.By,
			"remaining": capacityErr.Remaining,
		}))
	case errors.As(err, &insufficientErr):
		response.RenderErr(ctx, response.ErrConflict(service.ErrInsufficientAvailableStalls, map[string]any{
			"required":  insufficientErr.Required,
			"available": insufficientErr.Available,
		}))
	case errors.As(err, &bookedErr):
		response.RenderErr(ctx, response.ErrConflict(service.ErrHasActiveBookings, map[string]any{
			"booked": bookedErr.Booked,
		}))
	case errors.Is(err, service.ErrAlreadyBooked):
		response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyBooked, nil))
	case errors.Is(err, service.ErrBookingsChanged):
		response.RenderErr(ctx, response.ErrConflict(service.ErrBookingsChanged, nil))
	case errors.Is(err, service.ErrNoStallLeft):
		response.RenderErr(ctx, response.ErrConflict(service.ErrNoStallLeft, nil))
	case errors.Is(err, service.ErrNotBookingOwner):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotBookingOwner))
	default:
		for _, target := range notFoundErrs {
			if errors.Is(err, target) {
				response.RenderErr(ctx, response.ErrResourceNotFound(target))
				return
			}
		}

		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}
