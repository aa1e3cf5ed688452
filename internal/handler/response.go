package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/middleware"
	"axisride/internal/repository"
	"axisride/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// currentUser returns the authenticated user resolved by the auth
// middleware. Aborts with 401 when the route was wired without it.
func currentUser(c *gin.Context) (*domain.User, bool) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return nil, false
	}
	return user, true
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidSeatCount),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrDepartureNotFuture),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidProvider),
		errors.Is(err, service.ErrInvalidPaymentDetails),
		errors.Is(err, service.ErrInvalidOutcome),
		errors.Is(err, service.ErrInvalidLicense),
		errors.Is(err, service.ErrInvalidGroupName):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, service.ErrInvalidOTP):
		return http.StatusUnauthorized

	// Payment required - the subscription feature gate
	case errors.Is(err, service.ErrSubscriptionRequired):
		return http.StatusPaymentRequired

	// Forbidden - role, ownership and account-state checks
	case errors.Is(err, service.ErrRoleNotAllowed),
		errors.Is(err, service.ErrAccountSuspended),
		errors.Is(err, service.ErrDriverNotVerified),
		errors.Is(err, service.ErrNotReservationPassenger),
		errors.Is(err, service.ErrNotTripDriver),
		errors.Is(err, service.ErrNotDisputeParty):
		return http.StatusForbidden

	// Conflict - state machine and uniqueness violations
	case errors.Is(err, service.ErrInvalidStateTransition),
		errors.Is(err, service.ErrTripNotBookable),
		errors.Is(err, service.ErrAlreadyUsedTrial),
		errors.Is(err, service.ErrPhoneRegistered),
		errors.Is(err, service.ErrPrematureRelease),
		errors.Is(err, service.ErrDuplicateOpenDispute),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrCodeMismatch),
		errors.Is(err, repository.ErrInsufficientSeats),
		errors.Is(err, repository.ErrStateConflict),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Too many requests
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	// Upstream gateway errors
	case errors.Is(err, service.ErrGatewayFailure):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrGatewayTimeout):
		return http.StatusGatewayTimeout

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
