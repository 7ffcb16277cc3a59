package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoomNotFound is returned when a room is not found.
	ErrRoomNotFound = errors.New("room not found")
	// ErrBookingNotFound is returned when a booking is not found.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrRateLimited is returned after too many failed sign-in attempts.
	ErrRateLimited = errors.New("too many failed login attempts, please try again later")
	// ErrEmailInUse is returned when registering an email that already has an account.
	ErrEmailInUse = errors.New("email is already registered")
	// ErrRoleNotAllowed is returned when registration asks for a role that cannot be self-assigned.
	ErrRoleNotAllowed = errors.New("role cannot be chosen at registration")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrSessionInvalid is returned when a token refers to a user that no longer exists.
	ErrSessionInvalid = errors.New("session is no longer valid")
	// ErrServiceUnavailable is returned when the data store cannot be reached.
	ErrServiceUnavailable = errors.New("service unavailable, please check your connection and retry")

	// ErrForbidden is returned when the caller's role does not permit the action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotOwner is returned when a seller acts on a room or booking they do not own.
	ErrNotOwner = errors.New("resource belongs to another user")

	// ErrInvalidPrice is returned when a room price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidDate is returned when a booking date does not parse.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidDateRange is returned when the end date is not after the start date.
	ErrInvalidDateRange = errors.New("end date must be after start date")
	// ErrRoomWithoutSeller is returned when a room has no seller to receive the booking.
	ErrRoomWithoutSeller = errors.New("room has no seller")
	// ErrBookingExists is returned when the buyer already holds a live booking for the room.
	ErrBookingExists = errors.New("you already have an active booking for this room")
	// ErrBookingOverlap is returned when the dates collide with an approved booking.
	ErrBookingOverlap = errors.New("room is already booked for these dates")
	// ErrBookingApproved is returned when cancelling an approved booking.
	ErrBookingApproved = errors.New("approved bookings cannot be cancelled online")
	// ErrBookingNotApproved is returned when a confirmation is requested for an undecided booking.
	ErrBookingNotApproved = errors.New("booking is not approved")
	// ErrInvalidTransition is returned when a status change is not allowed from the current state.
	ErrInvalidTransition = errors.New("booking status cannot be changed")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mapping = []struct {
	err    error
	status int
	code   string
}{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND"},
	{ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	{ErrEmailInUse, http.StatusConflict, "EMAIL_IN_USE"},
	{ErrRoleNotAllowed, http.StatusBadRequest, "ROLE_NOT_ALLOWED"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrSessionInvalid, http.StatusUnauthorized, "SESSION_INVALID"},
	{ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrNotOwner, http.StatusForbidden, "NOT_OWNER"},
	{ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE"},
	{ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
	{ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE"},
	{ErrRoomWithoutSeller, http.StatusUnprocessableEntity, "ROOM_WITHOUT_SELLER"},
	{ErrBookingExists, http.StatusConflict, "BOOKING_EXISTS"},
	{ErrBookingOverlap, http.StatusConflict, "BOOKING_OVERLAP"},
	{ErrBookingApproved, http.StatusConflict, "BOOKING_APPROVED"},
	{ErrBookingNotApproved, http.StatusConflict, "BOOKING_NOT_APPROVED"},
	{ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything unmapped becomes a generic 500 so internals never leak.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mapping {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
