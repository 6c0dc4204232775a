package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/service"
)

// Response is the envelope for successful responses.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failed responses.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// APIError is a structured error returned to API clients.
type APIError struct {
	StatusCode int           `json:"-"`
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	RetryAfter time.Duration `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func badRequest(message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

func invalidGameID() *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: string(bgg.CodeInvalidGameID), Message: "Invalid game id"}
}

func gameNotFound() *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: string(bgg.CodeGameNotFound), Message: "Game not found"}
}

func notFound() *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
}

func internalError() *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}
}

// statusForCode maps a BGG error code to the HTTP status returned to clients.
func statusForCode(code bgg.ErrorCode) int {
	switch code {
	case bgg.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case bgg.CodeInvalidGameID:
		return http.StatusBadRequest
	case bgg.CodeGameNotFound:
		return http.StatusNotFound
	case bgg.CodeSearchTimeout:
		return http.StatusGatewayTimeout
	case bgg.CodeAPIUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// toAPIError converts any error from the service layer into an APIError.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var searchErr *service.SearchError
	if errors.As(err, &searchErr) {
		return &APIError{
			StatusCode: statusForCode(searchErr.Code),
			Code:       string(searchErr.Code),
			Message:    searchErr.Message,
			RetryAfter: searchErr.RetryAfter,
		}
	}

	var bggErr *bgg.Error
	if errors.As(err, &bggErr) {
		return &APIError{
			StatusCode: statusForCode(bggErr.Code),
			Code:       string(bggErr.Code),
			Message:    service.ErrorMessage(bggErr.Code),
			RetryAfter: bggErr.RetryAfter,
		}
	}

	return internalError()
}

// writeJSON sends a success envelope with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// writeError sends an error envelope. Rate limit errors carry Retry-After.
func writeError(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)

	if apiErr.RetryAfter > 0 {
		secs := int(math.Ceil(apiErr.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: *apiErr})
}
