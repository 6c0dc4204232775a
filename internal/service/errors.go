package service

import (
	"time"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
)

// SearchError is returned by Search when the upstream failed and nothing
// was cached for the query.
type SearchError struct {
	Code       bgg.ErrorCode
	Message    string
	RetryAfter time.Duration // only set for bgg.CodeRateLimitExceeded
	Cause      error
}

func (e *SearchError) Error() string {
	return e.Message
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

func newSearchError(err error) *SearchError {
	code := bgg.CodeOf(err)
	return &SearchError{
		Code:       code,
		Message:    ErrorMessage(code),
		RetryAfter: bgg.RetryAfterOf(err),
		Cause:      err,
	}
}

// ErrorMessage returns the user-facing message for an error code.
func ErrorMessage(code bgg.ErrorCode) string {
	switch code {
	case bgg.CodeRateLimitExceeded:
		return "Too many requests to BoardGameGeek, try again shortly"
	case bgg.CodeSearchTimeout:
		return "BoardGameGeek search timed out"
	case bgg.CodeAPIUnavailable:
		return "BoardGameGeek is temporarily unavailable"
	case bgg.CodeInvalidResponse, bgg.CodeParseError:
		return "BoardGameGeek returned an unreadable response"
	case bgg.CodeInvalidGameID:
		return "Invalid game id"
	case bgg.CodeGameNotFound:
		return "Game not found"
	default:
		return "Could not reach BoardGameGeek"
	}
}
