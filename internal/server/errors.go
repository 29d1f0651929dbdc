package server

import (
	"errors"
	"net/http"
)

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrAlreadyStarted     = errors.New("game already started")
	ErrGameFinished       = errors.New("game already finished")
	ErrGameFull           = errors.New("game is full")
	ErrAlreadyJoined      = errors.New("already in this game")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrNotEnoughPlayers   = errors.New("not enough connected players")
	ErrWrongRoundStatus   = errors.New("round is not accepting this action")
	ErrAlreadySubmitted   = errors.New("card already submitted this round")
	ErrAlreadyVoted       = errors.New("vote already cast this round")
	ErrCardNotHeld        = errors.New("card is not in your hand")
	ErrSelfVote           = errors.New("cannot vote for your own submission")
	ErrNotEligible        = errors.New("not eligible in this round")
	ErrInvalidMessage     = errors.New("invalid message")
	ErrCatalogUnavailable = errors.New("card catalog unavailable")
)

const (
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codePrecondition = "precondition_failed"
	codeUnauthorized = "unauthorized"
	codeTransient    = "transient"
)

// errorCode maps an engine error onto the wire taxonomy. Unknown errors are
// reported as transient so clients treat them as retryable.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrGameNotFound),
		errors.Is(err, ErrRoundNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrPlayerNotFound):
		return codeNotFound
	case errors.Is(err, ErrAlreadySubmitted),
		errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrAlreadyJoined):
		return codeConflict
	case errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrGameFinished),
		errors.Is(err, ErrGameFull),
		errors.Is(err, ErrNotEnoughPlayers),
		errors.Is(err, ErrWrongRoundStatus),
		errors.Is(err, ErrCardNotHeld),
		errors.Is(err, ErrSelfVote),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrInvalidMessage):
		return codePrecondition
	case errors.Is(err, ErrNotHost):
		return codeUnauthorized
	default:
		return codeTransient
	}
}

func httpStatus(err error) int {
	switch errorCode(err) {
	case codeNotFound:
		return http.StatusNotFound
	case codeConflict:
		return http.StatusConflict
	case codePrecondition:
		return http.StatusConflict
	case codeUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusServiceUnavailable
	}
}
