package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/tierdraft/go/internal/draft/engine"
	"github.com/mcdev12/tierdraft/go/internal/draft/legality"
	"github.com/mcdev12/tierdraft/go/internal/draft/store"
	"github.com/rs/zerolog/log"
)

// ErrInvalidInput marks malformed requests.
var ErrInvalidInput = errors.New("invalid input")

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type mappedError struct {
	status int
	reason string
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := mapError(err)
	if mapped.status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, mapped.status, errorBody{Error: "internal server error", Reason: mapped.reason})
		return
	}
	writeJSON(w, mapped.status, errorBody{Error: err.Error(), Reason: mapped.reason})
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return mappedError{http.StatusBadRequest, "invalidInput"}
	case errors.Is(err, store.ErrDivisionNotFound):
		return mappedError{http.StatusNotFound, "divisionNotFound"}
	case errors.Is(err, engine.ErrTeamNotInDivision):
		return mappedError{http.StatusNotFound, "teamNotFound"}
	case errors.Is(err, engine.ErrNotYourTurn):
		return mappedError{http.StatusConflict, "notYourTurn"}
	case errors.Is(err, engine.ErrInvalidStateChange):
		return mappedError{http.StatusConflict, "invalidStateChange"}
	case errors.Is(err, engine.ErrItemNotFound):
		return mappedError{http.StatusUnprocessableEntity, "itemNotFound"}
	case errors.Is(err, engine.ErrQueueTooLong):
		return mappedError{http.StatusUnprocessableEntity, "queueTooLong"}
	case errors.Is(err, engine.ErrInvalidTrade):
		return mappedError{http.StatusUnprocessableEntity, "invalidTrade"}
	case errors.Is(err, legality.ErrAlreadyDrafted):
		return mappedError{http.StatusConflict, "alreadyDrafted"}
	case errors.Is(err, legality.ErrMissingItem),
		errors.Is(err, legality.ErrUnknownItem),
		errors.Is(err, legality.ErrInvalidAddonSelection),
		errors.Is(err, legality.ErrInsufficientBudget):
		return mappedError{http.StatusUnprocessableEntity, "illegalPick"}
	default:
		return mappedError{http.StatusInternalServerError, "internalError"}
	}
}
