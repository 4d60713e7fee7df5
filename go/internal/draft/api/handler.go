// Package api exposes the draft engine over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/engine"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/models"
)

// DraftService is the subset of the engine the handlers call.
type DraftService interface {
	DraftItem(ctx context.Context, divisionID, teamID uuid.UUID, sel models.StagedPick, picker string) (*engine.DraftResult, error)
	ForceSkip(ctx context.Context, divisionID uuid.UUID) (bool, error)
	SetDivisionState(ctx context.Context, divisionID uuid.UUID, change engine.StateChange) (models.DivisionStatus, error)
	Trade(ctx context.Context, divisionID uuid.UUID, side1, side2 models.TradeSide, stage string) (*models.Trade, error)
	SetStagedPicks(ctx context.Context, divisionID, teamID uuid.UUID, picks [][]models.StagedPick) error
	DivisionSnapshot(ctx context.Context, divisionID uuid.UUID) (*engine.Snapshot, error)
	CurrentPick(ctx context.Context, divisionID uuid.UUID) (events.CurrentPick, error)
	EligibleTeams(ctx context.Context, divisionID uuid.UUID) ([]*models.Team, error)
}

type Handler struct {
	draft DraftService
}

func NewHandler(draft DraftService) *Handler {
	return &Handler{draft: draft}
}

// RegisterRoutes mounts the division routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /divisions/{id}", h.GetDivision)
	mux.HandleFunc("GET /divisions/{id}/current-pick", h.GetCurrentPick)
	mux.HandleFunc("GET /divisions/{id}/eligible", h.GetEligibleTeams)
	mux.HandleFunc("POST /divisions/{id}/picks", h.DraftItem)
	mux.HandleFunc("POST /divisions/{id}/skip", h.ForceSkip)
	mux.HandleFunc("POST /divisions/{id}/state", h.SetState)
	mux.HandleFunc("POST /divisions/{id}/trades", h.Trade)
	mux.HandleFunc("PUT /divisions/{id}/teams/{teamId}/picks", h.SetStagedPicks)
}

type draftItemRequest struct {
	TeamID uuid.UUID `json:"team_id"`
	ItemID string    `json:"item_id"`
	Addons []string  `json:"addons,omitempty"`
	Picker string    `json:"picker,omitempty"`
}

type stateRequest struct {
	State engine.StateChange `json:"state"`
}

type stateResponse struct {
	Status models.DivisionStatus `json:"status"`
}

type skipResponse struct {
	Skipped bool `json:"skipped"`
}

type tradeRequest struct {
	Side1 models.TradeSide `json:"side1"`
	Side2 models.TradeSide `json:"side2"`
	Stage string           `json:"stage"`
}

type stagedPicksRequest struct {
	Picks [][]models.StagedPick `json:"picks"`
}

func (h *Handler) GetDivision(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.draft.DivisionSnapshot(r.Context(), divisionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) GetCurrentPick(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cp, err := h.draft.CurrentPick(r.Context(), divisionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (h *Handler) GetEligibleTeams(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	teams, err := h.draft.EligibleTeams(r.Context(), divisionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if teams == nil {
		teams = []*models.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

func (h *Handler) DraftItem(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req draftItemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TeamID == uuid.Nil {
		writeError(w, r, fmt.Errorf("%w: team_id is required", ErrInvalidInput))
		return
	}

	res, err := h.draft.DraftItem(r.Context(), divisionID, req.TeamID, models.StagedPick{ItemID: req.ItemID, Addons: req.Addons}, req.Picker)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ForceSkip(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	skipped, err := h.draft.ForceSkip(r.Context(), divisionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, skipResponse{Skipped: skipped})
}

func (h *Handler) SetState(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req stateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status, err := h.draft.SetDivisionState(r.Context(), divisionID, req.State)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Status: status})
}

func (h *Handler) Trade(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req tradeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	trade, err := h.draft.Trade(r.Context(), divisionID, req.Side1, req.Side2, req.Stage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// both sides were the free pool
	if trade == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (h *Handler) SetStagedPicks(w http.ResponseWriter, r *http.Request) {
	divisionID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	teamID, err := pathUUID(r, "teamId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req stagedPicksRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.draft.SetStagedPicks(r.Context(), divisionID, teamID, req.Picks); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid", ErrInvalidInput, name)
	}
	return id, nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
