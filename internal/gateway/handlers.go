package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/paddleup/auctioneer/internal/auction"
)

// Handler exposes the auction operations over HTTP and hands WebSocket
// upgrades to the connection manager.
type Handler struct {
	app *auction.App
	cm  *ConnectionManager
}

func NewHandler(app *auction.App, cm *ConnectionManager) *Handler {
	return &Handler{app: app, cm: cm}
}

// Routes mounts all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auctions", h.createAuction)
		r.Route("/auctions/{auctionID}", func(r chi.Router) {
			r.Get("/state", h.getState)
			r.Post("/lot", h.startLot)
			r.Post("/bids", h.placeBid)
			r.Post("/pause", h.pause)
			r.Post("/resume", h.resume)
			r.Post("/settle", h.settle)
			r.Post("/login", h.teamLogin)
			r.Post("/players", h.addPlayer)
			r.Post("/players/bulk", h.bulkAddPlayers)
		})
		r.Delete("/players/{playerID}", h.deletePlayer)
		r.Get("/stats", h.stats)
	})
	r.Get("/ws/auction", h.serveWS)
	r.Get("/health", h.health)
}

func (h *Handler) createAuction(w http.ResponseWriter, r *http.Request) {
	var req auction.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	a, teams, err := h.app.CreateAuction(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"auction": a,
		"teams":   teams,
	})
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	snap, err := h.app.GetState(r.Context(), auctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) startLot(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	var req struct {
		PlayerID uuid.UUID `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == uuid.Nil {
		writeBadRequest(w, "player_id is required")
		return
	}

	lot, err := h.app.StartLot(r.Context(), auctionID, req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lot)
}

func (h *Handler) placeBid(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	var req auction.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == uuid.Nil {
		writeBadRequest(w, "team_id is required")
		return
	}
	req.AuctionID = auctionID

	bid, err := h.app.PlaceBid(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	if err := h.app.Pause(r.Context(), auctionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	if err := h.app.Resume(r.Context(), auctionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	var req struct {
		Outcome auction.SettleOutcome `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.app.Settle(r.Context(), auctionID, req.Outcome); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Outcome)})
}

func (h *Handler) teamLogin(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	var req struct {
		TeamName string `json:"team_name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	team, err := h.app.TeamLogin(r.Context(), auctionID, req.TeamName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *Handler) addPlayer(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	var req auction.AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	req.AuctionID = auctionID

	player, err := h.app.AddPlayer(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (h *Handler) bulkAddPlayers(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := pathUUID(w, r, "auctionID")
	if !ok {
		return
	}
	var req struct {
		Players []auction.AddPlayerRequest `json:"players"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	for i := range req.Players {
		req.Players[i].AuctionID = auctionID
	}

	players, err := h.app.BulkAddPlayers(r.Context(), req.Players)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"players": players})
}

func (h *Handler) deletePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathUUID(w, r, "playerID")
	if !ok {
		return
	}
	if err := h.app.DeletePlayer(r.Context(), playerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cm.ConnectionStats())
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	auctionID, err := uuid.Parse(r.URL.Query().Get("auction_id"))
	if err != nil {
		writeBadRequest(w, "auction_id query parameter is required")
		return
	}
	if _, err := h.app.GetState(r.Context(), auctionID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.cm.UpgradeConnection(w, r, auctionID); err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeBadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error":   "bad_request",
		"message": msg,
	})
}

// writeError maps domain errors onto HTTP statuses. Reserve warnings carry
// their numbers so clients can render the confirmation prompt.
func writeError(w http.ResponseWriter, err error) {
	var warn *auction.ReserveWarningError
	if errors.As(err, &warn) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":           "reserve_warning",
			"message":         warn.Error(),
			"remaining_after": warn.RemainingAfter,
			"required":        warn.Required,
			"players_needed":  warn.PlayersNeeded,
		})
		return
	}

	var rej *auction.BidRejectedError
	if errors.As(err, &rej) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "bid_rejected",
			"reason":  rej.Reason,
			"minimum": rej.Minimum,
			"message": rej.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, auction.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": err.Error(),
		})
	case errors.Is(err, auction.ErrLotClosed):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "lot_closed",
			"message": err.Error(),
		})
	case errors.Is(err, auction.ErrInvalidState):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "invalid_state",
			"message": err.Error(),
		})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal",
		})
	}
}
