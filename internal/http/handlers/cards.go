package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loftgolf/booking-platform/internal/cards"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

// CardsHandler manages the caller's card vault. Card numbers are
// validated and discarded; only masked references are stored.
type CardsHandler struct {
	store  cards.Store
	logger *logging.Logger
}

// NewCardsHandler creates the cards handler.
func NewCardsHandler(store cards.Store, logger *logging.Logger) *CardsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CardsHandler{store: store, logger: logger}
}

type addCardRequest struct {
	CardholderName string `json:"cardholder_name"`
	Number         string `json:"number"`
	ExpMonth       int    `json:"exp_month"`
	ExpYear        int    `json:"exp_year"`
}

// Add validates and stores a card reference.
// POST /api/cards
func (h *CardsHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	var req addCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	rec, err := cards.NewCardRecord(req.CardholderName, req.Number, req.ExpMonth, req.ExpYear, time.Now())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Put(r.Context(), sess.User.UserID, rec); err != nil {
		h.logger.Error("card store failed", "error", err)
		jsonError(w, "card could not be saved", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// List returns the caller's stored cards.
// GET /api/cards
func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	records, err := h.store.List(r.Context(), sess.User.UserID)
	if err != nil {
		h.logger.Error("card list failed", "error", err)
		jsonError(w, "cards could not be loaded", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": records})
}

// Delete removes one stored card.
// DELETE /api/cards/{id}
func (h *CardsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	cardID := chi.URLParam(r, "id")
	if cardID == "" {
		jsonError(w, "missing card id", http.StatusBadRequest)
		return
	}
	if err := h.store.Delete(r.Context(), sess.User.UserID, cardID); err != nil {
		h.logger.Error("card delete failed", "error", err)
		jsonError(w, "card could not be removed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
