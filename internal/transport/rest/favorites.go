package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/wordbook/internal/domain"
	"github.com/heartmarshall/wordbook/internal/service/lookup"
)

// FavoritesHandler serves the saved-words list.
type FavoritesHandler struct {
	reg workspaces
	log *slog.Logger
}

// NewFavoritesHandler creates a FavoritesHandler.
func NewFavoritesHandler(reg workspaces, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{reg: reg, log: logger.With("handler", "favorites")}
}

// FavoritesResponse lists saved entries in insertion order.
type FavoritesResponse struct {
	Favorites []domain.LookupResult `json:"favorites"`
}

// List handles GET /api/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFor(h.reg, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: ws.Favorites.Current()})
}

// Save handles POST /api/favorites with a LookupResult body.
func (h *FavoritesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var entry domain.LookupResult
	if err := decodeBody(w, r, &entry); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	input := lookup.SearchInput{Word: entry.Word}
	if err := input.Validate(); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	entry.Word = input.Normalized()

	ws, err := workspaceFor(h.reg, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := ws.Favorites.Save(r.Context(), entry); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: ws.Favorites.Current()})
}

// SaveCurrent handles POST /api/favorites/current: it saves the entry the
// result view is showing.
func (h *FavoritesHandler) SaveCurrent(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFor(h.reg, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	first, ok := ws.Results.CurrentOutcome().First()
	if !ok {
		writeError(w, http.StatusNotFound, "no current entry")
		return
	}

	if err := ws.Favorites.Save(r.Context(), first); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: ws.Favorites.Current()})
}

// Remove handles DELETE /api/favorites/{word}.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	if word == "" {
		handleError(h.log, w, r, domain.NewValidationError("word", "required"))
		return
	}

	ws, err := workspaceFor(h.reg, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := ws.Favorites.Remove(r.Context(), word); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: ws.Favorites.Current()})
}
