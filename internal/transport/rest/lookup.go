package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/wordbook/internal/domain"
	"github.com/heartmarshall/wordbook/internal/service/lookup"
)

// NotFoundMessage is shown when a lookup yields nothing.
const NotFoundMessage = "Sorry, your word doesn't exist in the English language."

// LookupHandler serves the search form and the result view.
type LookupHandler struct {
	reg workspaces
	log *slog.Logger
}

// NewLookupHandler creates a LookupHandler.
func NewLookupHandler(reg workspaces, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{reg: reg, log: logger.With("handler", "lookup")}
}

type searchRequest struct {
	Word string `json:"word"`
}

// OutcomeResponse is the render-ready view of a SearchOutcome. Only the first
// entry is surfaced.
type OutcomeResponse struct {
	Status   string               `json:"status"`
	Entry    *domain.LookupResult `json:"entry,omitempty"`
	AudioURL string               `json:"audioUrl,omitempty"`
	Phonetic string               `json:"phonetic,omitempty"`
	Saved    bool                 `json:"saved"`
	Message  string               `json:"message,omitempty"`
}

// Search handles POST /api/search.
func (h *LookupHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input := lookup.SearchInput{Word: req.Word}
	if err := input.Validate(); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	ws, err := workspaceFor(h.reg, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	outcome := ws.Results.Search(r.Context(), input.Normalized())
	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome, ws.Favorites.Contains))
}

// Result handles GET /api/result.
func (h *LookupHandler) Result(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFor(h.reg, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOutcomeResponse(ws.Results.CurrentOutcome(), ws.Favorites.Contains))
}

func toOutcomeResponse(o domain.SearchOutcome, saved func(word string) bool) OutcomeResponse {
	resp := OutcomeResponse{Status: o.State().String()}

	switch o.State() {
	case domain.OutcomeFound:
		first, _ := o.First()
		resp.Entry = &first
		resp.AudioURL = first.AudioURL()
		resp.Phonetic = first.DisplayPhonetic()
		resp.Saved = saved(first.Word)
	case domain.OutcomeNotFound:
		resp.Message = NotFoundMessage
	}
	return resp
}
