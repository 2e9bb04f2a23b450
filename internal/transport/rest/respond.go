package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/wordbook/internal/domain"
	"github.com/heartmarshall/wordbook/internal/session"
	"github.com/heartmarshall/wordbook/pkg/ctxutil"
)

// maxBodyBytes bounds request bodies; a favorites entry is a few KB.
const maxBodyBytes = 1 << 20

// workspaces resolves the per-session stores.
type workspaces interface {
	Workspace(ctx context.Context, id uuid.UUID) *session.Workspace
}

// errNoSession means the session middleware did not run for this route.
var errNoSession = errors.New("no session in request context")

func workspaceFor(reg workspaces, r *http.Request) (*session.Workspace, error) {
	id, ok := ctxutil.SessionIDFromCtx(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return reg.Workspace(r.Context(), id), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		fields := make([]fieldError, len(ve.Errors))
		for i, fe := range ve.Errors {
			fields[i] = fieldError{Field: fe.Field, Message: fe.Message}
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Fields: fields})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
