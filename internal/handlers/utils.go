package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/types"
)

const maxJSONBody = 1 << 20

type contextKey string

const (
	contextSubjectKey contextKey = "sub"
	contextActorKey   contextKey = "actor"
)

// ErrorResponse is the error payload of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func subjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(contextSubjectKey).(string)
	if !ok || strings.TrimSpace(subject) == "" {
		return "", errors.New("missing subject")
	}
	return subject, nil
}

// actorFromContext returns the user loaded by RequireActor.
func actorFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextActorKey).(types.User)
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// errorBody converts err to a payload and status. Internal details of
// unexpected failures are not exposed.
func errorBody(err error) (int, ErrorResponse) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: string(apperr.KindInternal)}
	}
	message := appErr.Message
	if appErr.Kind == apperr.KindTransient {
		message = "service temporarily unavailable, please retry"
	}
	return appErr.StatusCode(), ErrorResponse{Error: message, Code: string(appErr.Kind), Field: appErr.Field}
}

func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", body.Code),
			slog.Any("error", err),
		)
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("", "request body is required")
		}
		return apperr.Validation("", "invalid request body")
	}
	return nil
}
