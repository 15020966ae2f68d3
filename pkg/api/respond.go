package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	swerrors "github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/store"
)

// errorBody is the JSON form of every error response.
type errorBody struct {
	Code    swerrors.Code `json:"code"`
	Message string        `json:"message"`
}

// errRefused is answered for structural edits the model does not apply.
func errRefused(format string, args ...any) error {
	return swerrors.New(swerrors.ErrCodeRefusedEdit, format, args...)
}

func errNotFound(format string, args ...any) error {
	return swerrors.New(swerrors.ErrCodeNotFound, format, args...)
}

func errBadRequest(format string, args ...any) error {
	return swerrors.New(swerrors.ErrCodeInvalidInput, format, args...)
}

// status maps an error to its HTTP status and code.
func status(err error) (int, swerrors.Code) {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, swerrors.ErrCodeNotFound
	}
	switch code := swerrors.GetCode(err); code {
	case swerrors.ErrCodeNotFound:
		return http.StatusNotFound, code
	case swerrors.ErrCodeRefusedEdit:
		return http.StatusConflict, code
	case swerrors.ErrCodeNoScenes:
		return http.StatusUnprocessableEntity, code
	case swerrors.ErrCodeInvalidInput, swerrors.ErrCodeInvalidProject, swerrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest, code
	case swerrors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType, code
	default:
		return http.StatusInternalServerError, swerrors.ErrCodeInternal
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	st, code := status(err)
	msg := swerrors.UserMessage(err)
	if st == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, st, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errBadRequest("invalid JSON body: %v", err)
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
