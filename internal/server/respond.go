package server

import (
	"encoding/json"
	"net/http"

	"github.com/koustreak/s3studio/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) requirePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "path is required"))
		return "", false
	}
	return path, true
}

// writeJSON encodes v before touching the response so an encoding failure
// can still be reported as a clean 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		serr := errs.Wrap(errs.ErrKindSerialization, "Serialization error", err)
		s.log.ErrorWith("failed to encode response", serr, nil)
		body, _ = json.Marshal(errorBody{Error: serr.Error()})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed, errs.ErrKindBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
