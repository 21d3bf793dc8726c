package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-dbgate/gate"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeDenied(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, DeniedResponse{Denied: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// deniedStatus maps a denial message onto an HTTP status; the message
// itself stays the caller-facing contract.
func deniedStatus(message string) int {
	if message == gate.DeniedAuthenticationRequired {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

func writeResult(w http.ResponseWriter, result gate.Result) {
	if result.Denied != "" {
		writeDenied(w, deniedStatus(result.Denied), result.Denied)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AuthenticateHandler verifies credentials and returns a bearer token
// wrapping the new session.
func (s *Server) AuthenticateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthenticateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		sessionToken, ok, err := s.gateway.Authenticate(req.Identity, req.Secret)
		if err != nil {
			log.Err(err).Msg("authenticate failed unexpectedly")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			writeDenied(w, http.StatusUnauthorized, "authentication failed")
			return
		}

		bearer, err := s.tokens.Issue(sessionToken, req.Identity)
		if err != nil {
			log.Err(err).Msg("failed to issue bearer token")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, AuthenticateResponse{Token: bearer})
	}
}

// LogoutHandler ends the session and erases its consent grants. Idempotent.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.gateway.Logout(SessionTokenFromContext(r.Context()))
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

// ConsentHandler records a consent grant for a destructive operation.
func (s *Server) ConsentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConsentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := s.gateway.Grant(SessionTokenFromContext(r.Context()), req.Operation, req.Table)
		if err != nil {
			log.Err(err).Msg("grant failed unexpectedly")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeResult(w, result)
	}
}

// OperationHandler dispatches a named operation through the gateway.
func (s *Server) OperationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operation := r.PathValue("operation")
		if _, known := gate.Describe(operation); !known {
			writeError(w, http.StatusNotFound, "unknown operation")
			return
		}

		var req OperationRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		result, err := s.gateway.Execute(r.Context(), SessionTokenFromContext(r.Context()), operation, req.Request)
		if err != nil {
			// Storage details stay in the log; callers get a generic
			// operation error.
			writeError(w, http.StatusInternalServerError, "operation failed")
			return
		}
		writeResult(w, result)
	}
}

// SchemaHandler returns the full database schema.
func (s *Server) SchemaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.gateway.Schema(r.Context(), SessionTokenFromContext(r.Context()))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "operation failed")
			return
		}
		writeResult(w, result)
	}
}

// HealthHandler reports liveness; it is the only ungated route.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
