package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperr "github.com/elitecasino/crash-backend/internal/errors"
)

type loginRequest struct {
	InitData string `json:"init_data" validate:"required"`
}

type loginResponse struct {
	Status   string  `json:"status"`
	Balance  float64 `json:"balance"`
	Username string  `json:"username"`
}

type finishGameRequest struct {
	InitData   string  `json:"init_data" validate:"required"`
	Game       string  `json:"game" validate:"required"`
	Bet        float64 `json:"bet" validate:"gt=0"`
	Multiplier float64 `json:"multiplier" validate:"gte=0"`
	Win        *bool   `json:"win" validate:"required"`
}

type finishGameResponse struct {
	NewBalance float64 `json:"new_balance"`
}

// handleLogin authenticates the init data and returns (creating on first
// login) the caller's profile.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	identity, err := s.auth.Validate(req.InitData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.ledger.GetOrCreate(r.Context(), identity.ID, identity.DisplayName())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Status:   "ok",
		Balance:  user.Balance,
		Username: user.Username,
	})
}

// handleFinishGame authenticates the init data and settles one reported game
// result as a single signed balance delta.
func (s *Server) handleFinishGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req finishGameRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	identity, err := s.auth.Validate(req.InitData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	newBalance, err := s.ledger.Settle(r.Context(), identity.ID, req.Game, req.Bet, req.Multiplier, *req.Win)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, finishGameResponse{NewBalance: newBalance})
}

// decode parses and validates a JSON request body.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.NewValidationError("request body is not valid JSON")
	}

	if err := s.validate.Struct(dst); err != nil {
		return apperr.NewValidationError(err.Error())
	}

	return nil
}

// writeError maps the application error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	userMessage := err.Error()
	if s.errHandler != nil {
		userMessage = s.errHandler.Handle(r.Context(), err)
	}

	status := http.StatusInternalServerError

	var appErr *apperr.AppError
	if errors.As(err, &appErr) && appErr != nil {
		switch appErr.Code {
		case apperr.CodeAuth:
			status = http.StatusForbidden
		case apperr.CodeNotFound:
			status = http.StatusNotFound
		case apperr.CodeValidation:
			status = http.StatusBadRequest
		}
	}

	writeJSON(w, status, map[string]string{"error": userMessage})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
