package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tradedash-api/internal/application/otp"
	"github.com/tradedash-api/internal/application/registration"
	"github.com/tradedash-api/internal/application/session"
	"github.com/tradedash-api/internal/pkg/validate"
	"github.com/tradedash-api/internal/transport/http/middleware"
)

// AuthHandler handles the signup and session endpoints under /auth.
type AuthHandler struct {
	otpSvc     otp.Service
	regSvc     registration.Service
	sessionSvc session.Service
	devEchoOTP bool
}

func NewAuthHandler(otpSvc otp.Service, regSvc registration.Service, sessionSvc session.Service, devEchoOTP bool) *AuthHandler {
	return &AuthHandler{otpSvc: otpSvc, regSvc: regSvc, sessionSvc: sessionSvc, devEchoOTP: devEchoOTP}
}

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	code, err := h.otpSvc.Request(r.Context(), req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := SendOTPEnvelope{Sent: true}
	if h.devEchoOTP {
		resp.Code = code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req registration.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := h.regSvc.VerifyAndRegister(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.sessionSvc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Token:        result.Bearer,
		RefreshToken: result.RefreshToken,
		User:         result.Account,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken required")
		return
	}
	bearer, newToken, err := h.sessionSvc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshEnvelope{Token: bearer, RefreshToken: newToken})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.sessionSvc.Logout(r.Context(), claims.SessionID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.sessionSvc.Me(r.Context(), claims.AccountID, claims.SessionID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
