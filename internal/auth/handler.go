package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/respond"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

const refreshCookiePath = "/api/refresh/token"

type Handler struct {
	authService  *Service
	secureCookie bool
}

func NewHandler(authService *Service, secureCookie bool) *Handler {
	return &Handler{authService: authService, secureCookie: secureCookie}
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(h.authService.jwtManager.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrLogin string `json:"email_or_login"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmailOrLogin == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req.EmailOrLogin, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if result.TwoFactorRequired() {
		respond.JSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": map[string]string{
				"message":       "Two-factor authentication required",
				"session_token": result.SessionToken,
			},
		})
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": result.AccessToken,
		},
	})
}

func (h *Handler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionToken string `json:"session_token"`
		Code         string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionToken == "" || req.Code == "" {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.VerifyTwoFactor(r.Context(), req.SessionToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSessionToken), errors.Is(err, ErrExpiredSessionToken),
			errors.Is(err, ErrInvalid2FACode), errors.Is(err, ErrUserNotFound):
			respond.Error(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, ErrUser2FANotEnabled):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "Could not verify two-factor authentication")
		}
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"user_id":      result.User.ID,
			"access_token": result.AccessToken,
		},
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Logout successful",
	})
}

func (h *Handler) HandleRegisterTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := user.IDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otpURI, err := h.authService.RegisterTwoFactor(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUser2FAAlreadyEnabled) {
			respond.Error(w, http.StatusConflict, err.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, "Could not register two-factor authentication")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Two-factor authentication initiated. Please verify to enable.",
		"data": map[string]string{
			"otp_uri": otpURI,
		},
	})
}

func (h *Handler) HandleVerifyTwoFactorRegistration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := user.IDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.VerifyTwoFactorCode(r.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrInvalid2FACode):
			respond.Error(w, http.StatusUnauthorized, "Invalid 2fa code")
		case errors.Is(err, ErrUser2FAAlreadyEnabled):
			respond.Error(w, http.StatusConflict, "Two-factor authentication is already enabled")
		case errors.Is(err, ErrNoTwoFactorSecret):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) HandleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := user.IDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.DisableTwoFactor(r.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrUser2FANotEnabled):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInvalid2FACode):
			respond.Error(w, http.StatusUnauthorized, "Invalid 2FA code")
		default:
			respond.Error(w, http.StatusInternalServerError, "Could not disable two-factor authentication")
		}
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Two-factor authentication disabled successfully",
	})
}

func (h *Handler) HandleRefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := user.IDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, ErrUserNotFound.Error())
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshAccessToken(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respond.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, ErrInternalError.Error())
		return
	}

	h.setRefreshCookie(w, refreshToken)
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
		},
	})
}
