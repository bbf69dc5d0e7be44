package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sebuszqo/FinanceTracker/internal/respond"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

const refreshCookieName = "refresh_token"

// AccessTokenMiddleware requires a valid Bearer access token and stores the user id in the context.
func (s *Service) AccessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respond.Error(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			respond.Error(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		userID, err := s.jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if _, err := s.lookupUser(r.Context(), userID); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				respond.Error(w, http.StatusUnauthorized, ErrUserNotFound.Error())
				return
			}
			respond.Error(w, http.StatusInternalServerError, ErrInternalError.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(user.WithID(r.Context(), userID)))
	})
}

// RefreshTokenMiddleware validates the refresh_token cookie against the user's hash token.
func (s *Service) RefreshTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "Refresh token is required")
			return
		}

		userID, err := s.jwtManager.ExtractUserIDFromRefreshToken(cookie.Value)
		if err != nil {
			if errors.Is(err, ErrExpiredJWTToken) {
				respond.Error(w, http.StatusUnauthorized, ErrExpiredJWTToken.Error())
				return
			}
			respond.Error(w, http.StatusUnauthorized, ErrInvalidJWTRefreshToken.Error())
			return
		}

		existingUser, err := s.lookupUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				respond.Error(w, http.StatusUnauthorized, ErrUserNotFound.Error())
				return
			}
			respond.Error(w, http.StatusInternalServerError, ErrInternalError.Error())
			return
		}

		if err := s.jwtManager.ValidateRefreshToken(cookie.Value, existingUser.HashToken); err != nil {
			respond.Error(w, http.StatusUnauthorized, ErrInvalidJWTRefreshToken.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(user.WithID(r.Context(), userID)))
	})
}
