package http

import (
	"net/http"

	"github.com/cartside/backend/internal/usecase"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// setAuthCookies writes both session cookies. MaxAge mirrors each token's
// TTL so the browser drops the cookie when the token dies.
func (h *Handler) setAuthCookies(w http.ResponseWriter, pair *usecase.TokenPair) {
	h.setCookie(w, accessCookieName, pair.AccessToken, int(h.sessions.AccessTTL().Seconds()))
	h.setCookie(w, refreshCookieName, pair.RefreshToken, int(h.sessions.RefreshTTL().Seconds()))
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	h.setCookie(w, accessCookieName, "", -1)
	h.setCookie(w, refreshCookieName, "", -1)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
