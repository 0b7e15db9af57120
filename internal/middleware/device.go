package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const deviceIDKey contextKey = "deviceID"

const deviceCookieName = "deviceId"

// EnsureDeviceID guarantees every request carries a device fingerprint: an
// existing deviceId cookie is reused, otherwise a fresh UUID is set with a
// one-year lifetime. The value ends up in the login audit trail.
func EnsureDeviceID(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := ""
			if cookie, err := r.Cookie(deviceCookieName); err == nil && cookie.Value != "" {
				deviceID = cookie.Value
			} else {
				deviceID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     deviceCookieName,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			ctx := context.WithValue(r.Context(), deviceIDKey, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetDeviceID(ctx context.Context) string {
	deviceID, _ := ctx.Value(deviceIDKey).(string)
	return deviceID
}
