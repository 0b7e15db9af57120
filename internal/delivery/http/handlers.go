package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartside/backend/internal/domain"
	"github.com/cartside/backend/internal/middleware"
	"github.com/cartside/backend/internal/usecase"
)

type Handler struct {
	sessions      *usecase.SessionUsecase
	catalog       *usecase.CatalogUsecase
	pricing       *usecase.PricingUsecase
	secureCookies bool
}

func NewHandler(sessions *usecase.SessionUsecase, catalog *usecase.CatalogUsecase, pricing *usecase.PricingUsecase, secureCookies bool) *Handler {
	return &Handler{
		sessions:      sessions,
		catalog:       catalog,
		pricing:       pricing,
		secureCookies: secureCookies,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// Auth handlers

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResponse struct {
	User   *domain.User       `json:"user"`
	Tokens *usecase.TokenPair `json:"tokens"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, tokens, err := h.sessions.Register(req.Email, req.Password, req.Name)
	if errors.Is(err, usecase.ErrEmailExists) {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.setAuthCookies(w, tokens)
	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, tokens, err := h.sessions.Login(req.Email, req.Password, h.loginMeta(r))
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.setAuthCookies(w, tokens)
	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

type googleLoginRequest struct {
	AccessToken string `json:"access_token"`
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "Access token is required")
		return
	}

	user, tokens, err := h.sessions.GoogleLogin(req.AccessToken, h.loginMeta(r))
	if errors.Is(err, usecase.ErrInvalidGoogleToken) {
		writeError(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to authenticate with Google")
		return
	}

	h.setAuthCookies(w, tokens)
	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := ""
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		presented = cookie.Value
	}

	tokens, err := h.sessions.Refresh(presented, h.loginMeta(r))
	switch {
	case errors.Is(err, usecase.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, "Refresh token is missing")
		return
	case errors.Is(err, usecase.ErrInvalidOrBlacklistedToken),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenExpired),
		errors.Is(err, usecase.ErrUserNotFound):
		h.clearAuthCookies(w)
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	h.setAuthCookies(w, tokens)
	writeJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Logout(cookie.Value); err != nil {
			// Cookie clearing still proceeds; the record stays revocable by expiry.
			writeError(w, http.StatusInternalServerError, "Failed to logout")
			return
		}
	}

	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok || !id.IsAuthenticated {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.sessions.GetUserByID(id.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetLoginHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok || !id.IsAuthenticated {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	events, err := h.sessions.LoginHistory(id.UserID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get login history")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Catalog handlers

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	currency := h.catalog.ShopperCurrency(r.Context(), clientIP(r), r.URL.Query().Get("currency"))

	result, err := h.catalog.ListProducts(r.Context(), currency, category, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	currency := h.catalog.ShopperCurrency(r.Context(), clientIP(r), r.URL.Query().Get("currency"))

	product, err := h.catalog.GetProduct(r.Context(), id, currency)
	if errors.Is(err, usecase.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if product.Name == "" || len(product.Variations) == 0 {
		writeError(w, http.StatusBadRequest, "Name and at least one variation are required")
		return
	}

	if err := h.catalog.CreateProduct(&product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.GetCategories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.pricing.ListCurrencies()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get currencies")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"currencies": currencies})
}

func (h *Handler) GetCurrencyInfo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	info, err := h.pricing.CurrencyInfo(r.Context(), code)
	if errors.Is(err, usecase.ErrCurrencyNotFound) {
		writeError(w, http.StatusNotFound, "Currency not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get currency info")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"currencyInfo": info})
}

func (h *Handler) loginMeta(r *http.Request) usecase.LoginMeta {
	return usecase.LoginMeta{
		DeviceID:  middleware.GetDeviceID(r.Context()),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
