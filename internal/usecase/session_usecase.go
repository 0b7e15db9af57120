package usecase

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cartside/backend/internal/domain"
	"github.com/cartside/backend/internal/token"
	"github.com/cartside/backend/pkg/logger"
)

var (
	ErrInvalidCredentials        = errors.New("invalid email or password")
	ErrEmailExists               = errors.New("email already exists")
	ErrMissingToken              = errors.New("refresh token is missing")
	ErrInvalidOrBlacklistedToken = errors.New("invalid or blacklisted refresh token")
	ErrInvalidToken              = errors.New("invalid token")
	ErrTokenExpired              = errors.New("token expired")
	ErrUserNotFound              = errors.New("user not found")
	ErrInvalidGoogleToken        = errors.New("invalid google token")
)

// TokenPair is one atomically issued access/refresh pair. Pairs are
// superseded on refresh, never mutated.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LoginMeta carries request facts recorded in the login audit trail.
type LoginMeta struct {
	DeviceID  string
	IPAddress string
	UserAgent string
}

// SessionUsecase drives the session lifecycle: login issues a pair and
// upserts the refresh record, refresh rotates the pair (single-use refresh
// tokens), logout blacklists the server-side record and the delivery layer
// clears the cookies.
type SessionUsecase struct {
	users  domain.UserRepository
	tokens domain.RefreshTokenRepository
	events domain.LoginEventRepository
	codec  *token.Codec
	log    logger.Logger
}

func NewSessionUsecase(
	users domain.UserRepository,
	tokens domain.RefreshTokenRepository,
	events domain.LoginEventRepository,
	codec *token.Codec,
	log logger.Logger,
) *SessionUsecase {
	return &SessionUsecase{
		users:  users,
		tokens: tokens,
		events: events,
		codec:  codec,
		log:    log,
	}
}

func (u *SessionUsecase) Register(email, password, name string) (*domain.User, *TokenPair, error) {
	existing, err := u.users.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         domain.RoleUser,
		AuthProvider: "email",
	}
	if err := u.users.Create(user); err != nil {
		return nil, nil, err
	}

	pair, err := u.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (u *SessionUsecase) Login(email, password string, meta LoginMeta) (*domain.User, *TokenPair, error) {
	user, err := u.users.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := u.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	u.recordLogin(user.ID, "password", meta)
	return user, pair, nil
}

// GoogleUserInfo is the response from Google's userinfo endpoint.
type GoogleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (u *SessionUsecase) GoogleLogin(accessToken string, meta LoginMeta) (*domain.User, *TokenPair, error) {
	userInfo, err := fetchGoogleUserInfo(accessToken)
	if err != nil {
		return nil, nil, ErrInvalidGoogleToken
	}

	user, err := u.users.GetByProviderID("google", userInfo.Sub)
	if err != nil {
		return nil, nil, err
	}

	if user == nil {
		user, err = u.users.GetByEmail(userInfo.Email)
		if err != nil {
			return nil, nil, err
		}

		if user != nil {
			// Link Google to the existing account.
			user.AuthProvider = "google"
			user.ProviderID = userInfo.Sub
			if user.Name == "" {
				user.Name = userInfo.Name
			}
			if err := u.users.Update(user); err != nil {
				return nil, nil, err
			}
		} else {
			user = &domain.User{
				Email:        userInfo.Email,
				Name:         userInfo.Name,
				Role:         domain.RoleUser,
				AuthProvider: "google",
				ProviderID:   userInfo.Sub,
			}
			if err := u.users.Create(user); err != nil {
				return nil, nil, err
			}
		}
	}

	pair, err := u.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	u.recordLogin(user.ID, "google", meta)
	return user, pair, nil
}

func fetchGoogleUserInfo(accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequest(http.MethodGet, "https://www.googleapis.com/oauth2/v3/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidGoogleToken
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, err
	}
	if userInfo.Email == "" || userInfo.Sub == "" {
		return nil, ErrInvalidGoogleToken
	}
	return &userInfo, nil
}

// Refresh rotates the session. The presented token must match an active
// server-side record; signature or structural failures burn the record
// (blacklist), plain expiry rejects without burning so a clock-skewed client
// does not lose its session record to a transient false negative.
func (u *SessionUsecase) Refresh(presented string, meta LoginMeta) (*TokenPair, error) {
	if presented == "" {
		return nil, ErrMissingToken
	}

	record, err := u.tokens.FindActive(presented)
	if err != nil {
		return nil, err
	}
	if record == nil {
		u.log.Warn("refresh with unknown or blacklisted token")
		return nil, ErrInvalidOrBlacklistedToken
	}

	payload, err := u.codec.VerifyRefresh(presented)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		if blErr := u.tokens.Blacklist(presented); blErr != nil {
			u.log.Error("failed to blacklist refresh token", "error", blErr)
		}
		u.log.Warn("refresh token failed verification, blacklisted", "error", err)
		return nil, ErrInvalidToken
	}

	user, err := u.users.GetByID(payload.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Rotation: the upsert inside issuePair overwrites the presented token,
	// making it single-use.
	pair, err := u.issuePair(user)
	if err != nil {
		return nil, err
	}

	u.recordLogin(user.ID, "refresh", meta)
	return pair, nil
}

// Logout blacklists the server-side refresh record so a stolen refresh token
// is dead after logout, not merely evicted from the browser.
func (u *SessionUsecase) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return u.tokens.Blacklist(refreshToken)
}

func (u *SessionUsecase) VerifyAccess(tokenStr string) (*token.Payload, error) {
	return u.codec.VerifyAccess(tokenStr)
}

func (u *SessionUsecase) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return u.users.GetByID(id)
}

func (u *SessionUsecase) LoginHistory(userID uuid.UUID, limit, offset int) ([]*domain.LoginEvent, error) {
	return u.events.ListByUser(userID, limit, offset)
}

func (u *SessionUsecase) AccessTTL() time.Duration  { return u.codec.AccessTTL() }
func (u *SessionUsecase) RefreshTTL() time.Duration { return u.codec.RefreshTTL() }

func (u *SessionUsecase) issuePair(user *domain.User) (*TokenPair, error) {
	payload := token.Payload{UserID: user.ID, Role: user.Role}

	accessToken, accessExp, err := u.codec.IssueAccess(payload)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := u.codec.IssueRefresh(payload)
	if err != nil {
		return nil, err
	}

	if err := u.tokens.Upsert(user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// recordLogin is best-effort: audit failures are logged, never surfaced.
func (u *SessionUsecase) recordLogin(userID uuid.UUID, method string, meta LoginMeta) {
	event := &domain.LoginEvent{
		UserID:     userID,
		AuthMethod: method,
		DeviceID:   meta.DeviceID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := u.events.Create(event); err != nil {
		u.log.Error("failed to record login event", "user_id", userID, "error", err)
	}
	if err := u.users.UpdateLastLogin(userID); err != nil {
		u.log.Error("failed to update last login", "user_id", userID, "error", err)
	}
}
