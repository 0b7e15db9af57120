package usecase

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartside/backend/internal/domain"
)

// In-memory repository fakes mirroring the postgres implementations'
// contracts, including the upsert-keyed-by-user refresh semantics.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByProviderID(provider, providerID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.AuthProvider == provider && user.ProviderID == providerID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.RefreshToken
	upserts int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{records: make(map[uuid.UUID]*domain.RefreshToken)}
}

func (r *fakeTokenRepo) Upsert(userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	now := time.Now()
	record, ok := r.records[userID]
	if !ok {
		r.records[userID] = &domain.RefreshToken{
			UserID: userID, Token: token, CreatedAt: now, UpdatedAt: now,
		}
		return nil
	}
	record.Token = token
	record.Blacklisted = false
	record.UpdatedAt = now
	return nil
}

func (r *fakeTokenRepo) FindActive(token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.Token == token && !record.Blacklisted {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTokenRepo) Blacklist(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.Token == token {
			record.Blacklisted = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(olderThan time.Duration) error {
	return nil
}

func (r *fakeTokenRepo) activeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, record := range r.records {
		if !record.Blacklisted {
			count++
		}
	}
	return count
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*domain.LoginEvent
}

func (r *fakeEventRepo) Create(event *domain.LoginEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) ListByUser(userID uuid.UUID, limit, offset int) ([]*domain.LoginEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.LoginEvent
	for _, event := range r.events {
		if event.UserID == userID {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakeCurrencyRepo struct {
	options []*domain.CurrencyOption
}

func (r *fakeCurrencyRepo) GetByCurrency(code string) (*domain.CurrencyOption, error) {
	for _, option := range r.options {
		if option.Currency == strings.ToUpper(code) {
			copied := *option
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCurrencyRepo) GetByCountry(countryCode string) (*domain.CurrencyOption, error) {
	for _, option := range r.options {
		if option.CountryCode == strings.ToUpper(countryCode) {
			copied := *option
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCurrencyRepo) List() ([]*domain.CurrencyOption, error) {
	return r.options, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products []*domain.Product
}

func (r *fakeProductRepo) Create(product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products = append(r.products, product)
	return nil
}

func (r *fakeProductRepo) GetByID(id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.products {
		if product.ID == id {
			return product, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(category string, limit, offset int) ([]*domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, product := range r.products {
		if category == "" || product.Category == category {
			out = append(out, product)
		}
	}
	return out, len(out), nil
}

type fakeCategoryRepo struct {
	categories []*domain.Category
}

func (r *fakeCategoryRepo) Create(category *domain.Category) error {
	r.categories = append(r.categories, category)
	return nil
}

func (r *fakeCategoryRepo) ListActive() ([]*domain.Category, error) {
	var out []*domain.Category
	for _, category := range r.categories {
		if category.IsActive {
			out = append(out, category)
		}
	}
	return out, nil
}
