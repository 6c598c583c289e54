package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
	mu     sync.Mutex
	events []models.OrderEvent
}

func (m *MockPublisher) PublishOrderEvent(event models.OrderEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockPublisher) Types() []models.OrderEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]models.OrderEventType, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

func newPublisher() *MockPublisher {
	p := new(MockPublisher)
	p.On("PublishOrderEvent", mock.Anything).Return(nil)
	return p
}

// fixture is a migrated in-memory database with one category and brand.
type fixture struct {
	db       *gorm.DB
	store    *repositories.GORMStore
	category *models.Category
	brand    *models.Brand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{db: db, store: repositories.NewGORMStore(db)}
	ctx := context.Background()
	f.category = &models.Category{Name: "Electronics"}
	require.NoError(t, f.store.Products().CreateCategory(ctx, f.category))
	f.brand = &models.Brand{Name: "Acme"}
	require.NoError(t, f.store.Products().CreateBrand(ctx, f.brand))
	return f
}

func (f *fixture) user(t *testing.T, username string, superuser bool) *models.User {
	t.Helper()
	u := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "hashed",
		IsSuperuser: superuser,
		IsActive:    true,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		CategoryID:    f.category.ID,
		BrandID:       f.brand.ID,
		StockQuantity: 10,
		IsActive:      true,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func customer(u *models.User) models.Identity {
	return models.Identity{UserID: u.ID}
}

func admin(u *models.User) models.Identity {
	return models.Identity{UserID: u.ID, IsSuperuser: true}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
