package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// MockOwnershipStore is a mock implementation of OwnershipStore for testing
type MockOwnershipStore struct {
	mock.Mock
}

func (m *MockOwnershipStore) OwnedCards(ctx context.Context, user models.UserID) ([]models.Card, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockOwnershipStore) ReplaceAll(ctx context.Context, user models.UserID, cards []models.Card) error {
	args := m.Called(ctx, user, cards)
	return args.Error(0)
}

func (m *MockOwnershipStore) DistinctUsers(ctx context.Context) ([]models.UserID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserID), args.Error(1)
}

func (m *MockOwnershipStore) CardsWithoutProductID(ctx context.Context) ([]models.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockOwnershipStore) SetProductID(ctx context.Context, id models.CardID, productID uint32) error {
	args := m.Called(ctx, id, productID)
	return args.Error(0)
}

// MockSetNameStore is a mock implementation of SetNameStore for testing
type MockSetNameStore struct {
	mock.Mock
}

func (m *MockSetNameStore) Exists(ctx context.Context, code models.SetCode) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSetNameStore) Save(ctx context.Context, set models.SetName) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

// MockMarketPriceStore is a mock implementation of MarketPriceStore for testing
type MockMarketPriceStore struct {
	mock.Mock
}

func (m *MockMarketPriceStore) SaveBatch(ctx context.Context, date models.Date, guides []models.FullPriceGuide) error {
	args := m.Called(ctx, date, guides)
	return args.Error(0)
}

func (m *MockMarketPriceStore) DistinctDates(ctx context.Context) ([]models.Date, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Date), args.Error(1)
}

func (m *MockMarketPriceStore) Lookup(ctx context.Context, productID uint32, date models.Date) (models.FullPriceGuide, bool, error) {
	args := m.Called(ctx, productID, date)
	return args.Get(0).(models.FullPriceGuide), args.Bool(1), args.Error(2)
}
