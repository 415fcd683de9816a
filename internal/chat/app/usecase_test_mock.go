package app

import (
	"context"

	"team_portal_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Append moke append message
func (m *MockMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// Recent moke recent messages
func (m *MockMessageRepository) Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockBanRepository Mock BanRepository
type MockBanRepository struct {
	mock.Mock
}

// Find moke find ban record
func (m *MockBanRepository) Find(ctx context.Context, userID string) (*domain.BanRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.BanRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// Save moke save ban record
func (m *MockBanRepository) Save(ctx context.Context, rec *domain.BanRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// Delete moke delete ban record
func (m *MockBanRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
