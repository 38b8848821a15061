package calc_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	calc "github.com/goliatone/go-calc"
)

// MockUsers implements calc.Users for testing
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, user *calc.User) (*calc.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calc.User), args.Error(1)
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string) (*calc.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calc.User), args.Error(1)
}

// MockLogger implements calc.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}
