package notifications

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAPI records transport calls.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) FetchNotifications(ctx context.Context, params Params) (*Page, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Page), args.Error(1)
}

func (m *MockAPI) MarkAsRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) MarkAsUnread(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) MarkAllAsSeen(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAPI) MarkAllAsRead(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
