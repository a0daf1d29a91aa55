package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	syncapp "github.com/storesync/backend/internal/application/storesync"
	"github.com/storesync/backend/internal/domain/storesync"
)

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Reconcile(ctx context.Context, d syncapp.Delivery) (*syncapp.ReconcileResult, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncapp.ReconcileResult), args.Error(1)
}

type mockOrderEvents struct {
	mock.Mock
}

func (m *mockOrderEvents) HandleEvent(ctx context.Context, event *storesync.StorefrontEvent, rawBody []byte) {
	m.Called(ctx, event, rawBody)
}

type mockAuthFlow struct {
	mock.Mock
}

func (m *mockAuthFlow) AuthorizationURL(ctx context.Context, organizationID string, scopes []string) (string, error) {
	args := m.Called(ctx, organizationID, scopes)
	return args.String(0), args.Error(1)
}

func (m *mockAuthFlow) Callback(ctx context.Context, req syncapp.CallbackRequest) (*syncapp.CallbackResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncapp.CallbackResult), args.Error(1)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }
