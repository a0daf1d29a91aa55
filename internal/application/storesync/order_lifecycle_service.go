package storesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/telemetry"
)

// Order event actions reported to metrics and logs
const (
	ActionCreated   = "created"
	ActionExisting  = "existing"
	ActionConfirmed = "confirmed"
	ActionDeleted   = "deleted"
	ActionIgnored   = "ignored"
	ActionDuplicate = "duplicate"
	ActionFailed    = "failed"
)

// OrderLifecycleService mirrors storefront order events as sales orders on
// the inventory platform.
type OrderLifecycleService struct {
	resolver       *IdentityResolver
	orders         storesync.OrderRepository
	tokens         AccessTokenProvider
	inventory      storesync.InventoryConnector
	storefront     storesync.StorefrontConnector
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	archive        PayloadArchive
	metrics        MetricsRecorder
	logger         *zap.Logger
}

// OrderLifecycleServiceConfig holds the service dependencies.
// Idempotency and Archive are optional.
type OrderLifecycleServiceConfig struct {
	Resolver       *IdentityResolver
	Orders         storesync.OrderRepository
	Tokens         AccessTokenProvider
	Inventory      storesync.InventoryConnector
	Storefront     storesync.StorefrontConnector
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	Archive        PayloadArchive
	Metrics        MetricsRecorder
	Logger         *zap.Logger
}

// NewOrderLifecycleService creates a new OrderLifecycleService
func NewOrderLifecycleService(cfg OrderLifecycleServiceConfig) *OrderLifecycleService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	return &OrderLifecycleService{
		resolver:       cfg.Resolver,
		orders:         cfg.Orders,
		tokens:         cfg.Tokens,
		inventory:      cfg.Inventory,
		storefront:     cfg.Storefront,
		idempotency:    cfg.Idempotency,
		idempotencyTTL: ttl,
		archive:        cfg.Archive,
		metrics:        metricsOrNoop(cfg.Metrics),
		logger:         logger,
	}
}

// HandleEvent processes a storefront event and never fails. The storefront
// retries on non-2xx answers, so every error is logged here and dropped.
func (s *OrderLifecycleService) HandleEvent(ctx context.Context, event *storesync.StorefrontEvent, rawBody []byte) {
	s.archiveEvent(ctx, event, rawBody)

	action, err := s.dispatch(ctx, event)
	if err != nil {
		s.logger.Error("Storefront event failed",
			zap.String("event_id", event.EventID),
			zap.String("event_type", string(event.EventType)),
			zap.Int64("storefront_store_id", event.TargetStoreID()),
			zap.String("order_id", event.OrderID()),
			zap.Error(err))
		action = ActionFailed
	}
	s.metrics.RecordOrderEvent(ctx, string(event.EventType), action)
}

// Dispatch routes event to its handler and returns the handler's error.
func (s *OrderLifecycleService) Dispatch(ctx context.Context, event *storesync.StorefrontEvent) error {
	_, err := s.dispatch(ctx, event)
	return err
}

func (s *OrderLifecycleService) dispatch(ctx context.Context, event *storesync.StorefrontEvent) (action string, err error) {
	if !event.EventType.IsValid() {
		return "", fmt.Errorf("%w: %q", storesync.ErrUnknownEventType, event.EventType)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "order_lifecycle", "dispatch",
		telemetry.WithAttribute(telemetry.SpanAttrEventType, string(event.EventType)),
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, event.OrderID()))
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.SetOK(span)
		}
		span.End()
	}()

	key, fresh := s.claim(ctx, event)
	if !fresh {
		s.logger.Info("Duplicate storefront event acknowledged", zap.String("event_id", event.EventID))
		return ActionDuplicate, nil
	}
	// retain keeps the key claimed after a failure that left a sales order
	// behind, so a redelivery cannot create a second one.
	retain := false
	defer func() {
		if err != nil && key != "" && !retain {
			if rErr := s.idempotency.Release(ctx, key); rErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(rErr))
			}
		}
	}()

	store, err := s.resolver.ResolveStoreByStorefrontID(ctx, event.TargetStoreID())
	if err != nil {
		return "", err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrStoreID, store.ID)

	token, err := s.tokens.AccessToken(ctx, store)
	if err != nil {
		return "", err
	}
	inventory := s.inventory.Connect(store, token.AccessToken)

	switch event.EventType {
	case storesync.EventOrderCreated:
		action, retain, err = s.createOrder(ctx, store, inventory, event)
		return action, err
	case storesync.EventOrderUpdated:
		return s.updateOrder(ctx, store, inventory, event)
	default:
		return s.deleteOrder(ctx, store, inventory, event)
	}
}

func (s *OrderLifecycleService) claim(ctx context.Context, event *storesync.StorefrontEvent) (string, bool) {
	if s.idempotency == nil || event.EventID == "" {
		return "", true
	}
	key := EventKey(event.EventID)
	fresh, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
	if err != nil {
		s.logger.Warn("Idempotency store unavailable, processing event", zap.Error(err))
		return "", true
	}
	return key, fresh
}

// createOrder creates and, for paid orders, confirms the sales order of a
// new storefront order. Every product must be mapped; the first unmapped
// one aborts creation.
//
// retain reports a failure that happened after the sales order was created
// but before its mapping was stored. A failed confirmation does not set it:
// the mapping exists, and a redelivered paid event confirms the existing
// sales order.
func (s *OrderLifecycleService) createOrder(ctx context.Context, store *storesync.Store, inventory storesync.InventoryGateway, event *storesync.StorefrontEvent) (action string, retain bool, err error) {
	orderID := event.OrderID()
	paid := event.Data.NewPaymentStatus == storesync.PaymentPaid

	existing, err := s.orders.FindByStorefrontOrderID(ctx, store.ID, orderID)
	if err == nil {
		s.logger.Info("Sales order already exists for storefront order",
			zap.String("order_id", orderID),
			zap.String("salesorder_id", existing.InventoryOrderID))
		if !paid {
			return ActionExisting, false, nil
		}
		if err := inventory.ConfirmSalesOrder(ctx, existing.InventoryOrderID); err != nil {
			return "", false, err
		}
		return ActionConfirmed, false, nil
	}
	if !errors.Is(err, storesync.ErrOrderNotFound) {
		return "", false, err
	}

	order, err := s.storefront.Connect(store).GetOrder(ctx, orderID, storesync.OrderDetailFields)
	if err != nil {
		return "", false, err
	}

	lines := make([]storesync.SalesOrderLine, 0, len(order.Items))
	for _, it := range order.Items {
		item, err := s.resolver.ResolveItemByStorefrontID(ctx, store, it.ProductID)
		if err != nil {
			return "", false, fmt.Errorf("storefront product %d: %w", it.ProductID, err)
		}
		lines = append(lines, storesync.SalesOrderLine{
			ItemID:   item.InventoryItemID,
			Rate:     it.Price,
			Quantity: it.Quantity,
		})
	}

	customerID, err := s.resolveCustomer(ctx, inventory, order)
	if err != nil {
		return "", false, err
	}

	salesOrder, err := inventory.CreateSalesOrder(ctx, storesync.SalesOrderInput{
		CustomerID: customerID,
		LineItems:  lines,
		Notes:      "Storefront order #" + orderID,
	})
	if err != nil {
		return "", false, err
	}

	if err := s.orders.Create(ctx, storesync.NewOrder(store.ID, salesOrder.ID, orderID)); err != nil {
		s.logger.Error("Sales order created but its mapping was not stored",
			zap.Int64("store_id", store.ID),
			zap.String("order_id", orderID),
			zap.String("salesorder_id", salesOrder.ID),
			zap.Error(err))
		return "", true, err
	}
	s.logger.Info("Sales order created for storefront order",
		zap.Int64("store_id", store.ID),
		zap.String("order_id", orderID),
		zap.String("salesorder_id", salesOrder.ID),
		zap.String("salesorder_number", salesOrder.Number))

	if paid {
		if err := inventory.ConfirmSalesOrder(ctx, salesOrder.ID); err != nil {
			return "", false, err
		}
		return ActionConfirmed, false, nil
	}
	return ActionCreated, false, nil
}

// resolveCustomer finds the inventory contact by the order email, creating
// it from the shipping and billing persons when none exists.
func (s *OrderLifecycleService) resolveCustomer(ctx context.Context, inventory storesync.InventoryGateway, order *storesync.StorefrontOrder) (string, error) {
	if order.Email != "" {
		contacts, err := inventory.ListContactsByEmail(ctx, order.Email)
		if err != nil {
			return "", err
		}
		if len(contacts) > 0 {
			return contacts[0].ID, nil
		}
	}

	contact, err := inventory.CreateContact(ctx, storesync.ContactFromOrder(order))
	if err != nil {
		return "", err
	}
	return contact.ID, nil
}

func (s *OrderLifecycleService) updateOrder(ctx context.Context, store *storesync.Store, inventory storesync.InventoryGateway, event *storesync.StorefrontEvent) (string, error) {
	transition := event.Data.Transition()
	if transition == storesync.TransitionNone {
		return ActionIgnored, nil
	}

	mapping, err := s.orders.FindByStorefrontOrderID(ctx, store.ID, event.OrderID())
	if err != nil {
		return "", err
	}

	if transition == storesync.TransitionConfirm {
		if err := inventory.ConfirmSalesOrder(ctx, mapping.InventoryOrderID); err != nil {
			return "", err
		}
		return ActionConfirmed, nil
	}
	if err := inventory.DeleteSalesOrder(ctx, mapping.InventoryOrderID); err != nil {
		return "", err
	}
	return ActionDeleted, nil
}

func (s *OrderLifecycleService) deleteOrder(ctx context.Context, store *storesync.Store, inventory storesync.InventoryGateway, event *storesync.StorefrontEvent) (string, error) {
	mapping, err := s.orders.FindByStorefrontOrderID(ctx, store.ID, event.OrderID())
	if err != nil {
		return "", err
	}
	if err := inventory.DeleteSalesOrder(ctx, mapping.InventoryOrderID); err != nil {
		return "", err
	}
	return ActionDeleted, nil
}

func (s *OrderLifecycleService) archiveEvent(ctx context.Context, event *storesync.StorefrontEvent, rawBody []byte) {
	if s.archive == nil || len(rawBody) == 0 {
		return
	}
	_, err := s.archive.Archive(ctx, ArchivedPayload{
		Source:     SourceStorefront,
		Category:   string(event.EventType),
		StoreRef:   fmt.Sprintf("%d", event.TargetStoreID()),
		DeliveryID: event.EventID,
		Body:       rawBody,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("Failed to archive storefront event", zap.String("event_id", event.EventID), zap.Error(err))
	}
}
