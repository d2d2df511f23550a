package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
	redisclient "github.com/bloomhaus/petalboard-backend/pkg/redis"
)

const pendingCountCacheName = "orders:pending"

// Store is the persistence surface the order service consumes.
type Store interface {
	ListAll(ctx context.Context) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountPending(ctx context.Context) (int64, error)
}

// CountCache holds the short-lived pending-count value.
type CountCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CounterKey(name string) string
}

// ServiceParams wires the order service dependencies.
type ServiceParams struct {
	Store  Store
	Cache  CountCache
	Config config.OrdersConfig
	Logger *logger.Logger
}

// Service exposes the order list pipeline and the admin mutations over it.
type Service struct {
	store Store
	cache CountCache
	cfg   config.OrdersConfig
	logg  *logger.Logger
}

func NewService(params ServiceParams) *Service {
	return &Service{
		store: params.Store,
		cache: params.Cache,
		cfg:   params.Config,
		logg:  params.Logger,
	}
}

// List fetches the full order set and applies the filter/sort/page pipeline.
func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	snapshot, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading orders")
	}
	page := ApplyQuery(snapshot, q)
	return &page, nil
}

// Snapshot returns the full order set in fetch order for the aggregation and
// export consumers.
func (s *Service) Snapshot(ctx context.Context) ([]models.Order, error) {
	snapshot, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading orders")
	}
	return snapshot, nil
}

// Create persists a new pickup order from the intake flow.
func (s *Service) Create(ctx context.Context, dto CreateOrderDTO) (*models.Order, error) {
	if !dto.TimeSlot.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown time slot")
	}
	if dto.Status != "" && !dto.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status")
	}

	order := dto.ToModel()
	if err := s.store.Create(ctx, &order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
	}

	s.invalidatePendingCount(ctx)
	return &order, nil
}

// UpdateStatus transitions one order and drops the cached pending count.
func (s *Service) UpdateStatus(ctx context.Context, dto UpdateStatusDTO) error {
	if !dto.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown status")
	}

	if err := s.store.UpdateStatus(ctx, dto.ID, dto.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}

	s.invalidatePendingCount(ctx)

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": dto.ID.String(),
			"status":   string(dto.Status),
		}), "order status updated")
	}
	return nil
}

// Delete permanently removes one order.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting order")
	}

	s.invalidatePendingCount(ctx)

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", id.String()), "order deleted")
	}
	return nil
}

// PendingCount returns the number of pending orders, cached briefly to match
// the dashboard badge refresh cadence.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	if s.cache != nil {
		key := s.cache.CounterKey(pendingCountCacheName)
		if raw, err := s.cache.Get(ctx, key); err == nil {
			if count, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redisclient.Nil) && s.logg != nil {
			s.logg.Warn(ctx, "pending count cache unavailable")
		}
	}

	count, err := s.store.CountPending(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting pending orders")
	}

	if s.cache != nil && s.cfg.PendingCountTTL > 0 {
		key := s.cache.CounterKey(pendingCountCacheName)
		if err := s.cache.Set(ctx, key, strconv.FormatInt(count, 10), s.cfg.PendingCountTTL); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to cache pending count")
		}
	}
	return count, nil
}

func (s *Service) invalidatePendingCount(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CounterKey(pendingCountCacheName)); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to invalidate pending count cache")
	}
}
