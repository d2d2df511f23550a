package customers

import (
	"context"
	"strings"
	"time"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// MinOrderThresholds are the selectable lower bounds for the order count
// filter. Zero means no minimum.
var MinOrderThresholds = []int{0, 2, 5, 10}

// Query filters the aggregated customer rows.
type Query struct {
	SearchText string
	MinOrders  int
	// From and Until bound the last order date. Zero means open on that end;
	// Until is inclusive through end-of-day.
	From  time.Time
	Until time.Time
}

// OrderSource supplies the full order snapshot to aggregate over.
type OrderSource interface {
	Snapshot(ctx context.Context) ([]models.Order, error)
}

// ServiceParams wires the customer roll-up dependencies.
type ServiceParams struct {
	Orders OrderSource
	Logger *logger.Logger
}

// Service builds the customer roll-up view over the order history.
type Service struct {
	orders OrderSource
	logg   *logger.Logger
}

func NewService(params ServiceParams) *Service {
	return &Service{
		orders: params.Orders,
		logg:   params.Logger,
	}
}

// List aggregates the order history and applies the roll-up filters.
func (s *Service) List(ctx context.Context, q Query) ([]Customer, error) {
	snapshot, err := s.orders.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(Aggregate(snapshot), q), nil
}

// Emails returns the filtered customers' addresses joined with a comma and
// space, ready for a mail client's recipient field.
func (s *Service) Emails(ctx context.Context, q Query) (string, int, error) {
	customers, err := s.List(ctx, q)
	if err != nil {
		return "", 0, err
	}
	addresses := make([]string, 0, len(customers))
	for _, c := range customers {
		addresses = append(addresses, c.Email)
	}
	return strings.Join(addresses, ", "), len(addresses), nil
}

// Filter AND-combines the search, minimum order count, and last-order date
// range predicates. Row order is preserved.
func Filter(customers []Customer, q Query) []Customer {
	search := strings.ToLower(strings.TrimSpace(q.SearchText))
	var until time.Time
	if !q.Until.IsZero() {
		until = endOfDay(q.Until)
	}

	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Email), search) &&
			!strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		if q.MinOrders > 0 && c.TotalOrders < q.MinOrders {
			continue
		}
		if !q.From.IsZero() && c.LastOrderDate.Before(q.From) {
			continue
		}
		if !until.IsZero() && c.LastOrderDate.After(until) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ValidateMinOrders rejects thresholds outside the selectable set.
func ValidateMinOrders(value int) error {
	for _, threshold := range MinOrderThresholds {
		if value == threshold {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "unsupported minimum order threshold")
}

func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
