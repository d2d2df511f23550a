package dashboard

import (
	"context"
	"time"

	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// OrderSource supplies the full order snapshot.
type OrderSource interface {
	Snapshot(ctx context.Context) ([]models.Order, error)
}

// ServiceParams wires the dashboard dependencies.
type ServiceParams struct {
	Orders OrderSource
	Config config.DashboardConfig
	Logger *logger.Logger
	Now    func() time.Time
}

// Service recomputes the dashboard summary on every request.
type Service struct {
	orders   OrderSource
	location *time.Location
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	location := time.Local
	if tz := params.Config.Timezone; tz != "" && tz != "Local" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading dashboard timezone")
		}
		location = loaded
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:   params.Orders,
		location: location,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Stats fetches the order snapshot and computes the summary as of now in the
// configured business calendar.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	snapshot, err := s.orders.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := Compute(snapshot, s.now().In(s.location))
	return &stats, nil
}
