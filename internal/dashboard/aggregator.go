package dashboard

import (
	"time"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
)

// DailySeriesDays is the fixed width of the order-volume chart.
const DailySeriesDays = 14

// DailyPoint is one calendar day's order count.
type DailyPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SlotCount is one time slot's order count.
type SlotCount struct {
	Slot  enums.TimeSlot `json:"slot"`
	Count int            `json:"count"`
}

// Stats is the dashboard summary computed from the full order snapshot.
type Stats struct {
	Total         int          `json:"total"`
	Pending       int          `json:"pending"`
	Completed     int          `json:"completed"`
	TodaysPickups int          `json:"todays_pickups"`
	DailySeries   []DailyPoint `json:"daily_series"`
	// SlotDistribution always lists the three slots in display order.
	SlotDistribution []SlotCount `json:"slot_distribution"`
}

// Compute derives the dashboard stats as of now. It is a pure function of
// the snapshot; nothing is cached or persisted.
func Compute(snapshot []models.Order, now time.Time) Stats {
	today := now.Format(time.DateOnly)

	seriesStart := now.AddDate(0, 0, -(DailySeriesDays - 1))
	countsByDay := make(map[string]int, DailySeriesDays)

	slots := enums.TimeSlots()
	slotIndex := make(map[enums.TimeSlot]int, len(slots))
	distribution := make([]SlotCount, len(slots))
	for i, slot := range slots {
		slotIndex[slot] = i
		distribution[i] = SlotCount{Slot: slot}
	}

	stats := Stats{}
	for _, order := range snapshot {
		stats.Total++
		switch order.Status {
		case enums.OrderStatusPending:
			stats.Pending++
		case enums.OrderStatusCompleted:
			stats.Completed++
		}
		if order.PickupDay() == today {
			stats.TodaysPickups++
		}
		createdDay := order.CreatedAt.In(now.Location()).Format(time.DateOnly)
		countsByDay[createdDay]++
		if i, ok := slotIndex[order.TimeSlot]; ok {
			distribution[i].Count++
		}
	}

	series := make([]DailyPoint, 0, DailySeriesDays)
	for i := 0; i < DailySeriesDays; i++ {
		day := seriesStart.AddDate(0, 0, i).Format(time.DateOnly)
		series = append(series, DailyPoint{Date: day, Count: countsByDay[day]})
	}

	stats.DailySeries = series
	stats.SlotDistribution = distribution
	return stats
}
