package orders

import (
	"sort"
	"strings"
	"time"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
)

// ApplyQuery runs the list pipeline over the full order snapshot: filter,
// stable sort, then slice one fixed-size page.
func ApplyQuery(snapshot []models.Order, q Query) Page {
	q = q.Normalize()

	filtered := filterOrders(snapshot, q)
	sortOrders(filtered, q.SortField, q.SortDir)

	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize

	start := q.PageIndex * PageSize
	if start > total {
		start = total
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	page := make([]models.Order, end-start)
	copy(page, filtered[start:end])

	return Page{
		Orders:     page,
		TotalCount: total,
		TotalPages: totalPages,
		PageIndex:  q.PageIndex,
		PageSize:   PageSize,
	}
}

// filterOrders AND-combines the search, status, and pickup date predicates.
func filterOrders(snapshot []models.Order, q Query) []models.Order {
	search := strings.ToLower(strings.TrimSpace(q.SearchText))
	wantStatus := q.StatusFilter != StatusAll && q.StatusFilter != ""
	wantDate := !q.PickupDate.IsZero()
	pickupDay := q.PickupDate.Format(time.DateOnly)

	out := make([]models.Order, 0, len(snapshot))
	for _, order := range snapshot {
		if search != "" && !matchesSearch(order, search) {
			continue
		}
		if wantStatus && string(order.Status) != q.StatusFilter {
			continue
		}
		if wantDate && order.PickupDay() != pickupDay {
			continue
		}
		out = append(out, order)
	}
	return out
}

// matchesSearch checks the lowered needle against name, email, and phone.
// Name and email fold case; phone matches on the raw digits.
func matchesSearch(order models.Order, loweredNeedle string) bool {
	if strings.Contains(strings.ToLower(order.CustomerName), loweredNeedle) {
		return true
	}
	if strings.Contains(strings.ToLower(order.Email), loweredNeedle) {
		return true
	}
	return strings.Contains(order.Phone, loweredNeedle)
}

// sortOrders totally orders the slice in place. Ascending is a stable sort so
// equal keys keep their snapshot order; descending is the exact reverse of
// the ascending sequence.
func sortOrders(list []models.Order, field SortField, dir SortDirection) {
	sort.SliceStable(list, func(i, j int) bool {
		return lessByField(list[i], list[j], field)
	})
	if dir == SortDesc {
		reverseOrders(list)
	}
}

func lessByField(a, b models.Order, field SortField) bool {
	switch field {
	case SortPickupDate:
		return a.PickupDate.Before(b.PickupDate)
	case SortCustomerName:
		return strings.ToLower(a.CustomerName) < strings.ToLower(b.CustomerName)
	case SortPhone:
		return a.Phone < b.Phone
	case SortTimeSlot:
		return string(a.TimeSlot) < string(b.TimeSlot)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func reverseOrders(list []models.Order) {
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
}
