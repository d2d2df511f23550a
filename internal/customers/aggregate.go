package customers

import (
	"strings"
	"time"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
)

// Customer is one distinct email rolled up from the order history.
type Customer struct {
	Email string `json:"email"`
	// Name is the customer name from the most recent order for this email.
	Name          string    `json:"name"`
	TotalOrders   int       `json:"total_orders"`
	LastOrderDate time.Time `json:"last_order_date"`
}

// Aggregate folds the order set into one row per email. Output preserves the
// insertion order of first encounter. A later order only overwrites the name
// and last date when its created timestamp is strictly greater.
func Aggregate(orders []models.Order) []Customer {
	index := make(map[string]int, len(orders))
	out := make([]Customer, 0, len(orders))

	for _, order := range orders {
		key := strings.ToLower(strings.TrimSpace(order.Email))
		if key == "" {
			continue
		}

		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, Customer{
				Email:         order.Email,
				Name:          order.CustomerName,
				TotalOrders:   1,
				LastOrderDate: order.CreatedAt,
			})
			continue
		}

		out[pos].TotalOrders++
		if order.CreatedAt.After(out[pos].LastOrderDate) {
			out[pos].LastOrderDate = order.CreatedAt
			out[pos].Name = order.CustomerName
		}
	}

	return out
}
