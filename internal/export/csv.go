package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/bloomhaus/petalboard-backend/internal/customers"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
)

var ordersCSVHeader = []string{
	"Order ID", "Customer Name", "Email", "Phone",
	"Pickup Date", "Time Slot", "Status", "Special Requests", "Created At",
}

var customersCSVHeader = []string{"Email", "Customer Name", "Total Orders", "Last Order Date"}

// OrdersCSV renders the order rows as CSV in the order given. Quoting is
// handled by the encoder, so embedded separators in names are safe.
func OrdersCSV(rows []models.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ordersCSVHeader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv header")
	}
	for _, order := range rows {
		special := ""
		if order.SpecialRequests != nil {
			special = *order.SpecialRequests
		}
		record := []string{
			order.ID.String(),
			order.CustomerName,
			order.Email,
			order.Phone,
			order.PickupDay(),
			string(order.TimeSlot),
			string(order.Status),
			special,
			order.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flushing csv")
	}
	return buf.Bytes(), nil
}

// CustomersCSV renders the aggregated customer rows as CSV in the order given.
func CustomersCSV(rows []customers.Customer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(customersCSVHeader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv header")
	}
	for _, c := range rows {
		record := []string{
			c.Email,
			c.Name,
			strconv.Itoa(c.TotalOrders),
			c.LastOrderDate.Format(time.DateOnly),
		}
		if err := w.Write(record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flushing csv")
	}
	return buf.Bytes(), nil
}
