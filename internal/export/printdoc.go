package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bloomhaus/petalboard-backend/internal/customers"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
)

// OrdersPrintDocument renders the order rows as a print-friendly block list:
// one labeled block per order, in the order given, under the standard header.
func OrdersPrintDocument(rows []models.Order, meta DocumentMeta) []byte {
	var buf bytes.Buffer
	writeDocumentHeader(&buf, meta, len(rows), 1, 1)

	for i, order := range rows {
		fmt.Fprintf(&buf, "#%d  %s\n", i+1, order.CustomerName)
		fmt.Fprintf(&buf, "    Email:   %s\n", order.Email)
		fmt.Fprintf(&buf, "    Phone:   %s\n", order.Phone)
		fmt.Fprintf(&buf, "    Pickup:  %s (%s)\n", order.PickupDay(), order.TimeSlot)
		fmt.Fprintf(&buf, "    Status:  %s\n", order.Status)
		if order.SpecialRequests != nil && *order.SpecialRequests != "" {
			fmt.Fprintf(&buf, "    Notes:   %s\n", *order.SpecialRequests)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// CustomersPrintDocument renders the customer roll-up as a print-friendly
// block list in the order given.
func CustomersPrintDocument(rows []customers.Customer, meta DocumentMeta) []byte {
	var buf bytes.Buffer
	writeDocumentHeader(&buf, meta, len(rows), 1, 1)

	for i, c := range rows {
		fmt.Fprintf(&buf, "#%d  %s\n", i+1, c.Name)
		fmt.Fprintf(&buf, "    Email:       %s\n", c.Email)
		fmt.Fprintf(&buf, "    Orders:      %d\n", c.TotalOrders)
		fmt.Fprintf(&buf, "    Last order:  %s\n", c.LastOrderDate.Format(time.DateOnly))
		buf.WriteString("\n")
	}

	return buf.Bytes()
}
