package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/bloomhaus/petalboard-backend/internal/customers"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
)

// DocumentPageRows is the row count per page in the tabular documents.
const DocumentPageRows = 25

// DocumentMeta parameterizes the fixed header block of a document export.
type DocumentMeta struct {
	Title       string
	GeneratedAt time.Time
}

// OrdersDocument renders a paginated plain-text document of the order rows,
// in the order given, with the standard header block on every page.
func OrdersDocument(rows []models.Order, meta DocumentMeta) ([]byte, error) {
	var buf bytes.Buffer

	pages := paginateOrders(rows)
	if len(pages) == 0 {
		pages = [][]models.Order{nil}
	}

	for pageNum, page := range pages {
		writeDocumentHeader(&buf, meta, len(rows), pageNum+1, len(pages))

		tw := tablewriter.NewWriter(&buf)
		tw.Header("Customer", "Email", "Phone", "Pickup", "Slot", "Status")
		for _, order := range page {
			if err := tw.Append([]string{
				order.CustomerName,
				order.Email,
				order.Phone,
				order.PickupDay(),
				string(order.TimeSlot),
				string(order.Status),
			}); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending document row")
			}
		}
		if err := tw.Render(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering document table")
		}

		if pageNum < len(pages)-1 {
			buf.WriteString("\f")
		}
	}

	return buf.Bytes(), nil
}

// CustomersDocument renders a paginated plain-text document of the customer
// roll-up rows in the order given.
func CustomersDocument(rows []customers.Customer, meta DocumentMeta) ([]byte, error) {
	var buf bytes.Buffer

	pages := paginateCustomers(rows)
	if len(pages) == 0 {
		pages = [][]customers.Customer{nil}
	}

	for pageNum, page := range pages {
		writeDocumentHeader(&buf, meta, len(rows), pageNum+1, len(pages))

		tw := tablewriter.NewWriter(&buf)
		tw.Header("Email", "Customer Name", "Total Orders", "Last Order Date")
		for _, c := range page {
			if err := tw.Append([]string{
				c.Email,
				c.Name,
				strconv.Itoa(c.TotalOrders),
				c.LastOrderDate.Format(time.DateOnly),
			}); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending document row")
			}
		}
		if err := tw.Render(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering document table")
		}

		if pageNum < len(pages)-1 {
			buf.WriteString("\f")
		}
	}

	return buf.Bytes(), nil
}

// writeDocumentHeader emits the fixed header block: title, generation
// timestamp, result-set cardinality, and page position.
func writeDocumentHeader(buf *bytes.Buffer, meta DocumentMeta, total, pageNum, pageCount int) {
	title := meta.Title
	if title == "" {
		title = "Petalboard Export"
	}
	fmt.Fprintf(buf, "%s\n", title)
	fmt.Fprintf(buf, "Generated: %s\n", meta.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(buf, "Records: %d\n", total)
	fmt.Fprintf(buf, "Page %d of %d\n\n", pageNum, pageCount)
}

func paginateOrders(rows []models.Order) [][]models.Order {
	var pages [][]models.Order
	for start := 0; start < len(rows); start += DocumentPageRows {
		end := start + DocumentPageRows
		if end > len(rows) {
			end = len(rows)
		}
		pages = append(pages, rows[start:end])
	}
	return pages
}

func paginateCustomers(rows []customers.Customer) [][]customers.Customer {
	var pages [][]customers.Customer
	for start := 0; start < len(rows); start += DocumentPageRows {
		end := start + DocumentPageRows
		if end > len(rows) {
			end = len(rows)
		}
		pages = append(pages, rows[start:end])
	}
	return pages
}
