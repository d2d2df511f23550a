package controllers

import (
	"net/http"
	"time"

	"github.com/bloomhaus/petalboard-backend/api/responses"
	"github.com/bloomhaus/petalboard-backend/api/validators"
	"github.com/bloomhaus/petalboard-backend/internal/customers"
	"github.com/bloomhaus/petalboard-backend/internal/export"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// ListCustomers serves the aggregated, filtered customer roll-up.
func ListCustomers(svc *customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := customerQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"customers":   rows,
			"total_count": len(rows),
		})
	}
}

// CustomerEmails returns the filtered addresses joined for a mail client's
// recipient field.
func CustomerEmails(svc *customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := customerQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		joined, count, err := svc.Emails(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"emails": joined,
			"count":  count,
		})
	}
}

// ExportCustomers renders the filtered customer roll-up in the requested
// format.
func ExportCustomers(svc *customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := customerQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := export.DocumentMeta{Title: "Petalboard Customers", GeneratedAt: time.Now()}
		switch exportFormat(r) {
		case "csv":
			out, err := export.CustomersCSV(rows)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			writeAttachment(w, "customers.csv", "text/csv", out)
		case "table":
			out, err := export.CustomersDocument(rows, meta)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			writeAttachment(w, "customers.txt", "text/plain; charset=utf-8", out)
		case "print":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write(export.CustomersPrintDocument(rows, meta))
		default:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "format must be csv, table, or print"))
		}
	}
}

func customerQueryFromRequest(r *http.Request) (customers.Query, error) {
	minOrders, err := validators.ParseQueryInt(r, "min_orders", 0, 0, 10)
	if err != nil {
		return customers.Query{}, err
	}
	if err := customers.ValidateMinOrders(minOrders); err != nil {
		return customers.Query{}, err
	}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return customers.Query{}, err
	}
	until, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return customers.Query{}, err
	}

	return customers.Query{
		SearchText: r.URL.Query().Get("q"),
		MinOrders:  minOrders,
		From:       from,
		Until:      until,
	}, nil
}
