package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/api/responses"
	"github.com/bloomhaus/petalboard-backend/api/validators"
	"github.com/bloomhaus/petalboard-backend/internal/export"
	"github.com/bloomhaus/petalboard-backend/internal/orders"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

const maxPageIndex = 10000

// ListOrders applies the filter/sort/page pipeline and returns one page.
func ListOrders(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := orderQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// CreateOrder records a new pickup order.
func CreateOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orders.CreateOrderDTO
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateOrderStatus transitions one order's status.
func UpdateOrderStatus(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Status string `json:"status" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown status"))
			return
		}

		if err := svc.UpdateStatus(r.Context(), orders.UpdateStatusDTO{ID: id, Status: status}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

// DeleteOrder permanently removes one order.
func DeleteOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// PendingOrderCount serves the dashboard badge.
func PendingOrderCount(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.PendingCount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"pending": count})
	}
}

// ExportOrders renders the currently filtered, sorted order set in the
// requested format. The export sees the same rows the list view shows,
// unpaginated.
func ExportOrders(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := orderQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := exportRows(r, svc, q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := export.DocumentMeta{Title: "Petalboard Orders", GeneratedAt: time.Now()}
		switch exportFormat(r) {
		case "csv":
			out, err := export.OrdersCSV(rows)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			writeAttachment(w, "orders.csv", "text/csv", out)
		case "table":
			out, err := export.OrdersDocument(rows, meta)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			writeAttachment(w, "orders.txt", "text/plain; charset=utf-8", out)
		case "print":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write(export.OrdersPrintDocument(rows, meta))
		default:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "format must be csv, table, or print"))
		}
	}
}

// exportRows walks every page of the pipeline so the export matches the
// filtered, sorted set without the page-size cap.
func exportRows(r *http.Request, svc *orders.Service, q orders.Query) ([]models.Order, error) {
	q.PageIndex = 0
	first, err := svc.List(r.Context(), q)
	if err != nil {
		return nil, err
	}

	rows := append([]models.Order(nil), first.Orders...)
	for pageIndex := 1; pageIndex < first.TotalPages; pageIndex++ {
		q.PageIndex = pageIndex
		page, err := svc.List(r.Context(), q)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Orders...)
	}
	return rows, nil
}

func orderQueryFromRequest(r *http.Request) (orders.Query, error) {
	pageIndex, err := validators.ParseQueryInt(r, "page", 0, 0, maxPageIndex)
	if err != nil {
		return orders.Query{}, err
	}

	pickupDate, err := validators.ParseQueryDate(r, "pickup_date")
	if err != nil {
		return orders.Query{}, err
	}

	status := r.URL.Query().Get("status")
	if status != "" && status != orders.StatusAll {
		if _, err := enums.ParseOrderStatus(status); err != nil {
			return orders.Query{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter")
		}
	}

	sortField := orders.SortField(r.URL.Query().Get("sort"))
	if sortField != "" && !sortField.IsValid() {
		return orders.Query{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort field")
	}

	dir := orders.SortDirection(r.URL.Query().Get("dir"))
	if dir != "" && dir != orders.SortAsc && dir != orders.SortDesc {
		return orders.Query{}, pkgerrors.New(pkgerrors.CodeValidation, "sort direction must be asc or desc")
	}

	return orders.Query{
		SearchText:   r.URL.Query().Get("q"),
		StatusFilter: status,
		PickupDate:   pickupDate,
		SortField:    sortField,
		SortDir:      dir,
		PageIndex:    pageIndex,
	}, nil
}

func orderIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a uuid")
	}
	return id, nil
}

func exportFormat(r *http.Request) string {
	format := r.URL.Query().Get("format")
	if format == "" {
		return "csv"
	}
	return format
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(body)
}
