package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
)

// SortField names a column the order list can be ordered by.
type SortField string

const (
	SortCreatedAt    SortField = "created_at"
	SortPickupDate   SortField = "pickup_date"
	SortCustomerName SortField = "customer_name"
	SortPhone        SortField = "phone"
	SortTimeSlot     SortField = "time_slot"
)

// IsValid reports whether the sort field is one of the known columns.
func (f SortField) IsValid() bool {
	switch f {
	case SortCreatedAt, SortPickupDate, SortCustomerName, SortPhone, SortTimeSlot:
		return true
	}
	return false
}

// SortDirection orders the list ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageSize is the fixed number of orders per page.
const PageSize = 10

// StatusAll is the status filter wildcard.
const StatusAll = "all"

// Query is the filter/sort/page configuration applied to the full order set.
type Query struct {
	SearchText   string
	StatusFilter string
	// PickupDate filters on the exact calendar day; zero means no constraint.
	PickupDate time.Time
	SortField  SortField
	SortDir    SortDirection
	// PageIndex is zero-based.
	PageIndex int
}

// Normalize fills defaults matching the dashboard's initial view: newest
// orders first.
func (q Query) Normalize() Query {
	if !q.SortField.IsValid() {
		q.SortField = SortCreatedAt
	}
	if q.SortDir != SortAsc {
		q.SortDir = SortDesc
	}
	if q.StatusFilter == "" {
		q.StatusFilter = StatusAll
	}
	if q.PageIndex < 0 {
		q.PageIndex = 0
	}
	return q
}

// Page is one page of the filtered, sorted order list.
type Page struct {
	Orders     []models.Order `json:"orders"`
	TotalCount int            `json:"total_count"`
	TotalPages int            `json:"total_pages"`
	PageIndex  int            `json:"page_index"`
	PageSize   int            `json:"page_size"`
}

// UpdateStatusDTO carries a status transition for one order.
type UpdateStatusDTO struct {
	ID     uuid.UUID
	Status enums.OrderStatus
}

// CreateOrderDTO captures a new pickup order from the intake flow.
type CreateOrderDTO struct {
	CustomerName    string            `json:"customer_name" validate:"required,min=1,max=200"`
	Email           string            `json:"email" validate:"required,email"`
	Phone           string            `json:"phone" validate:"required,min=5,max=30"`
	PickupDate      time.Time         `json:"pickup_date" validate:"required"`
	TimeSlot        enums.TimeSlot    `json:"time_slot" validate:"required"`
	SpecialRequests *string           `json:"special_requests,omitempty"`
	Status          enums.OrderStatus `json:"status,omitempty"`
}

// ToModel maps the intake payload to the persistence shape.
func (dto CreateOrderDTO) ToModel() models.Order {
	status := dto.Status
	if status == "" {
		status = enums.OrderStatusPending
	}
	return models.Order{
		CustomerName:    dto.CustomerName,
		Email:           dto.Email,
		Phone:           dto.Phone,
		PickupDate:      dto.PickupDate,
		TimeSlot:        dto.TimeSlot,
		SpecialRequests: dto.SpecialRequests,
		Status:          status,
	}
}
