package models

import (
	"time"

	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	"github.com/google/uuid"
)

// Order is a flower pickup order captured by the public intake flow and
// managed from the admin dashboard. Orders are hard-deleted.
type Order struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerName    string            `gorm:"column:customer_name;not null" json:"customer_name"`
	Email           string            `gorm:"type:text;not null;index" json:"email"`
	Phone           string            `gorm:"column:phone;not null" json:"phone"`
	PickupDate      time.Time         `gorm:"column:pickup_date;type:date;not null" json:"pickup_date"`
	TimeSlot        enums.TimeSlot    `gorm:"column:time_slot;type:text;not null" json:"time_slot"`
	SpecialRequests *string           `gorm:"column:special_requests" json:"special_requests,omitempty"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// PickupDay returns the pickup date truncated to its calendar day string.
func (o Order) PickupDay() string {
	return o.PickupDate.Format(time.DateOnly)
}
