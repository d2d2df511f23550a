package models

import (
	"time"

	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	"github.com/google/uuid"
)

// RoleGrant associates a user with an authorization category. The pair is
// unique; granting the same role twice is a no-op at the schema level.
type RoleGrant struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_role_grants_user_role"`
	Role      enums.Role `gorm:"column:role;type:text;not null;uniqueIndex:idx_role_grants_user_role"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
