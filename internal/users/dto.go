package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
)

// UserDTO is the outward representation of a user account.
type UserDTO struct {
	ID          uuid.UUID    `json:"id"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	IsActive    bool         `json:"is_active"`
	Roles       []enums.Role `json:"roles"`
	LastLoginAt *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CreateUserDTO carries everything needed to persist a new account.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Roles        []enums.Role
}

// FromModel maps the persistence shape to the outward DTO.
func FromModel(m models.User) UserDTO {
	roles := make([]enums.Role, 0, len(m.Grants))
	for _, grant := range m.Grants {
		roles = append(roles, grant.Role)
	}
	return UserDTO{
		ID:          m.ID,
		Email:       m.Email,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		IsActive:    m.IsActive,
		Roles:       roles,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
	}
}

// ToModel maps a create request to the persistence shape. Role grants are
// attached so gorm inserts them in the same statement batch.
func (dto CreateUserDTO) ToModel() models.User {
	grants := make([]models.RoleGrant, 0, len(dto.Roles))
	for _, role := range dto.Roles {
		grants = append(grants, models.RoleGrant{Role: role})
	}
	return models.User{
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		IsActive:     true,
		Grants:       grants,
	}
}

// HasRole reports whether the user holds the given role.
func (u UserDTO) HasRole(role enums.Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
