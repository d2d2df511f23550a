package auth

import (
	"context"

	"github.com/bloomhaus/petalboard-backend/internal/users"
	"github.com/bloomhaus/petalboard-backend/pkg/db"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/security"
)

// Register creates a new account with a staff grant. The admin flag is only
// honored outside production; seeding production admins goes through the
// migration path instead.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	if req.Admin && s.app.IsProd() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin registration is disabled")
	}

	hash, err := security.HashPassword(req.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	roles := []enums.Role{enums.RoleStaff}
	if req.Admin {
		roles = append(roles, enums.RoleAdmin)
	}

	model := users.CreateUserDTO{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Roles:        roles,
	}.ToModel()

	if err := s.users.Create(ctx, &model); err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating account")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, model.ID.String()), "account registered")
	}

	dto := users.FromModel(model)
	return &dto, nil
}
