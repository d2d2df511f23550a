package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/internal/users"
	pkgAuth "github.com/bloomhaus/petalboard-backend/pkg/auth"
	"github.com/bloomhaus/petalboard-backend/pkg/auth/session"
	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
	"github.com/bloomhaus/petalboard-backend/pkg/security"
)

// UserStore is the account surface the auth service consumes.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// SessionStore manages refresh sessions keyed by access token id.
type SessionStore interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams wires the auth service dependencies.
type ServiceParams struct {
	Users    UserStore
	Sessions SessionStore
	JWT      config.JWTConfig
	Password config.PasswordConfig
	App      config.AppConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service implements login, registration, token refresh, and logout.
type Service struct {
	users    UserStore
	sessions SessionStore
	jwt      config.JWTConfig
	password config.PasswordConfig
	app      config.AppConfig
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:    params.Users,
		sessions: params.Sessions,
		jwt:      params.JWT,
		password: params.Password,
		app:      params.App,
		logg:     params.Logger,
		now:      now,
	}
}

// Login verifies the credentials and mints a token pair. Unknown email, bad
// password, and inactive accounts all collapse into the same error so callers
// cannot probe which one failed.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	invalid := pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, invalid
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up account")
	}

	if !user.IsActive {
		return nil, invalid
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, invalid
	}

	dto := users.FromModel(*user)
	role, ok := highestRole(dto)
	if !ok {
		return nil, invalid
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwt, s.now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to stamp last login")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "login succeeded")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.ExpirationMinutes * 60,
		User:         dto,
	}, nil
}

// Refresh rotates the refresh session and mints a new access token for the
// same account and role.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwt, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwt, s.now(), pkgAuth.AccessTokenPayload{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    s.jwt.ExpirationMinutes * 60,
	}, nil
}

// Logout revokes the refresh session tied to the presented access token.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// highestRole picks the strongest grant for the token. Admin wins over staff.
func highestRole(user users.UserDTO) (enums.Role, bool) {
	if user.HasRole(enums.RoleAdmin) {
		return enums.RoleAdmin, true
	}
	if user.HasRole(enums.RoleStaff) {
		return enums.RoleStaff, true
	}
	return "", false
}
