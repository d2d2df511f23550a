package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	roleGrants := `
CREATE TABLE IF NOT EXISTS role_grants (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(roleGrants).Error)
	require.NoError(t, db.Exec(`DELETE FROM role_grants`).Error)
	require.NoError(t, db.Exec(`DELETE FROM users`).Error)
	return db
}

func repoUser(email string, roles ...enums.Role) *models.User {
	grants := make([]models.RoleGrant, 0, len(roles))
	for _, role := range roles {
		grants = append(grants, models.RoleGrant{ID: uuid.New(), Role: role})
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		FirstName:    "Fleur",
		LastName:     "Martin",
		IsActive:     true,
		Grants:       grants,
	}
}

func TestRepoCreateNormalizesEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepo(db)

	user := repoUser("  Admin@Bloomhaus.Test  ", enums.RoleAdmin)
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, "admin@bloomhaus.test", user.Email)

	got, err := repo.FindByEmail(context.Background(), "ADMIN@bloomhaus.test")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRepoFindByEmailPreloadsGrants(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepo(db)

	user := repoUser("staff@bloomhaus.test", enums.RoleStaff, enums.RoleAdmin)
	require.NoError(t, repo.Create(context.Background(), user))

	got, err := repo.FindByEmail(context.Background(), "staff@bloomhaus.test")
	require.NoError(t, err)
	require.Len(t, got.Grants, 2)

	roles := []enums.Role{got.Grants[0].Role, got.Grants[1].Role}
	assert.Contains(t, roles, enums.RoleStaff)
	assert.Contains(t, roles, enums.RoleAdmin)
}

func TestRepoFindByEmailUnknownIsNotFound(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepo(db)

	_, err := repo.FindByEmail(context.Background(), "nobody@bloomhaus.test")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepoFindByIDPreloadsGrants(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepo(db)

	user := repoUser("id@bloomhaus.test", enums.RoleStaff)
	require.NoError(t, repo.Create(context.Background(), user))

	got, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, got.Grants, 1)
	assert.Equal(t, enums.RoleStaff, got.Grants[0].Role)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepoUpdateLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepo(db)

	user := repoUser("login@bloomhaus.test", enums.RoleAdmin)
	require.NoError(t, repo.Create(context.Background(), user))

	at := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(context.Background(), user.ID, at))

	got, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(at))
}
