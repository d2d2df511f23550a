package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/internal/auth"
	"github.com/bloomhaus/petalboard-backend/internal/customers"
	"github.com/bloomhaus/petalboard-backend/internal/dashboard"
	"github.com/bloomhaus/petalboard-backend/internal/orders"
	"github.com/bloomhaus/petalboard-backend/internal/users"
	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
	"github.com/bloomhaus/petalboard-backend/pkg/security"
)

type memOrderStore struct {
	orders []models.Order
}

func (s *memOrderStore) ListAll(context.Context) ([]models.Order, error) {
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *memOrderStore) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders = append(s.orders, *order)
	return nil
}

func (s *memOrderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i], nil
		}
	}
	return nil, orders.ErrNotFound
}

func (s *memOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) error {
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return nil
		}
	}
	return orders.ErrNotFound
}

func (s *memOrderStore) Delete(_ context.Context, id uuid.UUID) error {
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return orders.ErrNotFound
}

func (s *memOrderStore) CountPending(context.Context) (int64, error) {
	var count int64
	for _, order := range s.orders {
		if order.Status == enums.OrderStatusPending {
			count++
		}
	}
	return count, nil
}

type memUserStore struct {
	byEmail map[string]*models.User
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return user, nil
}

func (s *memUserStore) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error {
	return nil
}

type memSessions struct {
	active map[string]bool
}

func (s *memSessions) Generate(_ context.Context, accessID string) (string, error) {
	s.active[accessID] = true
	return "refresh-" + accessID, nil
}

func (s *memSessions) Rotate(_ context.Context, oldAccessID, _ string) (string, string, error) {
	delete(s.active, oldAccessID)
	newID := uuid.NewString()
	s.active[newID] = true
	return newID, "refresh-" + newID, nil
}

func (s *memSessions) Revoke(_ context.Context, accessID string) error {
	delete(s.active, accessID)
	return nil
}

func (s *memSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	return s.active[accessID], nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, Port: "8080", LogLevel: "error"},
		JWT: config.JWTConfig{
			Secret:                 "test-secret",
			Issuer:                 "petalboard-test",
			ExpirationMinutes:      15,
			RefreshTokenTTLMinutes: 60,
		},
		Orders:    config.OrdersConfig{},
		Dashboard: config.DashboardConfig{Timezone: "UTC"},
	}
}

func newTestRouter(t *testing.T, orderStore *memOrderStore) http.Handler {
	t.Helper()

	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})

	hash, err := security.HashPassword("sup3r-secret", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	userStore := &memUserStore{byEmail: map[string]*models.User{
		"admin@bloomhaus.test": {
			ID:           uuid.New(),
			Email:        "admin@bloomhaus.test",
			PasswordHash: hash,
			FirstName:    "Admin",
			LastName:     "User",
			IsActive:     true,
			Grants:       []models.RoleGrant{{Role: enums.RoleAdmin}},
		},
	}}
	sessions := &memSessions{active: map[string]bool{}}

	authSvc := auth.NewService(auth.ServiceParams{
		Users:    userStore,
		Sessions: sessions,
		JWT:      cfg.JWT,
		Password: config.PasswordConfig{},
		App:      cfg.App,
		Logger:   logg,
	})
	orderSvc := orders.NewService(orders.ServiceParams{
		Store:  orderStore,
		Config: cfg.Orders,
		Logger: logg,
	})
	customerSvc := customers.NewService(customers.ServiceParams{Orders: orderSvc, Logger: logg})
	dashboardSvc, err := dashboard.NewService(dashboard.ServiceParams{
		Orders: orderSvc,
		Config: cfg.Dashboard,
		Logger: logg,
	})
	if err != nil {
		t.Fatalf("dashboard service: %v", err)
	}

	return New(RouterParams{
		Config:    cfg,
		Logger:    logg,
		Auth:      authSvc,
		Orders:    orderSvc,
		Customers: customerSvc,
		Dashboard: dashboardSvc,
		Sessions:  sessions,
	})
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()
	body := `{"email":"admin@bloomhaus.test","password":"sup3r-secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	return envelope.Data.AccessToken
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &memOrderStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}
}

func TestOrdersAPIRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &memOrderStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginThenListOrders(t *testing.T) {
	store := &memOrderStore{orders: []models.Order{{
		ID:           uuid.New(),
		CustomerName: "Ana Flores",
		Email:        "ana@x.com",
		Phone:        "555-0101",
		PickupDate:   time.Now().AddDate(0, 0, 1),
		TimeSlot:     enums.TimeSlotMorning,
		Status:       enums.OrderStatusPending,
		CreatedAt:    time.Now(),
	}}}
	router := newTestRouter(t, store)
	token := loginToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data orders.Page `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if envelope.Data.TotalCount != 1 {
		t.Fatalf("expected 1 order, got %d", envelope.Data.TotalCount)
	}
}

func TestUnauthenticatedAdminPageRedirectsToLogin(t *testing.T) {
	router := newTestRouter(t, &memOrderStore{})

	for _, path := range []string{"/admin/orders", "/admin/dashboard", "/admin/emails"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", path, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/login" {
			t.Fatalf("%s: expected redirect to /admin/login, got %s", path, loc)
		}
	}
}

func TestLoginPageIsPublic(t *testing.T) {
	router := newTestRouter(t, &memOrderStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminPageAccessibleWithSessionCookie(t *testing.T) {
	router := newTestRouter(t, &memOrderStore{})
	token := loginToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "pb_session", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDeleteOrderRemovesFromReadsAndBadge(t *testing.T) {
	order := models.Order{
		ID:           uuid.New(),
		CustomerName: "Ana Flores",
		Email:        "ana@x.com",
		Phone:        "555-0101",
		PickupDate:   time.Now().AddDate(0, 0, 1),
		TimeSlot:     enums.TimeSlotMorning,
		Status:       enums.OrderStatusPending,
		CreatedAt:    time.Now(),
	}
	store := &memOrderStore{orders: []models.Order{order}}
	router := newTestRouter(t, store)
	token := loginToken(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/orders/"+order.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/pending-count", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending count: expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Pending int64 `json:"pending"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding pending count: %v", err)
	}
	if envelope.Data.Pending != 0 {
		t.Fatalf("expected 0 pending after delete, got %d", envelope.Data.Pending)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	router := newTestRouter(t, &memOrderStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
