package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/live"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseClaims   *service.Claims
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastSignUpAdmin    bool
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string, admin bool) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	m.lastSignUpAdmin = admin
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (*service.Claims, error) {
	m.lastParseToken = token
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	if m.parseClaims == nil {
		return &service.Claims{UserID: 1, Username: "operador"}, nil
	}
	return m.parseClaims, nil
}
func (m *mockAuth) EnsureSuperUser(username, password string) (bool, error) {
	return false, nil
}

type mockHistory struct {
	readings []models.Reading
	stats    models.EquipmentStats
	names    []string
	deleted  int64
	err      error

	lastEquipment string
	lastLimit     int
	lastAscending bool
	lastFilter    models.ReadingFilter
	lastDays      int
}

func (m *mockHistory) Save(ctx context.Context, equipment string, temperature float64, ts time.Time) (models.Reading, error) {
	return models.Reading{Equipment: equipment, Temperature: temperature, Timestamp: ts}, m.err
}
func (m *mockHistory) FindByEquipment(ctx context.Context, equipment string, limit int) ([]models.Reading, error) {
	m.lastEquipment, m.lastLimit = equipment, limit
	return m.readings, m.err
}
func (m *mockHistory) FindByFilters(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error) {
	m.lastFilter = f
	return m.readings, m.err
}
func (m *mockHistory) List(ctx context.Context, equipment string, limit int, ascending bool) ([]models.Reading, error) {
	m.lastEquipment, m.lastLimit, m.lastAscending = equipment, limit, ascending
	return m.readings, m.err
}
func (m *mockHistory) EquipmentList(ctx context.Context) ([]string, error) {
	return m.names, m.err
}
func (m *mockHistory) EquipmentStats(ctx context.Context, equipment string) (models.EquipmentStats, error) {
	m.lastEquipment = equipment
	return m.stats, m.err
}
func (m *mockHistory) DeleteOldRecords(ctx context.Context, days int) (int64, error) {
	m.lastDays = days
	return m.deleted, m.err
}

type mockPublisher struct {
	commands chan string
}

func (p *mockPublisher) PublishControl(cmd string) error {
	p.commands <- cmd
	return nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithGateway(s, nil)
}

func newTestRouterWithGateway(s *service.Service, gw *live.Gateway) *gin.Engine {
	h := NewHandler(s, gw, Options{TokenTTL: time.Hour}, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
