package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/propexpo/stall-booking-api/internal/config"
	"github.com/propexpo/stall-booking-api/internal/domain"
	"github.com/propexpo/stall-booking-api/internal/pkg/jwthelper"
	"github.com/propexpo/stall-booking-api/internal/repository/dao"
)

const testSigningKey = "api-test-signing-key"

type testServer struct {
	t      *testing.T
	server *Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dao.InitTables(db))

	conf := &config.AppConfig{
		API: &config.APIConfig{
			BaseURL:       "localhost:8080",
			JWTSigningKey: testSigningKey,
		},
		Gin:      &config.GinConfig{Mode: gin.TestMode},
		Postgres: &config.PostgresConfig{},
		Redis:    &config.RedisConfig{},
		RabbitMQ: &config.RabbitMQConfig{},
		CheckIn: &config.CheckInConfig{
			SigningKey:      "checkin-test-key",
			Issuer:          "stall-booking-api",
			FrontendBaseURL: "https://expo.example.com",
		},
	}

	s := NewServer(conf, db, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Live.Run(ctx)

	return &testServer{t: t, server: s}
}

func (ts *testServer) token(userID uint, role string) string {
	tok, err := jwthelper.GenerateToken([]byte(testSigningKey), userID, role, "")
	require.NoError(ts.t, err)

	return tok
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.server.Router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

type errBody struct {
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
}

func TestServer_Healthcheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_BookingFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(1, domain.RoleAdmin)
	alice := ts.token(7, domain.RoleBuilder)
	bob := ts.token(8, domain.RoleBuilder)

	eventBody := map[string]any{
		"name":        "Autumn Property Expo",
		"location":    "Hall B",
		"stall_count": 3,
		"start_date":  "2026-11-21",
		"end_date":    "2026-11-23",
	}

	rec := ts.do(http.MethodPost, "/api/v1/events", alice, eventBody)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/events", admin, eventBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[domain.Event](t, rec)
	assert.Equal(t, 3, event.StallCount)
	base := fmt.Sprintf("/api/v1/events/%d", event.ID)

	rec = ts.do(http.MethodPost, base+"/stall-types", admin, map[string]any{
		"name": "Corner", "unit_price": 1500, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	corner := decode[domain.StallTypeAllocation](t, rec)
	assert.Equal(t, 1, corner.RemainingCapacity)

	rec = ts.do(http.MethodPost, base+"/stall-types", admin, map[string]any{
		"name": "Island", "unit_price": 900, "quantity": 2,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	conflict := decode[errBody](t, rec)
	assert.Equal(t, float64(1), conflict.Meta["by"])
	assert.Equal(t, float64(1), conflict.Meta["remaining"])

	rec = ts.do(http.MethodGet, base+"/capacity?quantity=1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"event_id":%d,"remaining":1,"quantity":1,"can_allocate":true}`, event.ID), rec.Body.String())

	rec = ts.do(http.MethodGet, base+"/stalls/available", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stalls := decode[[]domain.Stall](t, rec)
	require.Len(t, stalls, 2)
	assert.Equal(t, 1, stalls[0].StallNumber)
	assert.Equal(t, 2, stalls[1].StallNumber)

	stallPath := fmt.Sprintf("/api/v1/stalls/%d/book", stalls[0].ID)
	rec = ts.do(http.MethodPost, stallPath, admin, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, stallPath, alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[domain.Booking](t, rec)
	assert.Equal(t, uint(7), booking.BuilderID)
	assert.Equal(t, domain.BookingActive, booking.Status)

	rec = ts.do(http.MethodPost, stallPath, bob, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, base, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inventory := decode[domain.EventInventory](t, rec)
	assert.Equal(t, 2, inventory.Allocated)
	assert.Equal(t, 1, inventory.Remaining)
	assert.Equal(t, 1, inventory.Booked)
	assert.Equal(t, 1, inventory.Available)

	checkInPath := fmt.Sprintf("%s/stalls/%d/checkin", base, stalls[0].ID)
	rec = ts.do(http.MethodGet, checkInPath, bob, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodGet, checkInPath, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ref := decode[domain.CheckInReference](t, rec)
	assert.Contains(t, ref.URL, fmt.Sprintf("https://expo.example.com/buyer-dashboard/stall-checkin/%d/%d?ref=", event.ID, stalls[0].ID))

	rec = ts.do(http.MethodGet, checkInPath, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ref, decode[domain.CheckInReference](t, rec))

	rec = ts.do(http.MethodPost, "/api/v1/checkin/resolve", bob, map[string]any{"reference": ref.URL})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	target := decode[domain.CheckInTarget](t, rec)
	assert.Equal(t, domain.CheckInStall, target.Scope)
	assert.Equal(t, event.ID, target.Event.ID)
	require.NotNil(t, target.Booking)
	assert.Equal(t, uint(7), target.Booking.BuilderID)

	rec = ts.do(http.MethodPost, "/api/v1/checkin/resolve", bob, map[string]any{"reference": "not-a-reference"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stallTypePath := fmt.Sprintf("/api/v1/stall-types/%d", corner.StallType.ID)
	rec = ts.do(http.MethodDelete, stallTypePath, admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, float64(1), decode[errBody](t, rec).Meta["booked"])

	rec = ts.do(http.MethodDelete, stallTypePath+"?force=true", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var deleted struct {
		CancelledBookings []domain.Booking `json:"cancelled_bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	require.Len(t, deleted.CancelledBookings, 1)
	assert.Equal(t, booking.ID, deleted.CancelledBookings[0].ID)

	rec = ts.do(http.MethodGet, "/api/v1/bookings/mine", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]domain.Booking](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.BookingCancelled, mine[0].Status)

	rec = ts.do(http.MethodGet, base+"/capacity", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[map[string]int](t, rec)["remaining"])
}

func TestServer_BookNextAndCancel(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(1, domain.RoleAdmin)
	alice := ts.token(7, domain.RoleBuilder)
	bob := ts.token(8, domain.RoleBuilder)

	rec := ts.do(http.MethodPost, "/api/v1/events", admin, map[string]any{
		"name": "Spring Expo", "location": "Hall C", "stall_count": 1,
		"start_date": "2026-04-10", "end_date": "2026-04-11",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[domain.Event](t, rec)
	base := fmt.Sprintf("/api/v1/events/%d", event.ID)

	rec = ts.do(http.MethodPost, base+"/stall-types", admin, map[string]any{"name": "Standard", "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, base+"/book-next", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[domain.Booking](t, rec)

	rec = ts.do(http.MethodPost, base+"/book-next", bob, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	cancelPath := fmt.Sprintf("/api/v1/bookings/%d", booking.ID)
	rec = ts.do(http.MethodDelete, cancelPath, bob, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodDelete, cancelPath, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.BookingCancelled, decode[domain.Booking](t, rec).Status)

	rec = ts.do(http.MethodPost, base+"/book-next", bob, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, booking.StallID, decode[domain.Booking](t, rec).StallID)

	rec = ts.do(http.MethodGet, base+"/bookings", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Booking](t, rec), 2)

	rec = ts.do(http.MethodPut, base, admin, map[string]any{"stall_count": 0})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, float64(1), decode[errBody](t, rec).Meta["by"])

	rec = ts.do(http.MethodDelete, base, admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_NotFoundAndBadInput(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(1, domain.RoleAdmin)

	rec := ts.do(http.MethodGet, "/api/v1/events/404", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "event not found", decode[errBody](t, rec).Message)

	rec = ts.do(http.MethodGet, "/api/v1/events/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/events/404/stall-types", admin, map[string]any{"name": "Corner", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/events", admin, map[string]any{
		"name": "Backwards", "location": "Hall D", "stall_count": 1,
		"start_date": "2026-04-11", "end_date": "2026-04-10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
