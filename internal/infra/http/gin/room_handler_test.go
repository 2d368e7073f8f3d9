package ginserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stayhost/internal/app/application"
	"stayhost/internal/app/dto"
	roomsapp "stayhost/internal/app/handlers/rooms"
	"stayhost/internal/app/validation"
	"stayhost/internal/domain/availability"
	"stayhost/internal/infra/config"
	"stayhost/internal/infra/obs"
	"stayhost/internal/infra/storage/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	factory := memory.Factory{
		Rooms:    memory.NewRoomRepository(),
		Bookings: memory.NewBookingRepository(),
		Outbox:   memory.NewOutbox(),
	}
	app := application.New(application.Options{
		Validator:   validation.New(),
		UoW:         factory,
		Locker:      memory.NewLocker(),
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Deps:        roomsapp.Deps{Resolver: availability.NewResolver(366)},
	})
	metrics := obs.NewMetrics()
	return NewRouter(
		config.Config{Env: "test"},
		obs.Middleware{Metrics: metrics},
		obs.HealthHandlers{},
		Handlers{Rooms: RoomHandler{Commands: app.Commands, Queries: app.Queries}},
	)
}

func do(t *testing.T, h http.Handler, method, path, host, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if host != "" {
		req.Header.Set(hostHeader, host)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRoomLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/rooms", "host-1", `{"id":"room-1","name":"Loft","currency":"USD","base_price":10000,"cleaning_fee":1500}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "/api/v1/rooms/room-1", rec.Header().Get("Location"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/api/v1/rooms/room-1/special-rates", "host-1", `{"start_date":"2025-06-01","end_date":"2025-06-05","kind":"OVERRIDE","amount":8000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	room := decode[dto.Room](t, rec)
	require.Len(t, room.SpecialRates, 1)
	rateID := room.SpecialRates[0].ID

	rec = do(t, h, http.MethodPost, "/api/v1/rooms/room-1/blocks", "host-1", `{"start_date":"2025-06-03","end_date":"2025-06-03","reason":"repairs"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/rooms/room-1/nights?start_date=2025-06-01&end_date=2025-06-05", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	nights := decode[dto.Nights](t, rec)
	require.Len(t, nights.Nights, 5)
	require.False(t, nights.Nights[2].Available)
	require.Equal(t, int64(8000), nights.Nights[4].Price)

	rec = do(t, h, http.MethodGet, "/api/v1/rooms/room-1/unavailable-dates?start_date=2025-06-01&end_date=2025-06-05", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[dto.Nights](t, rec).Nights, 1)

	rec = do(t, h, http.MethodPut, "/api/v1/rooms/room-1/special-rates/"+rateID, "host-1", `{"start_date":"2025-06-01","end_date":"2025-06-05","kind":"PERCENT","percent":-10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/rooms/room-1?start_date=2025-06-04&end_date=2025-06-05", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[dto.RoomDetails](t, rec)
	require.NotNil(t, details.Quote)
	require.Equal(t, int64(18000), details.Quote.Subtotal)
	require.Equal(t, int64(19500), details.Quote.Total)

	rec = do(t, h, http.MethodPut, "/api/v1/rooms/room-1/prices", "host-1", `{"base_price":12000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, int64(12000), decode[dto.Room](t, rec).BasePrice)

	rec = do(t, h, http.MethodPost, "/api/v1/rooms/room-1/unblock", "host-1", `{"start_date":"2025-06-01","end_date":"2025-06-30"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Empty(t, decode[dto.Room](t, rec).Blocks)

	rec = do(t, h, http.MethodDelete, "/api/v1/rooms/room-1/special-rates/"+rateID, "host-1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/rooms?host_id=host-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[dto.RoomList](t, rec).Items, 1)

	rec = do(t, h, http.MethodDelete, "/api/v1/rooms/room-1", "host-1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodGet, "/api/v1/rooms/room-1", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/v1/rooms", "host-1", `{"id":"room-1","name":"Loft","currency":"USD","base_price":10000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	cases := []struct {
		name   string
		method string
		path   string
		host   string
		body   string
		status int
	}{
		{"reversed range", http.MethodGet, "/api/v1/rooms/room-1/nights?start_date=2025-06-05&end_date=2025-06-01", "", "", http.StatusUnprocessableEntity},
		{"range too long", http.MethodGet, "/api/v1/rooms/room-1/nights?start_date=2025-01-01&end_date=2026-12-31", "", "", http.StatusUnprocessableEntity},
		{"malformed date", http.MethodGet, "/api/v1/rooms/room-1/nights?start_date=junk&end_date=2025-06-01", "", "", http.StatusBadRequest},
		{"unknown room", http.MethodGet, "/api/v1/rooms/nope/nights?start_date=2025-06-01&end_date=2025-06-02", "", "", http.StatusNotFound},
		{"unknown rate", http.MethodDelete, "/api/v1/rooms/room-1/special-rates/ghost", "host-1", "", http.StatusNotFound},
		{"nothing to unblock", http.MethodPost, "/api/v1/rooms/room-1/unblock", "host-1", `{"start_date":"2025-06-01","end_date":"2025-06-02"}`, http.StatusNotFound},
		{"other host", http.MethodPut, "/api/v1/rooms/room-1/prices", "host-2", `{"base_price":1}`, http.StatusForbidden},
		{"missing host", http.MethodPut, "/api/v1/rooms/room-1/prices", "", `{"base_price":1}`, http.StatusBadRequest},
		{"negative price", http.MethodPut, "/api/v1/rooms/room-1/prices", "host-1", `{"base_price":-1}`, http.StatusBadRequest},
		{"duplicate room", http.MethodPost, "/api/v1/rooms", "host-1", `{"id":"room-1","name":"Loft","currency":"USD"}`, http.StatusConflict},
		{"bad json", http.MethodPost, "/api/v1/rooms/room-1/blocks", "host-1", `{`, http.StatusBadRequest},
		{"export without storage", http.MethodPost, "/api/v1/rooms/room-1/calendar-export", "host-1", `{"start_date":"2025-06-01","end_date":"2025-06-02"}`, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.host, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			require.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestIdempotencyKeyHeaderReplaysCreate(t *testing.T) {
	h := newTestRouter(t)
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(`{"name":"Cabin","currency":"EUR","base_price":5000}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(hostHeader, "host-1")
		req.Header.Set(idempotencyHeader, "create-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	first, second := send(), send()
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, decode[dto.Room](t, first).ID, decode[dto.Room](t, second).ID)
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/livez", "", "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/readyz", "", "").Code)
}
