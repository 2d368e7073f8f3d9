package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"stayhost/internal/app/middleware"
	appoutbox "stayhost/internal/app/outbox"
	"stayhost/internal/app/uow"
	"stayhost/internal/domain/bookings"
	domainrooms "stayhost/internal/domain/rooms"
	"stayhost/internal/domain/shared/daterange"
)

var (
	sharedDB   *gorm.DB
	sharedOnce sync.Once
	sharedErr  error
)

// testDB starts one postgres container for the package. Set STAYHOST_INTEGRATION=1 to run.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("STAYHOST_INTEGRATION") == "" {
		t.Skip("set STAYHOST_INTEGRATION=1 to run postgres integration tests")
	}
	sharedOnce.Do(func() {
		ctx := context.Background()
		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			AutoRemove:   true,
			Env: map[string]string{
				"POSTGRES_USER":     "stayhost",
				"POSTGRES_PASSWORD": "stayhost",
				"POSTGRES_DB":       "stayhost",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		}
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			sharedErr = err
			return
		}
		host, err := container.Host(ctx)
		if err != nil {
			sharedErr = err
			return
		}
		port, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
		if err != nil {
			sharedErr = err
			return
		}
		dsn := fmt.Sprintf("host=%s port=%s user=stayhost password=stayhost dbname=stayhost sslmode=disable", host, port.Port())
		sharedDB, sharedErr = Open(ctx, dsn, nil)
	})
	require.NoError(t, sharedErr)
	return sharedDB
}

func mustRange(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return dr
}

func newRoom(t *testing.T, id string) *domainrooms.Room {
	t.Helper()
	room, err := domainrooms.New(domainrooms.CreateParams{
		ID:        domainrooms.RoomID(id),
		Host:      "host-1",
		Name:      "Loft",
		Currency:  "EUR",
		BasePrice: 10000,
		Now:       time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return room
}

func TestRoomRepositoryRoundTripAndVersioning(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRoomRepository(db)
	id := "pg-room-" + time.Now().Format("150405.000000")

	room := newRoom(t, id)
	now := time.Now().UTC()
	_, err := room.AddSpecialRate("rate-1", mustRange(t, "2025-06-01", "2025-06-05"), domainrooms.Override(8000), now)
	require.NoError(t, err)
	_, err = room.BlockDates("block-1", mustRange(t, "2025-07-01", "2025-07-03"), "repairs", nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, room))
	require.Equal(t, int64(1), room.Version)

	loaded, err := repo.ByID(ctx, domainrooms.RoomID(id))
	require.NoError(t, err)
	require.Len(t, loaded.SpecialRates, 1)
	require.Len(t, loaded.Blocks, 1)
	require.Equal(t, int64(8000), loaded.PriceOn(mustRange(t, "2025-06-02", "2025-06-02").Start).Amount)

	stale := loaded.Clone()
	require.NoError(t, loaded.RemoveSpecialRate("rate-1", now))
	require.NoError(t, repo.Save(ctx, loaded))
	require.ErrorIs(t, repo.Save(ctx, stale), domainrooms.ErrConcurrentUpdate)

	require.ErrorIs(t, repo.Save(ctx, newRoom(t, id)), domainrooms.ErrConcurrentUpdate)

	require.NoError(t, repo.Delete(ctx, domainrooms.RoomID(id)))
	_, err = repo.ByID(ctx, domainrooms.RoomID(id))
	require.ErrorIs(t, err, domainrooms.ErrNotFound)

	var orphans int64
	require.NoError(t, db.Model(&blockModel{}).Where("room_id = ?", id).Count(&orphans).Error)
	require.Zero(t, orphans)
}

func TestUnitRollbackDiscardsRoomAndOutbox(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	factory := Factory{
		DB:           db,
		RoomsRepo:    NewRoomRepository(db),
		BookingsRepo: NewBookingRepository(db),
		OutboxStore:  NewOutboxStore(db),
	}
	id := "pg-rollback-" + time.Now().Format("150405.000000")

	unit, err := factory.Begin(ctx, uow.TxOptions{LockRoom: domainrooms.RoomID(id)})
	require.NoError(t, err)
	txCtx := uow.Inject(ctx, unit)
	require.NoError(t, unit.Rooms().Save(txCtx, newRoom(t, id)))
	require.NoError(t, unit.Outbox().Add(txCtx, appoutbox.EventRecord{ID: id, Name: "room.created", Payload: []byte(`{}`), OccurredAt: time.Now()}))
	require.NoError(t, unit.Rollback(txCtx))

	_, err = factory.RoomsRepo.ByID(ctx, domainrooms.RoomID(id))
	require.ErrorIs(t, err, domainrooms.ErrRoomNotFound)
	var n int64
	require.NoError(t, db.Model(&outboxModel{}).Where("id = ?", id).Count(&n).Error)
	require.Zero(t, n)
}

func TestBookingUpsertKeepsNewestRevision(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)
	room := domainrooms.RoomID("pg-bookings-" + time.Now().Format("150405.000000"))
	newer := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	b := bookings.Booking{ID: string(room) + "-b1", RoomID: room, Range: mustRange(t, "2025-06-10", "2025-06-12"), Status: bookings.StatusUpcoming, UpdatedAt: newer}
	require.NoError(t, repo.Upsert(ctx, b))

	stale := b
	stale.Status = bookings.StatusCancelled
	stale.UpdatedAt = newer.Add(-time.Hour)
	require.NoError(t, repo.Upsert(ctx, stale))

	active, err := repo.ListActive(ctx, room, mustRange(t, "2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	require.Len(t, active, 1)

	b.Status = bookings.StatusCancelled
	b.UpdatedAt = newer.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, b))
	active, err = repo.ListActive(ctx, room, mustRange(t, "2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestOutboxClaimAndRetry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := NewOutboxStore(db)
	require.NoError(t, db.Where("1 = 1").Delete(&outboxModel{}).Error)

	require.NoError(t, store.Add(ctx, appoutbox.EventRecord{ID: "evt-1", Name: "room.created", Payload: []byte(`{}`), OccurredAt: time.Now(), Headers: map[string]string{"source": "test"}}))

	p, err := store.Claim(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "test", p.Record.Headers["source"])

	again, err := store.Claim(ctx, "w2")
	require.NoError(t, err)
	require.Nil(t, again)

	require.NoError(t, store.MarkFailed(ctx, "evt-1", time.Now().Add(-time.Second), "broker down"))
	p, err = store.Claim(ctx, "w2")
	require.NoError(t, err)
	require.Equal(t, 1, p.Attempts)

	require.NoError(t, store.MarkSent(ctx, "evt-1"))
	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
}

func TestInboxAndIdempotency(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	inbox := NewInboxStore(db, "test-"+time.Now().Format("150405.000000"))

	seen, err := inbox.Seen(ctx, "e1")
	require.NoError(t, err)
	require.False(t, seen)
	seen, err = inbox.Seen(ctx, "e1")
	require.NoError(t, err)
	require.True(t, seen)
	require.NoError(t, inbox.Forget(ctx, "e1"))
	seen, err = inbox.Seen(ctx, "e1")
	require.NoError(t, err)
	require.False(t, seen)

	store := NewIdempotencyStore(db, time.Hour)
	key := "create:h1:" + time.Now().Format("150405.000000")
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, store.Save(ctx, middlewareRecord(key)))
	rec, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"id":"r1"}`, string(rec.Payload))
}

func middlewareRecord(key string) middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{Key: key, Payload: []byte(`{"id":"r1"}`), OccurredAt: time.Now().UTC()}
}
