package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appoutbox "stayhost/internal/app/outbox"
	infraoutbox "stayhost/internal/infra/outbox"
)

const (
	outboxNew     = "NEW"
	outboxClaimed = "CLAIMED"
	outboxSent    = "SENT"
	outboxFailed  = "FAILED"
)

// claimTimeout releases records whose worker died mid-publish.
const claimTimeout = time.Minute

// OutboxStore keeps event records in the outbox table. Add joins the
// caller's transaction; Claim uses SKIP LOCKED so relays never contend.
type OutboxStore struct {
	db *gorm.DB
}

func NewOutboxStore(db *gorm.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := time.Now().UTC()
	row := outboxModel{
		ID:            record.ID,
		Name:          record.Name,
		Payload:       record.Payload,
		OccurredAt:    record.OccurredAt.UTC(),
		Aggregate:     record.Aggregate,
		Headers:       record.Headers,
		State:         outboxNew,
		NextAttemptAt: now,
		CreatedAt:     now,
	}
	return conn(ctx, s.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.Pending, error) {
	now := time.Now().UTC()
	var (
		row   outboxModel
		found bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("(state IN ? AND next_attempt_at <= ?) OR (state = ? AND claimed_at <= ?)",
				[]string{outboxNew, outboxFailed}, now, outboxClaimed, now.Add(-claimTimeout)).
			Order("created_at").
			Limit(1).
			Find(&row)
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		found = true
		return tx.Model(&outboxModel{}).Where("id = ?", row.ID).Updates(map[string]any{
			"state":      outboxClaimed,
			"claimed_by": workerID,
			"claimed_at": now,
		}).Error
	})
	if err != nil || !found {
		return nil, err
	}
	return &infraoutbox.Pending{
		Record: appoutbox.EventRecord{
			ID:         row.ID,
			Name:       row.Name,
			Payload:    row.Payload,
			OccurredAt: row.OccurredAt.UTC(),
			Aggregate:  row.Aggregate,
			Headers:    row.Headers,
		},
		Attempts: row.Attempts,
	}, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&outboxModel{}).Where("id = ?", id).Updates(map[string]any{
		"state":   outboxSent,
		"sent_at": time.Now().UTC(),
	}).Error
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	return s.db.WithContext(ctx).Model(&outboxModel{}).Where("id = ?", id).Updates(map[string]any{
		"state":           outboxFailed,
		"next_attempt_at": next.UTC(),
		"last_error":      errMsg,
		"attempts":        gorm.Expr("attempts + 1"),
	}).Error
}

// Pending counts records not yet published.
func (s *OutboxStore) Pending(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&outboxModel{}).Where("state <> ?", outboxSent).Count(&n).Error
	return n, err
}

var _ appoutbox.Outbox = (*OutboxStore)(nil)
var _ infraoutbox.Source = (*OutboxStore)(nil)
