package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "stayhost/internal/app/outbox"
	infraoutbox "stayhost/internal/infra/outbox"
)

// Outbox keeps committed event records in memory until the relay publishes them.
type Outbox struct {
	mu      sync.Mutex
	order   []string
	records map[string]*outboxEntry
}

type outboxEntry struct {
	record    appoutbox.EventRecord
	attempts  int
	claimed   bool
	sent      bool
	nextTry   time.Time
	lastError string
}

func NewOutbox() *Outbox {
	return &Outbox{records: make(map[string]*outboxEntry)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, dup := o.records[record.ID]; dup {
		return nil
	}
	o.order = append(o.order, record.ID)
	o.records[record.ID] = &outboxEntry{record: record}
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, id := range o.order {
		e := o.records[id]
		if e.sent || e.claimed || e.nextTry.After(now) {
			continue
		}
		e.claimed = true
		return &infraoutbox.Pending{Record: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.records[id]; ok {
		e.sent = true
		e.claimed = false
	}
	o.compactLocked()
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.records[id]; ok {
		e.claimed = false
		e.attempts++
		e.nextTry = next
		e.lastError = errMsg
	}
	return nil
}

// Pending reports records not yet published.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []appoutbox.EventRecord
	for _, id := range o.order {
		if e := o.records[id]; !e.sent {
			out = append(out, e.record)
		}
	}
	return out
}

func (o *Outbox) compactLocked() {
	kept := o.order[:0]
	for _, id := range o.order {
		if o.records[id].sent {
			delete(o.records, id)
			continue
		}
		kept = append(kept, id)
	}
	o.order = kept
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Source = (*Outbox)(nil)
