// Package dedup merges and deduplicates inbound events gathered from
// multiple polled sources before they reach the session state machines.
package dedup

import (
	"sort"

	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/models"
)

// Deduplicator keeps a count-bounded window of recently seen event ids.
// Ids evicted from the window may theoretically reappear as new events;
// that is an accepted limitation of the bounded window, not a correctness
// goal beyond it.
type Deduplicator struct {
	window int
	seen   map[string]bool
	order  []string
	logger *zap.Logger
}

// NewDeduplicator creates a deduplicator with a recent-id window of the
// given size.
func NewDeduplicator(window int, logger *zap.Logger) *Deduplicator {
	if window <= 0 {
		window = 1000
	}
	return &Deduplicator{
		window: window,
		seen:   make(map[string]bool),
		logger: logger,
	}
}

// Process filters one polling cycle's batch: events from non-direct sources
// are dropped, duplicate ids (within the batch or the recent window) are
// dropped and logged, and the survivors are returned in ascending
// (timestamp, event id) order for deterministic dispatch.
func (d *Deduplicator) Process(events []models.InboundEvent, isDirect func(channelID string) bool) []models.InboundEvent {
	out := make([]models.InboundEvent, 0, len(events))
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		if isDirect != nil && !isDirect(ev.ChannelID) {
			continue
		}
		if d.seen[ev.ID] {
			d.logger.Debug("duplicate event dropped", zap.String("event_id", ev.ID))
			continue
		}
		d.remember(ev.ID)
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreateAt != out[j].CreateAt {
			return out[i].CreateAt < out[j].CreateAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// remember records an id, evicting the oldest half of the window when full.
func (d *Deduplicator) remember(id string) {
	d.seen[id] = true
	d.order = append(d.order, id)
	if len(d.order) <= d.window {
		return
	}
	drop := d.order[:len(d.order)/2]
	for _, old := range drop {
		delete(d.seen, old)
	}
	d.order = append([]string(nil), d.order[len(d.order)/2:]...)
	d.logger.Debug("dedup window trimmed", zap.Int("remaining", len(d.order)))
}
