// Package history keeps a bounded, append-only archive of dispatched
// commands. The archive lives in memory only; nothing is persisted.
package history

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/echocommand/echod/internal/control"
	"github.com/echocommand/echod/internal/intent"
)

const defaultCapacity = 1000

// Record is one archived command execution.
type Record struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id"`
	Category  intent.Category `json:"category"`
	Action    string          `json:"action"`
	Succeeded bool            `json:"succeeded"`
	Duration  time.Duration   `json:"duration"`
	Message   string          `json:"message"`
}

// Stats aggregates the archive. An empty archive yields zeroes.
type Stats struct {
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	SuccessRate float64       `json:"success_rate"`
	AvgDuration time.Duration `json:"avg_duration"`
}

// Recorder holds up to capacity records. When the archive grows past
// capacity it is trimmed to the newest capacity/2 entries in one batch, an
// amortization borrowed from keeping eviction off the per-command path.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	records  []Record
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Recorder{capacity: capacity}
}

// Record appends one execution outcome, success or failure alike.
func (r *Recorder) Record(sessionID string, in intent.Intent, res control.Result) {
	rec := Record{
		ID:        ulid.Make().String(),
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Category:  in.Category,
		Action:    in.Action,
		Succeeded: res.Succeeded,
		Duration:  res.Duration,
		Message:   res.Message,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	if len(r.records) > r.capacity {
		keep := r.capacity / 2
		trimmed := make([]Record, keep)
		copy(trimmed, r.records[len(r.records)-keep:])
		r.records = trimmed
	}
}

// Query returns the most recent limit records, newest last, optionally
// filtered by session. limit <= 0 returns everything that matches.
func (r *Recorder) Query(sessionID string, limit int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		matched = append(matched, rec)
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// Stats computes aggregates from a snapshot.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{Total: len(r.records)}
	var total time.Duration
	for _, rec := range r.records {
		if rec.Succeeded {
			stats.Succeeded++
		}
		total += rec.Duration
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Total)
		stats.AvgDuration = total / time.Duration(stats.Total)
	}
	return stats
}
