package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echocommand/echod/internal/control"
	"github.com/echocommand/echod/internal/intent"
)

func record(r *Recorder, sessionID string, succeeded bool, d time.Duration) {
	r.Record(sessionID,
		intent.Intent{Category: intent.CategoryQuery, Action: "time", Confidence: 1},
		control.Result{Succeeded: succeeded, Message: "msg", Duration: d})
}

func TestBatchEvictionTrimsToHalfCapacity(t *testing.T) {
	r := NewRecorder(10)

	for i := 0; i < 11; i++ {
		r.Record(fmt.Sprintf("s%d", i),
			intent.Intent{Category: intent.CategoryQuery, Action: "time"},
			control.Result{Succeeded: true, Message: "msg"})
	}

	records := r.Query("", 0)
	require.Len(t, records, 5, "archive must be trimmed to capacity/2 in one batch")
	// Only the newest entries survive.
	assert.Equal(t, "s6", records[0].SessionID)
	assert.Equal(t, "s10", records[4].SessionID)
}

func TestQueryFiltersBySessionAndLimit(t *testing.T) {
	r := NewRecorder(100)
	record(r, "a", true, time.Millisecond)
	record(r, "b", false, time.Millisecond)
	record(r, "a", true, time.Millisecond)
	record(r, "a", false, time.Millisecond)

	assert.Len(t, r.Query("", 0), 4)
	assert.Len(t, r.Query("a", 0), 3)

	limited := r.Query("a", 2)
	require.Len(t, limited, 2)
	assert.False(t, limited[1].Succeeded, "limit must keep the newest entries")
}

func TestQueryReturnsCopies(t *testing.T) {
	r := NewRecorder(100)
	record(r, "a", true, time.Millisecond)

	got := r.Query("", 0)
	require.Len(t, got, 1)
	got[0].SessionID = "mutated"

	again := r.Query("", 0)
	assert.Equal(t, "a", again[0].SessionID)
}

func TestStats(t *testing.T) {
	r := NewRecorder(100)
	assert.Equal(t, Stats{}, r.Stats(), "empty archive must yield zeroes")

	record(r, "a", true, 10*time.Millisecond)
	record(r, "a", true, 20*time.Millisecond)
	record(r, "b", false, 30*time.Millisecond)

	stats := r.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Succeeded)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 1e-9)
	assert.Equal(t, 20*time.Millisecond, stats.AvgDuration)
}

func TestRecordIDsAreUnique(t *testing.T) {
	r := NewRecorder(100)
	for i := 0; i < 20; i++ {
		record(r, "a", true, 0)
	}

	seen := make(map[string]struct{})
	for _, rec := range r.Query("", 0) {
		_, dup := seen[rec.ID]
		require.False(t, dup)
		seen[rec.ID] = struct{}{}
	}
}
