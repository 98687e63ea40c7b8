package jobs

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"montessori/server/internal/config"
	"montessori/server/internal/kv"
	"montessori/server/internal/model"
)

// StartClockOutJob periodically force-closes time entries whose shift has run
// past the configured maximum. Teachers who forget to clock out would
// otherwise accumulate open entries forever.
func StartClockOutJob(ctx context.Context, cfg config.Config, store kv.Store) {
	if !cfg.ClockOutJobEnabled {
		return
	}
	interval := cfg.ClockOutJobInterval
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := cfg.ClockOutJobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxShift := cfg.MaxShiftDuration
	if maxShift <= 0 {
		maxShift = 14 * time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				closed, err := CloseStaleEntries(tickCtx, store, time.Now().UTC(), maxShift)
				cancel()
				if err != nil {
					log.Printf("clock-out job error: %v", err)
					continue
				}
				if closed > 0 {
					log.Printf("clock-out job closed %d stale entries", closed)
				}
			}
		}
	}()
}

// CloseStaleEntries scans the active-entry pointers and closes every entry
// whose clock-in is more than maxShift before now. Closed entries are stamped
// with the cutoff time (clock-in plus maxShift) rather than now, so the
// recorded hours never exceed the maximum shift. Returns the number of
// entries closed.
func CloseStaleEntries(ctx context.Context, store kv.Store, now time.Time, maxShift time.Duration) (int, error) {
	values, err := store.GetByPrefix(ctx, kv.PrefixActiveTime)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, raw := range values {
		var entryID string
		if err := json.Unmarshal(raw, &entryID); err != nil {
			log.Printf("clock-out job: skipping malformed active pointer: %v", err)
			continue
		}
		var entry model.TimeEntry
		data, err := store.Get(ctx, kv.TimeEntryKey(entryID))
		if err != nil {
			log.Printf("clock-out job: entry %s unreadable: %v", entryID, err)
			continue
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			log.Printf("clock-out job: entry %s malformed: %v", entryID, err)
			continue
		}
		clockIn, err := time.Parse(time.RFC3339, entry.ClockIn)
		if err != nil {
			log.Printf("clock-out job: entry %s has bad clock_in %q", entryID, entry.ClockIn)
			continue
		}
		if now.Sub(clockIn) <= maxShift {
			continue
		}

		cutoff := clockIn.Add(maxShift)
		entry.ClockOut = cutoff.Format(time.RFC3339)
		entry.HoursWorked = math.Round(cutoff.Sub(clockIn).Hours()*100) / 100
		entry.AutoClosed = true

		updated, err := json.Marshal(entry)
		if err != nil {
			return closed, err
		}
		if err := store.Set(ctx, kv.TimeEntryKey(entryID), updated); err != nil {
			return closed, err
		}
		if err := store.Del(ctx, kv.ActiveTimeKey(entry.UserID)); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}
