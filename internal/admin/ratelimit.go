package admin

import "time"

// SlidingWindow caps the number of requests whose timestamps fall within
// the trailing Window.
type SlidingWindow struct {
	Window time.Duration
	Limit  int
}

// Record prunes entries that are not strictly newer than now-Window,
// appends now, and reports whether the count is still within Limit.
//
// The returned log never holds more than Limit+1 entries: whether the count
// exceeds Limit only depends on the newest Limit+1 timestamps.
func (sw SlidingWindow) Record(log []time.Time, now time.Time) ([]time.Time, bool) {
	cutoff := now.Add(-sw.Window)

	kept := make([]time.Time, 0, len(log)+1)
	for _, t := range log {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)

	allowed := len(kept) <= sw.Limit
	if keep := sw.Limit + 1; len(kept) > keep {
		kept = kept[len(kept)-keep:]
	}

	return kept, allowed
}
