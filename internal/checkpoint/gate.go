package checkpoint

import "time"

// DefaultInterval is the minimum spacing between two snapshots of a pool.
const DefaultInterval = time.Hour

// Gate rate-limits snapshot writes per pool.
type Gate struct {
	interval int64
}

func NewGate(interval time.Duration) Gate {
	if interval < 0 {
		interval = 0
	}
	return Gate{interval: int64(interval / time.Second)}
}

// Allow reports whether a snapshot may be written at now given the last one at last.
func (g Gate) Allow(last, now int64) bool {
	return last+g.interval <= now
}

// NextAt returns the earliest timestamp a snapshot is allowed after last.
func (g Gate) NextAt(last int64) int64 {
	return last + g.interval
}
