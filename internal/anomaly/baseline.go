package anomaly

import "time"

// retentionWindow bounds the timestamp history kept per session.
const retentionWindow = time.Hour

// Baseline accumulates the behavioral statistics of one counterparty
// session. It is not safe for concurrent use on its own; the Store
// serializes access per session key.
type Baseline struct {
	messageCount     int64
	lastSeqNum       int
	typeDistribution map[string]int
	startTime        time.Time
	timestamps       []time.Time
}

func newBaseline(now time.Time) *Baseline {
	return &Baseline{
		typeDistribution: make(map[string]int),
		startTime:        now,
	}
}

// observe folds one message into the baseline and prunes timestamps that
// fell out of the retention window, oldest first. Pruning is relative to
// now at call time, not on a schedule.
func (b *Baseline) observe(msgType string, seqNum int, now time.Time) {
	b.messageCount++
	b.lastSeqNum = seqNum
	b.typeDistribution[msgType]++
	b.timestamps = append(b.timestamps, now)

	cutoff := now.Add(-retentionWindow)
	drop := 0
	for drop < len(b.timestamps) && b.timestamps[drop].Before(cutoff) {
		drop++
	}
	b.timestamps = b.timestamps[drop:]
}

// MessageCount returns the total messages observed for the session.
func (b *Baseline) MessageCount() int64 {
	return b.messageCount
}

// LastSeqNum returns the most recently observed sequence number.
func (b *Baseline) LastSeqNum() int {
	return b.lastSeqNum
}

// TypeDistribution returns a copy of the per-message-type counters.
func (b *Baseline) TypeDistribution() map[string]int {
	out := make(map[string]int, len(b.typeDistribution))
	for k, v := range b.typeDistribution {
		out[k] = v
	}
	return out
}

// StartTime returns when the baseline was created. It is never reset and
// serves as the denominator for the average rate.
func (b *Baseline) StartTime() time.Time {
	return b.startTime
}

// AvgMessagesPerMinute is the session's lifetime average message rate.
// Sessions younger than one minute report their raw message count.
func (b *Baseline) AvgMessagesPerMinute(now time.Time) float64 {
	elapsed := int64(now.Sub(b.startTime) / time.Minute)
	if elapsed == 0 {
		return float64(b.messageCount)
	}
	return float64(b.messageCount) / float64(elapsed)
}

// recentCount counts observations timestamped within window of now.
func (b *Baseline) recentCount(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	n := 0
	for i := len(b.timestamps) - 1; i >= 0; i-- {
		if b.timestamps[i].Before(cutoff) {
			break
		}
		n++
	}
	return n
}
