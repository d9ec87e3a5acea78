package anomaly

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/fix"
	"github.com/fixsecurity/fixsentry/pkg/metrics"
)

// Config tunes the detector thresholds.
type Config struct {
	// VolumeThreshold is the multiple of the session's average per-minute
	// rate above which the recent message count is anomalous.
	VolumeThreshold float64
	// VolumeWindow is the lookback for the recent message count.
	VolumeWindow time.Duration
	// MinTypeShare is the historical share below which a message type is
	// unusual for the session.
	MinTypeShare float64
	// MaxSeqGap is the largest tolerated jump past the last observed
	// sequence number.
	MaxSeqGap int
}

// DefaultConfig returns the standard detection thresholds.
func DefaultConfig() Config {
	return Config{
		VolumeThreshold: 2.0,
		VolumeWindow:    time.Minute,
		MinTypeShare:    0.01,
		MaxSeqGap:       10,
	}
}

// Detector checks each message against its session baseline, then folds
// the message into that baseline. Detection is advisory: it never rejects
// a message and never fails. A session's first message has no baseline
// and can never be anomalous.
type Detector struct {
	store  *Store
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewDetector creates a detector over the given baseline store. The store
// is injected so the host process can wrap it with its own lifecycle or
// eviction policy.
func NewDetector(store *Store, cfg Config, logger *zap.Logger) *Detector {
	return &Detector{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// Detect runs the anomaly checks against the baseline state prior to this
// message, then unconditionally updates the baseline. The store serializes
// the read-then-update per session key; independent sessions do not
// contend.
func (d *Detector) Detect(msg *fix.Message) *Result {
	result := &Result{}
	now := d.now()
	key := msg.SessionID()

	d.store.update(key, func(b *Baseline) *Baseline {
		d.check(result, b, msg, now)
		if b == nil {
			b = newBaseline(now)
		}
		b.observe(msg.MsgType, msg.MsgSeqNum, now)
		return b
	})

	for _, a := range result.Anomalies {
		metrics.AnomaliesDetected.WithLabelValues(a.Type).Inc()
		d.logger.Warn("anomaly detected",
			zap.String("session_id", key),
			zap.String("type", a.Type),
			zap.String("description", a.Description))
	}
	metrics.TrackedSessions.Set(float64(d.store.Len()))
	return result
}

// check runs the four independent checks. None of them short-circuits the
// others.
func (d *Detector) check(result *Result, b *Baseline, msg *fix.Message, now time.Time) {
	if b != nil {
		if d.isVolumeAnomaly(b, now) {
			result.add(TypeHighMessageVolume,
				"Unusual high message volume detected for session: "+msg.SessionID())
		}
		if d.isTypeAnomaly(b, msg.MsgType) {
			result.add(TypeUnusualMessageType,
				"Unusual message type detected: "+msg.MsgType)
		}
		if d.isSequenceAnomaly(b, msg.MsgSeqNum) {
			result.add(TypeSequenceNumber,
				fmt.Sprintf("Sequence number gap detected: %d", msg.MsgSeqNum))
		}
	}
	if msg.MsgType == fix.MsgTypeNewOrderSingle && msg.Price > 0 {
		if d.isPriceAnomaly(msg.Symbol, msg.Price) {
			result.add(TypePrice,
				fmt.Sprintf("Unusual price detected: %v for %s", msg.Price, msg.Symbol))
		}
	}
}

func (d *Detector) isVolumeAnomaly(b *Baseline, now time.Time) bool {
	recent := b.recentCount(now, d.cfg.VolumeWindow)
	return float64(recent) > b.AvgMessagesPerMinute(now)*d.cfg.VolumeThreshold
}

func (d *Detector) isTypeAnomaly(b *Baseline, msgType string) bool {
	total := 0
	for _, n := range b.typeDistribution {
		total += n
	}
	if total == 0 {
		return false
	}
	share := float64(b.typeDistribution[msgType]) / float64(total)
	return share < d.cfg.MinTypeShare
}

func (d *Detector) isSequenceAnomaly(b *Baseline, seqNum int) bool {
	return b.lastSeqNum > 0 && seqNum > b.lastSeqNum+d.cfg.MaxSeqGap
}

// isPriceAnomaly is a reserved hook for per-symbol price deviation checks
// against recent market levels. It currently never fires.
func (d *Detector) isPriceAnomaly(symbol string, price float64) bool {
	return false
}
