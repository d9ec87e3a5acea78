package platform

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/anomaly"
	"github.com/fixsecurity/fixsentry/internal/compliance"
	"github.com/fixsecurity/fixsentry/internal/fix"
	"github.com/fixsecurity/fixsentry/internal/messaging"
	"github.com/fixsecurity/fixsentry/pkg/metrics"
)

// Result bundles the three pipeline outputs for one message. All of it is
// plain data, ready for serialization by the HTTP and broker layers.
type Result struct {
	Message    *fix.Message       `json:"message"`
	Compliance *compliance.Result `json:"compliance"`
	Anomalies  *anomaly.Result    `json:"anomalies"`
}

// Service runs the decode, compliance and anomaly stages over raw wire
// input and forwards the outcome to the message broker. Decoding and
// compliance are stateless; the anomaly stage owns the only shared
// mutable state through its baseline store.
type Service struct {
	decoder  *fix.Decoder
	engine   *compliance.Engine
	detector *anomaly.Detector
	producer messaging.Producer
	logger   *zap.Logger
}

// NewService wires the pipeline stages together.
func NewService(
	logger *zap.Logger,
	decoder *fix.Decoder,
	engine *compliance.Engine,
	detector *anomaly.Detector,
	producer messaging.Producer,
) *Service {
	return &Service{
		decoder:  decoder,
		engine:   engine,
		detector: detector,
		producer: producer,
		logger:   logger,
	}
}

// Process decodes raw wire text and, when structurally valid, runs the
// compliance and anomaly stages. A decode failure aborts processing and
// is the only error this method returns; the analysis stages are
// fail-safe and always produce a result for a valid message.
func (s *Service) Process(ctx context.Context, raw string) (*Result, error) {
	start := time.Now()

	msg, err := s.decoder.Decode(raw)
	if err != nil {
		var decodeErr *fix.DecodeError
		if errors.As(err, &decodeErr) {
			metrics.DecodeFailures.WithLabelValues(string(decodeErr.Kind)).Inc()
		}
		s.logger.Warn("rejected wire message", zap.Error(err))
		return nil, err
	}
	metrics.MessagesDecoded.WithLabelValues(msg.MsgType).Inc()

	comp := s.engine.Evaluate(msg)
	for _, ev := range comp.Evaluations {
		if !ev.Compliant {
			metrics.ComplianceViolations.WithLabelValues(ev.RuleID).Inc()
		}
	}

	anomalies := s.detector.Detect(msg)

	// Delivery is best-effort; a broker outage must not stall analysis.
	if err := s.producer.PublishParsed(ctx, msg); err != nil {
		s.logger.Error("failed to publish parsed message",
			zap.String("session_id", msg.SessionID()),
			zap.Error(err))
	}
	if err := s.producer.PublishRaw(ctx, msg.SessionID(), raw); err != nil {
		s.logger.Error("failed to publish raw message",
			zap.String("session_id", msg.SessionID()),
			zap.Error(err))
	}

	metrics.ProcessingLatency.Observe(time.Since(start).Seconds())
	return &Result{Message: msg, Compliance: comp, Anomalies: anomalies}, nil
}
