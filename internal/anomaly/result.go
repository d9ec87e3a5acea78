package anomaly

import "time"

// Anomaly types reported by the detector.
const (
	TypeHighMessageVolume  = "HIGH_MESSAGE_VOLUME"
	TypeUnusualMessageType = "UNUSUAL_MESSAGE_TYPE"
	TypeSequenceNumber     = "SEQUENCE_NUMBER_ANOMALY"
	TypePrice              = "PRICE_ANOMALY"
)

// Anomaly is one advisory finding. Anomalies never block or reject the
// message that triggered them.
type Anomaly struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Result collects the findings for one message.
type Result struct {
	Anomalies    []Anomaly `json:"anomalies"`
	HasAnomalies bool      `json:"has_anomalies"`
}

func (r *Result) add(anomalyType, description string) {
	r.Anomalies = append(r.Anomalies, Anomaly{
		Type:        anomalyType,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
	r.HasAnomalies = true
}
