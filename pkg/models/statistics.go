package models

import "fmt"

// Metric keys published by the statistics endpoint.
const (
	MetricMAE          = "MAE"
	MetricRMSE         = "RMSE"
	MetricSMAPE        = "SMAPE_percentage"
	MetricR2           = "R2"
	MetricHitRate      = "Hit_rate_percentage"
	MetricObservations = "n_obs"
)

// MetricKeys lists the known metric keys in display order.
var MetricKeys = []string{
	MetricMAE,
	MetricRMSE,
	MetricSMAPE,
	MetricR2,
	MetricHitRate,
	MetricObservations,
}

// Metrics maps a metric key to its value. Unknown keys are kept as received.
type Metrics map[string]float64

// Get returns the metric value and whether it was present.
func (m Metrics) Get(key string) (float64, bool) {
	v, ok := m[key]
	return v, ok
}

// StatisticsBlock is a set of metrics for the whole universe or one sector.
type StatisticsBlock struct {
	SectorName string  `json:"sector_name,omitempty"`
	Stats      Metrics `json:"stats"`
}

// Statistics is returned by GET /statistics/{sector_id}.
type Statistics struct {
	General StatisticsBlock `json:"general"`
	Sector  StatisticsBlock `json:"sector"`
}

// Validate checks that both metric blocks are present.
func (s *Statistics) Validate() error {
	if s.General.Stats == nil {
		return fmt.Errorf("%w: statistics without general.stats", ErrInvalidPayload)
	}
	if s.Sector.Stats == nil {
		return fmt.Errorf("%w: statistics without sector.stats", ErrInvalidPayload)
	}
	return nil
}
