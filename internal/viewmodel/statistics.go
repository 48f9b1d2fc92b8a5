package viewmodel

import (
	"github.com/smartb3/smartb3/pkg/models"
	"github.com/smartb3/smartb3/pkg/utils"
)

// MetricLabels maps each known metric key to its display label. Keys not
// listed here are never rendered.
var MetricLabels = map[string]string{
	models.MetricMAE:          "Erro Médio Absoluto (MAE)",
	models.MetricRMSE:         "Raiz do Erro Quadrático Médio (RMSE)",
	models.MetricSMAPE:        "Erro Percentual Absoluto Médio Simétrico (sMAPE)",
	models.MetricR2:           "Coeficiente de Determinação (R²)",
	models.MetricHitRate:      "Taxa de Acerto (%)",
	models.MetricObservations: "Número de Observações",
}

// Block titles as shown on the statistics card.
const (
	GeneralTitle = "Estatísticas gerais"
	SectorTitle  = "Estatísticas do setor"
)

// Metric is one labeled statistic.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// MetricBlock is a titled list of metrics.
type MetricBlock struct {
	Title   string   `json:"title"`
	Metrics []Metric `json:"metrics"`
}

// Statistics is the statistics card.
type Statistics struct {
	Panel
	Sector  MetricBlock `json:"sector"`
	General MetricBlock `json:"general"`
}

// BuildStatistics renders the sector and general blocks.
func BuildStatistics(s *models.Statistics, p Panel) Statistics {
	out := Statistics{
		Panel:   p,
		Sector:  MetricBlock{Title: SectorTitle},
		General: MetricBlock{Title: GeneralTitle},
	}
	if s == nil {
		return out
	}
	if s.Sector.SectorName != "" {
		out.Sector.Title = SectorTitle + " – " + s.Sector.SectorName
	}
	out.Sector.Metrics = LabelMetrics(s.Sector.Stats)
	out.General.Metrics = LabelMetrics(s.General.Stats)
	return out
}

// LabelMetrics walks the known keys in declared order and labels the ones
// present.
func LabelMetrics(m models.Metrics) []Metric {
	var out []Metric
	for _, key := range models.MetricKeys {
		v, ok := m.Get(key)
		if !ok {
			continue
		}
		label, ok := MetricLabels[key]
		if !ok {
			continue
		}
		out = append(out, Metric{Key: key, Label: label, Value: formatMetric(key, v)})
	}
	return out
}

func formatMetric(key string, v float64) string {
	switch key {
	case models.MetricObservations:
		return utils.FormatCount(v)
	case models.MetricSMAPE, models.MetricHitRate:
		return utils.FormatPercent(v)
	case models.MetricR2:
		return utils.FormatFixed(v, 4)
	default:
		return utils.FormatFixed(v, 2)
	}
}
