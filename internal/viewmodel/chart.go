package viewmodel

import "github.com/smartb3/smartb3/pkg/models"

// Palette is the line color cycle of the chart widget.
var Palette = []string{"#10B981", "#3B82F6", "#FBBF24", "#EF4444"}

// Series is one line of the chart.
type Series struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Chart is the prediction chart: the points exactly as received, with
// every non-date key of a point naming a line.
type Chart struct {
	Panel
	Series []Series             `json:"series"`
	Points []models.SeriesPoint `json:"points"`
}

// BuildChart passes the series' points through and names its lines in
// first-seen order.
func BuildChart(ps *models.PredictionSeries, p Panel) Chart {
	ch := Chart{Panel: p}
	if ps == nil {
		return ch
	}
	ch.Points = ps.Graph
	for i, name := range ps.SeriesNames() {
		ch.Series = append(ch.Series, Series{Name: name, Color: Palette[i%len(Palette)]})
	}
	return ch
}
