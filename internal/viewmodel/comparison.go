package viewmodel

import (
	"fmt"
	"strings"

	"github.com/smartb3/smartb3/pkg/models"
	"github.com/smartb3/smartb3/pkg/utils"
)

// Horizon titles as shown on the comparison card.
const (
	ShortTermTitle = "Curto prazo"
	LongTermTitle  = "Longo prazo"
)

// ComparisonRow is one ranked model.
type ComparisonRow struct {
	Rank  int    `json:"rank"`
	Model string `json:"model"`
	Value string `json:"value"`
	Error string `json:"error"`
	Text  string `json:"text"`
}

// Horizon is the ranking for one comparison window, headed by the actual
// value the models are measured against.
type Horizon struct {
	Title string          `json:"title"`
	Real  string          `json:"real,omitempty"`
	Rows  []ComparisonRow `json:"rows"`
}

// Comparison is the model ranking card.
type Comparison struct {
	Panel
	CompanyName string  `json:"company_name,omitempty"`
	ShortTerm   Horizon `json:"short_term"`
	LongTerm    Horizon `json:"long_term"`
}

// BuildComparison renders both horizons in the order the backend ranked
// them.
func BuildComparison(c *models.ComparisonResult, p Panel) Comparison {
	out := Comparison{
		Panel:     p,
		ShortTerm: Horizon{Title: ShortTermTitle},
		LongTerm:  Horizon{Title: LongTermTitle},
	}
	if c == nil {
		return out
	}
	out.CompanyName = c.CompanyName
	out.ShortTerm = buildHorizon(ShortTermTitle, c.ShortTerm)
	out.LongTerm = buildHorizon(LongTermTitle, c.LongTerm)
	return out
}

func buildHorizon(title string, scores []models.ModelScore) Horizon {
	h := Horizon{Title: title}
	if len(scores) == 0 {
		return h
	}
	h.Real = RealLine(scores[0].PriceHistoryValue)
	h.Rows = make([]ComparisonRow, len(scores))
	for i, s := range scores {
		row := ComparisonRow{
			Rank:  i + 1,
			Model: strings.ToUpper(s.ModelName),
			Value: utils.FormatBRL(s.Value),
			Error: utils.FormatPercent(s.ErrorPercent),
		}
		row.Text = fmt.Sprintf("%dº %s – %s – %s erro", row.Rank, row.Model, row.Value, row.Error)
		h.Rows[i] = row
	}
	return h
}

// RealLine renders the actual value line, e.g. "Real – R$ 122.10".
func RealLine(v float64) string {
	return "Real – " + utils.FormatBRL(v)
}
