// Package viewmodel turns a dashboard snapshot into the display-ready
// shape consumed by the web page and the CLI. It performs no I/O.
package viewmodel

import (
	"github.com/smartb3/smartb3/internal/dashboard"
	"github.com/smartb3/smartb3/pkg/models"
	"github.com/smartb3/smartb3/pkg/utils"
)

// Panel is the fetch status shared by every detail card.
type Panel struct {
	Status dashboard.Status `json:"status"`
	Error  string           `json:"error,omitempty"`
}

// Ready reports whether the panel's data is loaded.
func (p Panel) Ready() bool { return p.Status == dashboard.StatusLoaded }

// CompanyItem is a company as listed in suggestions and the sidebar.
type CompanyItem struct {
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	Sector    string `json:"sector"`
	Price     string `json:"price"`
	Variation string `json:"variation"`
	Positive  bool   `json:"positive"`
	Selected  bool   `json:"selected,omitempty"`
}

// Header is the selected company card.
type Header struct {
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	Sector    string `json:"sector"`
	Price     string `json:"price"`
	Variation string `json:"variation"`
	Positive  bool   `json:"positive"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Sidebar lists the sectors and the companies of the selected sector.
type Sidebar struct {
	Sectors        []string      `json:"sectors"`
	SelectedSector string        `json:"selected_sector,omitempty"`
	Companies      []CompanyItem `json:"companies"`
}

// View is everything the rendering layer needs for one frame.
type View struct {
	Version     uint64          `json:"version"`
	Phase       dashboard.Phase `json:"phase"`
	SearchText  string          `json:"search_text"`
	Suggestions []CompanyItem   `json:"suggestions"`
	Sidebar     Sidebar         `json:"sidebar"`
	Header      *Header         `json:"header,omitempty"`
	Chart       Chart           `json:"chart"`
	Comparison  Comparison      `json:"comparison"`
	Statistics  Statistics      `json:"statistics"`
	News        News            `json:"news"`
}

// Build derives the view from a snapshot.
func Build(s dashboard.Snapshot) View {
	v := View{
		Version:     s.Version,
		Phase:       s.Phase,
		SearchText:  s.Selection.SearchText,
		Suggestions: companyItems(s.Selection.Suggestions, s.Selection.Ticker()),
		Sidebar:     buildSidebar(s),
		Header:      buildHeader(s),
		Chart:       BuildChart(s.Series, panel(s.Field(dashboard.FieldSeries))),
		Comparison:  BuildComparison(s.Comparison, panel(s.Field(dashboard.FieldComparison))),
		Statistics:  BuildStatistics(s.Statistics, panel(s.Field(dashboard.FieldStatistics))),
		News:        BuildNews(s.News, panel(s.Field(dashboard.FieldNews))),
	}
	return v
}

func panel(st dashboard.FieldState) Panel {
	p := Panel{Status: st.Status}
	if st.Err != nil {
		p.Error = st.Err.Error()
	}
	return p
}

func buildSidebar(s dashboard.Snapshot) Sidebar {
	sb := Sidebar{
		Sectors:        s.Sectors,
		SelectedSector: s.Selection.Sector,
	}
	if s.Selection.Sector != "" {
		sb.Companies = companyItems(models.CompaniesInSector(s.Companies, s.Selection.Sector), s.Selection.Ticker())
	}
	return sb
}

// CompanyItems formats a company list with no entry selected.
func CompanyItems(companies []models.Company) []CompanyItem {
	return companyItems(companies, "")
}

func companyItems(companies []models.Company, selected string) []CompanyItem {
	if len(companies) == 0 {
		return nil
	}
	out := make([]CompanyItem, len(companies))
	for i, c := range companies {
		out[i] = CompanyItem{
			Ticker:    c.Ticker,
			Name:      c.Name,
			Sector:    c.Sector,
			Price:     utils.FormatBRL(c.Price),
			Variation: utils.FormatPct(c.Variation),
			Positive:  c.Variation >= 0,
			Selected:  selected != "" && c.Ticker == selected,
		}
	}
	return out
}

// buildHeader uses the series' price and variation once loaded, since they
// are as of the latest point; until then the catalog values are shown.
func buildHeader(s dashboard.Snapshot) *Header {
	c := s.Selection.Company
	if c == nil {
		return nil
	}
	price, variation := c.Price, c.Variation
	var updated string
	if s.Series != nil && s.Field(dashboard.FieldSeries).Status == dashboard.StatusLoaded {
		if s.Series.Price != 0 {
			price, variation = s.Series.Price, s.Series.Variation
		}
		updated = updatedAt(s.Series)
	}
	return &Header{
		Ticker:    c.Ticker,
		Name:      c.Name,
		Sector:    c.Sector,
		Price:     utils.FormatBRL(price),
		Variation: utils.FormatPct(variation),
		Positive:  variation >= 0,
		UpdatedAt: updated,
	}
}

// updatedAt prefers the backend timestamp and falls back to the date of the
// latest point, which is all a bare-array series carries.
func updatedAt(ps *models.PredictionSeries) string {
	if ps.UpdatedAt != "" {
		return utils.FormatUpdatedAt(ps.UpdatedAt)
	}
	if last := ps.Latest(); last != nil {
		if t, err := utils.ParseSeriesDate(last.Date); err == nil {
			return utils.FormatDateBR(t)
		}
	}
	return ""
}
