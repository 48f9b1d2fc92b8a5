// Package dashboard holds the client-side state of the SmartB3 dashboard:
// the current selection, the fetch orchestrator that keeps the detail
// panels consistent with it, and the search suggestion filter.
package dashboard

import (
	"slices"

	"github.com/smartb3/smartb3/pkg/models"
)

// Selection is the user's current choice: at most one company, the search
// box text, a sector filter and the suggestions derived from the text.
type Selection struct {
	Company     *models.Company  `json:"company,omitempty"`
	SearchText  string           `json:"search_text"`
	Sector      string           `json:"sector,omitempty"`
	Suggestions []models.Company `json:"suggestions"`
}

// HasCompany reports whether a company is selected.
func (s *Selection) HasCompany() bool { return s.Company != nil }

// Ticker returns the selected company's ticker, or "" when none is selected.
func (s *Selection) Ticker() string {
	if s.Company == nil {
		return ""
	}
	return s.Company.Ticker
}

// SetSearchText stores the text and recomputes the suggestions against the
// catalog.
func (s *Selection) SetSearchText(text string, catalog []models.Company, limit int) {
	s.SearchText = text
	s.Suggestions = Suggest(text, catalog, limit)
}

// SelectEntity selects a company. The search box shows its ticker and the
// sector filter and suggestions are cleared.
func (s *Selection) SelectEntity(c models.Company) {
	s.Company = &c
	s.SearchText = c.Ticker
	s.Sector = ""
	s.Suggestions = nil
}

// SelectFromSidebar selects a company listed under the current sector
// filter. The filter and the search text are left as they are.
func (s *Selection) SelectFromSidebar(c models.Company) {
	s.Company = &c
}

// SelectSector sets the sector filter and clears the selected company.
func (s *Selection) SelectSector(sector string) {
	s.Sector = sector
	s.Company = nil
}

// Clear resets the selection to nothing selected.
func (s *Selection) Clear() {
	*s = Selection{}
}

// clone returns a copy that shares no mutable state with s.
func (s Selection) clone() Selection {
	if s.Company != nil {
		c := *s.Company
		s.Company = &c
	}
	s.Suggestions = slices.Clone(s.Suggestions)
	return s
}
