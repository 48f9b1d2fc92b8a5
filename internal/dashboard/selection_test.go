package dashboard

import (
	"testing"
)

func TestSelectionSelectEntity(t *testing.T) {
	var s Selection
	s.SelectSector("Petróleo")
	s.SetSearchText("pet", catalog, 0)
	if len(s.Suggestions) != 2 {
		t.Fatalf("Suggestions: got %d, want 2", len(s.Suggestions))
	}

	s.SelectEntity(s.Suggestions[0])
	if s.Ticker() != "PETR4" {
		t.Errorf("Ticker: got %q", s.Ticker())
	}
	if s.SearchText != "PETR4" {
		t.Errorf("SearchText should be the ticker, got %q", s.SearchText)
	}
	if s.Sector != "" {
		t.Errorf("Sector should be cleared, got %q", s.Sector)
	}
	if s.Suggestions != nil {
		t.Errorf("Suggestions should be cleared, got %v", s.Suggestions)
	}
}

func TestSelectionSelectSectorClearsCompany(t *testing.T) {
	var s Selection
	s.SelectEntity(catalog[1])
	s.SelectSector("Financeiro")
	if s.HasCompany() {
		t.Error("selecting a sector should clear the company")
	}
	if s.Sector != "Financeiro" {
		t.Errorf("Sector: got %q", s.Sector)
	}
}

func TestSelectionClear(t *testing.T) {
	var s Selection
	s.SelectEntity(catalog[0])
	s.Clear()
	if s.HasCompany() || s.SearchText != "" || s.Ticker() != "" {
		t.Errorf("Clear left state behind: %+v", s)
	}
}

func TestSelectionCloneIsIndependent(t *testing.T) {
	var s Selection
	s.SelectEntity(catalog[0])
	c := s.clone()
	c.Company.Name = "changed"
	if s.Company.Name != "Petrobras" {
		t.Error("clone shares the company with the original")
	}
}

func TestSelectionSelectFromSidebarKeepsSector(t *testing.T) {
	var s Selection
	s.SelectSector("Petróleo")
	s.SelectFromSidebar(catalog[2])
	if s.Ticker() != "PRIO3" {
		t.Errorf("Ticker: got %q", s.Ticker())
	}
	if s.Sector != "Petróleo" {
		t.Errorf("Sector should be kept, got %q", s.Sector)
	}
	if s.SearchText != "" {
		t.Errorf("SearchText should be untouched, got %q", s.SearchText)
	}
}
