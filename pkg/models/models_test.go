package models

import (
	"encoding/json"
	"errors"
	"testing"
)

// ── Company Tests ──

func TestCompanyDecode(t *testing.T) {
	body := `{"ticker":"PETR4","name":"Petrobras","sector":"Petróleo","sector_id":7,"price":36.1,"variation":-0.5}`
	var c Company
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("json.Unmarshal(Company) error: %v", err)
	}
	if c.Ticker != "PETR4" {
		t.Errorf("Ticker: got %q, want %q", c.Ticker, "PETR4")
	}
	if c.SectorID != 7 {
		t.Errorf("SectorID: got %d, want 7", c.SectorID)
	}
	if c.Variation != -0.5 {
		t.Errorf("Variation: got %f, want -0.5", c.Variation)
	}
}

func TestValidateCompanies(t *testing.T) {
	tests := []struct {
		name      string
		companies []Company
		wantErr   bool
	}{
		{"empty", nil, false},
		{"valid", []Company{{Ticker: "PETR4"}, {Ticker: "VALE3"}}, false},
		{"missing ticker", []Company{{Name: "Sem código"}}, true},
		{"duplicate", []Company{{Ticker: "PETR4"}, {Ticker: "PETR4"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCompanies(tt.companies)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCompanies() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestCompaniesInSector(t *testing.T) {
	companies := []Company{
		{Ticker: "PETR4", Sector: "Petróleo"},
		{Ticker: "ITUB4", Sector: "Financeiro"},
		{Ticker: "PRIO3", Sector: "Petróleo"},
	}
	got := CompaniesInSector(companies, "Petróleo")
	if len(got) != 2 || got[0].Ticker != "PETR4" || got[1].Ticker != "PRIO3" {
		t.Errorf("CompaniesInSector: got %+v", got)
	}
	if CompaniesInSector(companies, "") != nil {
		t.Error("empty sector should yield nil")
	}
}

// ── Prediction Series Tests ──

func TestSeriesPointPreservesKeyOrder(t *testing.T) {
	var p SeriesPoint
	body := `{"date":"14/05/2025","real":36.1,"xgboost":36.0,"gru":36.4,"lstm":null}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Date != "14/05/2025" {
		t.Errorf("Date: got %q", p.Date)
	}
	want := []string{"real", "xgboost", "gru"}
	if len(p.Values) != len(want) {
		t.Fatalf("Values: got %d entries, want %d", len(p.Values), len(want))
	}
	for i, name := range want {
		if p.Values[i].Model != name {
			t.Errorf("Values[%d]: got %q, want %q", i, p.Values[i].Model, name)
		}
	}
	if v, ok := p.Value("gru"); !ok || v != 36.4 {
		t.Errorf("Value(gru): got %f, %v", v, ok)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"date":"14/05/2025","real":36.1,"xgboost":36,"gru":36.4}` {
		t.Errorf("MarshalJSON: got %s", out)
	}
}

func TestSeriesPointRejectsNonNumeric(t *testing.T) {
	var p SeriesPoint
	err := json.Unmarshal([]byte(`{"date":"14/05/2025","gru":"high"}`), &p)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestPredictionSeriesShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		points    int
		price     float64
		updatedAt string
	}{
		{
			name:      "object",
			body:      `{"price":36.1,"variation":1.2,"updated_at":"2025-05-14","graph":[{"date":"13/05/2025","real":35.9},{"date":"14/05/2025","real":36.1}]}`,
			points:    2,
			price:     36.1,
			updatedAt: "2025-05-14",
		},
		{
			name:   "bare array",
			body:   `[{"date":"14/05/2025","real":36.1,"gru":36.4}]`,
			points: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s PredictionSeries
			if err := json.Unmarshal([]byte(tt.body), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(s.Graph) != tt.points {
				t.Errorf("Graph: got %d points, want %d", len(s.Graph), tt.points)
			}
			if s.Price != tt.price {
				t.Errorf("Price: got %f, want %f", s.Price, tt.price)
			}
			if s.UpdatedAt != tt.updatedAt {
				t.Errorf("UpdatedAt: got %q, want %q", s.UpdatedAt, tt.updatedAt)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestPredictionSeriesValidateMissingDate(t *testing.T) {
	s := PredictionSeries{Graph: []SeriesPoint{{Values: []SeriesValue{{Model: "real", Value: 1}}}}}
	if err := s.Validate(); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestSeriesNamesFirstSeenOrder(t *testing.T) {
	s := PredictionSeries{Graph: []SeriesPoint{
		{Date: "a", Values: []SeriesValue{{Model: "real"}, {Model: "gru"}}},
		{Date: "b", Values: []SeriesValue{{Model: "gru"}, {Model: "lstm"}, {Model: "real"}}},
	}}
	got := s.SeriesNames()
	want := []string{"real", "gru", "lstm"}
	if len(got) != len(want) {
		t.Fatalf("SeriesNames: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SeriesNames[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
	if s.Latest().Date != "b" {
		t.Errorf("Latest: got %q, want b", s.Latest().Date)
	}
	var empty PredictionSeries
	if empty.Latest() != nil {
		t.Error("Latest of empty series should be nil")
	}
}

// ── Comparison Tests ──

func TestComparisonDecodeAndValidate(t *testing.T) {
	body := `{
		"short_term": [{"model_name":"gru","value":121.4,"error_percent":0.57,"price_history_value":122.1,"date":"2025-05-14"}],
		"long_term": [],
		"company_name": "Petrobras"
	}`
	var c ComparisonResult
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.CompanyName != "Petrobras" {
		t.Errorf("CompanyName: got %q", c.CompanyName)
	}
	if len(c.ShortTerm) != 1 || c.ShortTerm[0].ErrorPercent != 0.57 {
		t.Errorf("ShortTerm: got %+v", c.ShortTerm)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	c.LongTerm = append(c.LongTerm, ModelScore{Value: 1})
	if err := c.Validate(); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for unnamed model, got %v", err)
	}
}

// ── Statistics Tests ──

func TestStatisticsDecode(t *testing.T) {
	body := `{
		"general": {"stats": {"MAE": 0.41, "RMSE": 0.6, "n_obs": 120}},
		"sector": {"sector_name": "Petróleo", "stats": {"MAE": 0.3, "foo": 1.0}}
	}`
	var s Statistics
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v, ok := s.General.Stats.Get(MetricObservations); !ok || v != 120 {
		t.Errorf("n_obs: got %f, %v", v, ok)
	}
	if s.Sector.SectorName != "Petróleo" {
		t.Errorf("SectorName: got %q", s.Sector.SectorName)
	}
	if _, ok := s.Sector.Stats.Get("foo"); !ok {
		t.Error("unknown keys should be kept as received")
	}
}

func TestStatisticsValidateMissingBlocks(t *testing.T) {
	var s Statistics
	if err := json.Unmarshal([]byte(`{"general":{"stats":{}}}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := s.Validate(); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}
