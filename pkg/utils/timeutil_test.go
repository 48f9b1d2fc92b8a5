package utils

import (
	"testing"
	"time"
)

func TestNowBRT(t *testing.T) {
	now := NowBRT()
	if now.Location().String() != "America/Sao_Paulo" && now.Location().String() != "BRT" {
		t.Errorf("NowBRT() location = %s, want America/Sao_Paulo or BRT", now.Location().String())
	}
}

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 2, 19, 12, 0, 0, 0, BRT)

	open := MarketOpenTime(date)
	if open.Hour() != 10 || open.Minute() != 0 {
		t.Errorf("MarketOpenTime = %v, want 10:00", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 17 || close.Minute() != 0 {
		t.Errorf("MarketCloseTime = %v, want 17:00", close)
	}
}

func TestIsMarketOpenAt(t *testing.T) {
	// Wednesday at 11:00: should be open
	if !IsMarketOpenAt(time.Date(2026, 2, 18, 11, 0, 0, 0, BRT)) {
		t.Error("Expected market to be open on Wednesday 11:00")
	}

	// Saturday: should be closed
	if IsMarketOpenAt(time.Date(2026, 2, 21, 11, 0, 0, 0, BRT)) {
		t.Error("Expected market to be closed on Saturday")
	}

	// Carnaval: should be closed
	if IsMarketOpenAt(time.Date(2026, 2, 17, 11, 0, 0, 0, BRT)) {
		t.Error("Expected market to be closed on Carnaval")
	}

	// Wednesday at 18:00, after close
	if IsMarketOpenAt(time.Date(2026, 2, 18, 18, 0, 0, 0, BRT)) {
		t.Error("Expected market to be closed at 18:00")
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 2, 21, 11, 0, 0, 0, BRT), "CLOSED (Weekend)"},
		{time.Date(2026, 4, 21, 11, 0, 0, 0, BRT), "CLOSED (Tiradentes)"},
		{time.Date(2026, 2, 18, 8, 0, 0, 0, BRT), "PRE-MARKET"},
		{time.Date(2026, 2, 18, 9, 50, 0, 0, BRT), "PRE-OPEN AUCTION"},
		{time.Date(2026, 2, 18, 12, 0, 0, 0, BRT), "OPEN"},
		{time.Date(2026, 2, 18, 17, 30, 0, 0, BRT), "CLOSED"},
	}
	for _, tt := range tests {
		if got := MarketStatusAt(tt.at); got != tt.want {
			t.Errorf("MarketStatusAt(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestParseSeriesDate(t *testing.T) {
	d, err := ParseSeriesDate("14/05/2025")
	if err != nil {
		t.Fatalf("ParseSeriesDate failed: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 5 || d.Day() != 14 {
		t.Errorf("ParseSeriesDate = %v, want 2025-05-14", d)
	}
	if FormatDateBR(d) != "14/05/2025" {
		t.Errorf("FormatDateBR = %s, want 14/05/2025", FormatDateBR(d))
	}
}

func TestFormatUpdatedAt(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2025-05-14", "14/05/2025"},
		{"2025-05-14T18:30:00", "14/05/2025"},
		{"ontem", "ontem"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatUpdatedAt(tt.input); got != tt.expected {
			t.Errorf("FormatUpdatedAt(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
