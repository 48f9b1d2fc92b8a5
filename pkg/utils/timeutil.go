package utils

import (
	"time"
)

// BRT is the Brasília time location used by B3.
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		BRT = time.FixedZone("BRT", -3*60*60)
	}
}

// NowBRT returns the current time in Brasília time.
func NowBRT() time.Time {
	return time.Now().In(BRT)
}

// MarketOpenTime returns the B3 regular session opening time (10:00 BRT).
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(BRT)
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, BRT)
}

// MarketCloseTime returns the B3 regular session closing time (17:00 BRT).
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(BRT)
	return time.Date(d.Year(), d.Month(), d.Day(), 17, 0, 0, 0, BRT)
}

// PreOpenStart returns the pre-opening auction start time (9:45 BRT).
func PreOpenStart(date time.Time) time.Time {
	d := date.In(BRT)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 45, 0, 0, BRT)
}

// IsMarketOpenAt checks if the B3 regular session would be open at the given time.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(BRT)
	if !IsTradingDay(t) {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && !t.After(MarketCloseTime(t))
}

// IsTradingDay checks if the given date is a trading day (not weekend, not holiday).
func IsTradingDay(t time.Time) bool {
	t = t.In(BRT)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !IsTradingHoliday(t)
}

// IsTradingHoliday checks if the given date is a B3 trading holiday.
// This list should be updated annually.
func IsTradingHoliday(t time.Time) bool {
	_, ok := b3Holidays2026[t.In(BRT).Format("2006-01-02")]
	return ok
}

// B3 trading holidays for 2026 (update annually).
var b3Holidays2026 = map[string]string{
	"2026-01-01": "Confraternização Universal",
	"2026-02-16": "Carnaval",
	"2026-02-17": "Carnaval",
	"2026-04-03": "Paixão de Cristo",
	"2026-04-21": "Tiradentes",
	"2026-05-01": "Dia do Trabalho",
	"2026-06-04": "Corpus Christi",
	"2026-09-07": "Independência do Brasil",
	"2026-10-12": "Nossa Senhora Aparecida",
	"2026-11-02": "Finados",
	"2026-11-20": "Consciência Negra",
	"2026-12-24": "Véspera de Natal",
	"2026-12-25": "Natal",
	"2026-12-31": "Último dia útil do ano",
}

// ParseSeriesDate parses a chart date label in "02/01/2006" format.
func ParseSeriesDate(s string) (time.Time, error) {
	return time.ParseInLocation("02/01/2006", s, BRT)
}

// FormatDateBR formats a time.Time as "02/01/2006" in Brasília time.
func FormatDateBR(t time.Time) string {
	return t.In(BRT).Format("02/01/2006")
}

// FormatDateTimeBRT formats a time.Time as "02/01/2006 15:04:05 BRT".
func FormatDateTimeBRT(t time.Time) string {
	return t.In(BRT).Format("02/01/2006 15:04:05") + " BRT"
}

// FormatUpdatedAt renders a backend timestamp as "02/01/2006". Values that
// cannot be parsed are returned unchanged.
func FormatUpdatedAt(s string) string {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, BRT); err == nil {
			return FormatDateBR(t)
		}
	}
	return s
}

// MarketStatus returns the current market status string.
func MarketStatus() string {
	return MarketStatusAt(NowBRT())
}

// MarketStatusAt returns the market status string at the given time.
func MarketStatusAt(now time.Time) string {
	now = now.In(BRT)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}

	if holiday, ok := b3Holidays2026[now.Format("2006-01-02")]; ok {
		return "CLOSED (" + holiday + ")"
	}

	switch {
	case now.Before(PreOpenStart(now)):
		return "PRE-MARKET"
	case now.Before(MarketOpenTime(now)):
		return "PRE-OPEN AUCTION"
	case !now.After(MarketCloseTime(now)):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
