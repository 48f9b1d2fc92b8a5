// Package models defines the data structures exchanged with the SmartB3
// prediction backend and shared across the dashboard.
package models

import (
	"errors"
	"fmt"
)

// ErrInvalidPayload is returned when a backend response does not match the
// expected shape for its endpoint.
var ErrInvalidPayload = errors.New("invalid payload")

// Company represents a B3-listed company as returned by GET /companies.
type Company struct {
	Ticker    string  `json:"ticker"`              // e.g., "PETR4"
	Name      string  `json:"name"`                // e.g., "Petróleo Brasileiro S.A."
	Sector    string  `json:"sector"`              // sector name
	SectorID  int     `json:"sector_id,omitempty"` // backend sector identifier
	Price     float64 `json:"price"`               // last known price, BRL
	Variation float64 `json:"variation"`           // last known variation, percent
}

// Validate checks that the company carries an identifier.
func (c Company) Validate() error {
	if c.Ticker == "" {
		return fmt.Errorf("%w: company without ticker (name %q)", ErrInvalidPayload, c.Name)
	}
	return nil
}

// ValidateCompanies checks every company and rejects duplicate tickers.
func ValidateCompanies(companies []Company) error {
	seen := make(map[string]struct{}, len(companies))
	for i, c := range companies {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("companies[%d]: %w", i, err)
		}
		if _, dup := seen[c.Ticker]; dup {
			return fmt.Errorf("%w: duplicate ticker %q", ErrInvalidPayload, c.Ticker)
		}
		seen[c.Ticker] = struct{}{}
	}
	return nil
}

// FindCompany returns the company with the given ticker, if present.
func FindCompany(companies []Company, ticker string) (Company, bool) {
	for _, c := range companies {
		if c.Ticker == ticker {
			return c, true
		}
	}
	return Company{}, false
}

// CompaniesInSector returns the companies whose sector name matches, in
// source order.
func CompaniesInSector(companies []Company, sector string) []Company {
	if sector == "" {
		return nil
	}
	var out []Company
	for _, c := range companies {
		if c.Sector == sector {
			out = append(out, c)
		}
	}
	return out
}
