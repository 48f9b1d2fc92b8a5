package models

import "fmt"

// ModelScore is one model's prediction for a comparison horizon together
// with the historical value it is measured against.
type ModelScore struct {
	ModelName         string  `json:"model_name"`
	Value             float64 `json:"value"`
	ErrorPercent      float64 `json:"error_percent"`
	PriceHistoryValue float64 `json:"price_history_value"`
}

// ComparisonResult is returned by GET /comparison/{ticker}. Both horizons
// arrive ranked by ascending error; the order is preserved as received.
type ComparisonResult struct {
	ShortTerm   []ModelScore `json:"short_term"`
	LongTerm    []ModelScore `json:"long_term"`
	CompanyName string       `json:"company_name"`
}

// Validate checks that every ranked row names its model.
func (c *ComparisonResult) Validate() error {
	for i, s := range c.ShortTerm {
		if s.ModelName == "" {
			return fmt.Errorf("%w: short_term[%d] has no model_name", ErrInvalidPayload, i)
		}
	}
	for i, s := range c.LongTerm {
		if s.ModelName == "" {
			return fmt.Errorf("%w: long_term[%d] has no model_name", ErrInvalidPayload, i)
		}
	}
	return nil
}
