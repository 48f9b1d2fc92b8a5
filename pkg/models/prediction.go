package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RealSeries is the pseudo-model name carrying the actual closing price in a
// series point.
const RealSeries = "real"

// SeriesValue is one model's value at a series point.
type SeriesValue struct {
	Model string  `json:"model"`
	Value float64 `json:"value"`
}

// SeriesPoint is one time-labeled set of model predictions plus, when known,
// the actual value. Model order follows the order of keys in the payload.
type SeriesPoint struct {
	Date   string
	Values []SeriesValue
}

// Value returns the value for the given model name.
func (p SeriesPoint) Value(model string) (float64, bool) {
	for _, v := range p.Values {
		if v.Model == model {
			return v.Value, true
		}
	}
	return 0, false
}

// UnmarshalJSON decodes a flat object such as
// {"date":"14/05/2025","real":36.1,"gru":36.4} preserving key order.
func (p *SeriesPoint) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: series point must be an object", ErrInvalidPayload)
	}

	p.Date = ""
	p.Values = p.Values[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if key == "date" {
			if err := json.Unmarshal(raw, &p.Date); err != nil {
				return fmt.Errorf("%w: series point date: %v", ErrInvalidPayload, err)
			}
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("%w: series point %q: non-numeric value", ErrInvalidPayload, key)
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("%w: series point %q: %v", ErrInvalidPayload, key, err)
		}
		p.Values = append(p.Values, SeriesValue{Model: key, Value: f})
	}

	_, err = dec.Token() // closing '}'
	return err
}

// MarshalJSON encodes the point back into the flat chart shape.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"date":`)
	date, err := json.Marshal(p.Date)
	if err != nil {
		return nil, err
	}
	buf.Write(date)
	for _, v := range p.Values {
		key, err := json.Marshal(v.Model)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PredictionSeries is the chart payload returned by GET /prediction/{ticker}.
type PredictionSeries struct {
	Ticker    string        `json:"ticker,omitempty"` // set by the client, not the backend
	Price     float64       `json:"price"`
	Variation float64       `json:"variation"`
	UpdatedAt string        `json:"updated_at"`
	Graph     []SeriesPoint `json:"graph"`
}

// UnmarshalJSON accepts both the object shape and a bare array of points.
func (s *PredictionSeries) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		*s = PredictionSeries{}
		return json.Unmarshal(trimmed, &s.Graph)
	}
	type plain PredictionSeries
	var v plain
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*s = PredictionSeries(v)
	return nil
}

// Validate checks that every point carries a date label.
func (s *PredictionSeries) Validate() error {
	for i, p := range s.Graph {
		if p.Date == "" {
			return fmt.Errorf("%w: graph[%d] has no date", ErrInvalidPayload, i)
		}
	}
	return nil
}

// Latest returns the most recent point, or nil for an empty series.
func (s *PredictionSeries) Latest() *SeriesPoint {
	if len(s.Graph) == 0 {
		return nil
	}
	return &s.Graph[len(s.Graph)-1]
}

// SeriesNames returns the union of model names across all points, in the
// order they are first seen.
func (s *PredictionSeries) SeriesNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range s.Graph {
		for _, v := range p.Values {
			if _, ok := seen[v.Model]; ok {
				continue
			}
			seen[v.Model] = struct{}{}
			names = append(names, v.Model)
		}
	}
	return names
}
