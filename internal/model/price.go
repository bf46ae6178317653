package model

import (
	"errors"
	"fmt"
	"time"
)

// Observation represents a single daily close observation
type Observation struct {
	Date  time.Time `json:"date" db:"observation_date"`
	Close float64   `json:"close" db:"close"`
}

// PriceSeries is an immutable, strictly date-ordered view over daily closes.
// Construct it with NewPriceSeries; the zero value is empty.
type PriceSeries struct {
	observations []Observation
}

// NewPriceSeries validates and wraps a slice of observations. Observations
// must be strictly increasing by date with positive closes.
func NewPriceSeries(observations []Observation) (*PriceSeries, error) {
	for i, obs := range observations {
		if obs.Close <= 0 {
			return nil, fmt.Errorf("observation %d (%s): close must be positive, got %f",
				i, obs.Date.Format("2006-01-02"), obs.Close)
		}
		if i > 0 && !observations[i-1].Date.Before(obs.Date) {
			return nil, fmt.Errorf("observation %d (%s): dates must be strictly increasing",
				i, obs.Date.Format("2006-01-02"))
		}
	}

	// Copy so later mutation of the caller's slice cannot leak in
	copied := make([]Observation, len(observations))
	copy(copied, observations)

	return &PriceSeries{observations: copied}, nil
}

// Len returns the number of observations in the series
func (s *PriceSeries) Len() int {
	return len(s.observations)
}

// At returns the observation at index i
func (s *PriceSeries) At(i int) Observation {
	return s.observations[i]
}

// Close returns the closing price at index i
func (s *PriceSeries) Close(i int) float64 {
	return s.observations[i].Close
}

// Date returns the observation date at index i
func (s *PriceSeries) Date(i int) time.Time {
	return s.observations[i].Date
}

// Period returns the inclusive first and last dates of the series
func (s *PriceSeries) Period() (time.Time, time.Time, error) {
	if len(s.observations) == 0 {
		return time.Time{}, time.Time{}, errors.New("empty price series")
	}
	return s.observations[0].Date, s.observations[len(s.observations)-1].Date, nil
}

// Slice returns a new series restricted to the inclusive date range. Nil
// bounds leave that side of the range open.
func (s *PriceSeries) Slice(start, end *time.Time) *PriceSeries {
	var out []Observation
	for _, obs := range s.observations {
		if start != nil && obs.Date.Before(*start) {
			continue
		}
		if end != nil && obs.Date.After(*end) {
			continue
		}
		out = append(out, obs)
	}
	return &PriceSeries{observations: out}
}

// Observations returns a copy of the underlying observations
func (s *PriceSeries) Observations() []Observation {
	out := make([]Observation, len(s.observations))
	copy(out, s.observations)
	return out
}

// DateRange represents a range of dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
