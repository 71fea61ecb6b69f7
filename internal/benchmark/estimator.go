package benchmark

import (
	"fmt"
	"math"
)

// PotentialModel turns a benchmark operating margin into margin gaps.
// The base gap is a share of the margin clamped to [MinGapPP, MaxGapPP];
// the tiers scale the base.
type PotentialModel struct {
	BaseShare  float64 `json:"base_share"`
	MinGapPP   float64 `json:"min_gap_pp"`
	MaxGapPP   float64 `json:"max_gap_pp"`
	LowFactor  float64 `json:"low_factor"`
	HighFactor float64 `json:"high_factor"`
}

// DefaultPotentialModel returns the production model: 30% of the median
// margin, capped between 0.5 and 6.0 percentage points.
func DefaultPotentialModel() PotentialModel {
	return PotentialModel{
		BaseShare:  0.30,
		MinGapPP:   0.5,
		MaxGapPP:   6.0,
		LowFactor:  0.75,
		HighFactor: 1.5,
	}
}

// Validate checks the model bounds
func (m PotentialModel) Validate() error {
	if m.MinGapPP < 0 {
		return fmt.Errorf("min gap must not be negative: %v", m.MinGapPP)
	}
	if m.MinGapPP > m.MaxGapPP {
		return fmt.Errorf("min gap %v exceeds max gap %v", m.MinGapPP, m.MaxGapPP)
	}
	if m.LowFactor <= 0 || m.HighFactor <= 0 {
		return fmt.Errorf("tier factors must be positive")
	}
	if m.LowFactor > 1 || m.HighFactor < 1 {
		return fmt.Errorf("tier factors must satisfy low <= 1 <= high")
	}
	return nil
}

// Gaps are percentage-point margin improvements per tier.
type Gaps struct {
	Low  float64
	Mid  float64
	High float64
}

// Potential is the unrounded estimate for one revenue figure.
type Potential struct {
	Base   float64
	Gaps   Gaps
	LowKr  float64
	MidKr  float64
	HighKr float64
}

// Base returns the clamped base gap for a benchmark operating margin.
func (m PotentialModel) Base(operatingMarginPct float64) float64 {
	return math.Max(m.MinGapPP, math.Min(m.MaxGapPP, operatingMarginPct*m.BaseShare))
}

// Estimate applies the model. Currency potentials are floored at zero.
func (m PotentialModel) Estimate(revenue, operatingMarginPct float64) Potential {
	base := m.Base(operatingMarginPct)
	gaps := Gaps{
		Low:  base * m.LowFactor,
		Mid:  base,
		High: base * m.HighFactor,
	}
	kr := func(gap float64) float64 {
		return math.Max(0, revenue*(gap/100))
	}
	return Potential{
		Base:   base,
		Gaps:   gaps,
		LowKr:  kr(gaps.Low),
		MidKr:  kr(gaps.Mid),
		HighKr: kr(gaps.High),
	}
}

// Result is the response for a successful lookup.
type Result struct {
	AntalForetag           *int64  `json:"antal_foretag"`
	RorelsemarginalPct     float64 `json:"rorelsemarginal_pct"`
	NettomarginalPct       float64 `json:"nettomarginal_pct"`
	PersonalkostnadNetto   float64 `json:"personalkostnad_netto_pct"`
	PersonalkostnadPerAnst *int64  `json:"personalkostnad_per_anst_tkr"`

	MedianEBITKr     int64 `json:"median_ebit_kr"`
	MedianPersonalKr int64 `json:"median_personal_kr"`

	GapLowPP  float64 `json:"gap_low_pp"`
	GapMidPP  float64 `json:"gap_mid_pp"`
	GapHighPP float64 `json:"gap_high_pp"`

	PotentialLowKr  int64 `json:"potential_low_kr"`
	PotentialMidKr  int64 `json:"potential_mid_kr"`
	PotentialHighKr int64 `json:"potential_high_kr"`

	MatchedRows int `json:"-"`
}

// Estimator answers queries against one table. It holds no mutable state.
type Estimator struct {
	table *Table
	model PotentialModel
}

// NewEstimator creates an estimator over table using model.
func NewEstimator(table *Table, model PotentialModel) *Estimator {
	return &Estimator{table: table, model: model}
}

// Table returns the dataset the estimator reads
func (e *Estimator) Table() *Table {
	return e.table
}

// Lookup filters and aggregates the segment selected by q.
func (e *Estimator) Lookup(q Query) (Benchmark, error) {
	key := q.Key()
	rows := e.table.Match(key)
	if len(rows) == 0 {
		return Benchmark{}, notFoundError(key)
	}
	b := Aggregate(rows)
	if missing := b.missingMandatory(); len(missing) > 0 {
		return b, incompleteError(missing)
	}
	return b, nil
}

// Compute looks up the segment and estimates the improvement potential.
// All failures are *QueryError values.
func (e *Estimator) Compute(q Query) (*Result, error) {
	if q.Revenue == nil {
		return nil, validationError([]string{"revenue"})
	}
	b, err := e.Lookup(q)
	if err != nil {
		return nil, err
	}

	revenue := *q.Revenue
	opm := b.RorelsemarginalPct.Value
	staff := b.PersonalkostnadNetto.Value
	p := e.model.Estimate(revenue, opm)

	return &Result{
		AntalForetag:           optionalInt(b.AntalForetag),
		RorelsemarginalPct:     round1(opm),
		NettomarginalPct:       round1(b.NettomarginalPct.Value),
		PersonalkostnadNetto:   round1(staff),
		PersonalkostnadPerAnst: optionalInt(b.PersonalkostnadPerAnst),
		MedianEBITKr:           roundInt(revenue * (opm / 100)),
		MedianPersonalKr:       roundInt(revenue * (staff / 100)),
		GapLowPP:               round1(p.Gaps.Low),
		GapMidPP:               round1(p.Gaps.Mid),
		GapHighPP:              round1(p.Gaps.High),
		PotentialLowKr:         roundInt(p.LowKr),
		PotentialMidKr:         roundInt(p.MidKr),
		PotentialHighKr:        roundInt(p.HighKr),
		MatchedRows:            b.MatchedRows,
	}, nil
}
