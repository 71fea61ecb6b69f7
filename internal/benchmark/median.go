package benchmark

import "slices"

// Median returns the median of the valid values, ignoring nulls.
// An even count averages the two middle values. No valid values yields Null.
func Median(values []Number) Number {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			xs = append(xs, v.Value)
		}
	}
	if len(xs) == 0 {
		return Null
	}
	slices.Sort(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 1 {
		return Some(xs[mid])
	}
	return Some((xs[mid-1] + xs[mid]) / 2)
}

// Benchmark is the per-column median profile of a matched segment.
type Benchmark struct {
	AntalForetag           Number
	RorelsemarginalPct     Number
	NettomarginalPct       Number
	PersonalkostnadNetto   Number
	PersonalkostnadPerAnst Number
	MatchedRows            int
}

// Aggregate takes the median of each numeric column independently.
func Aggregate(rows []Row) Benchmark {
	column := func(get func(Row) Number) Number {
		vs := make([]Number, len(rows))
		for i, r := range rows {
			vs[i] = get(r)
		}
		return Median(vs)
	}
	return Benchmark{
		AntalForetag:           column(func(r Row) Number { return r.AntalForetag }),
		RorelsemarginalPct:     column(func(r Row) Number { return r.RorelsemarginalPct }),
		NettomarginalPct:       column(func(r Row) Number { return r.NettomarginalPct }),
		PersonalkostnadNetto:   column(func(r Row) Number { return r.PersonalkostnadNetto }),
		PersonalkostnadPerAnst: column(func(r Row) Number { return r.PersonalkostnadPerAnst }),
		MatchedRows:            len(rows),
	}
}

// missingMandatory names the mandatory columns whose median is null.
func (b Benchmark) missingMandatory() []string {
	var missing []string
	if !b.RorelsemarginalPct.Valid {
		missing = append(missing, ColRorelsemarginalPct)
	}
	if !b.NettomarginalPct.Valid {
		missing = append(missing, ColNettomarginalPct)
	}
	if !b.PersonalkostnadNetto.Valid {
		missing = append(missing, ColPersonalkostnadNetto)
	}
	return missing
}
