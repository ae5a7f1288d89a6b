package optimizer

import (
	"time"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// ProfileStep is the sample width shared by assignment profiles and
// generation prognoses.
const ProfileStep = 15 * time.Minute

// PriceFunc is a price prognosis source: it returns the (average)
// electricity price over the half-open range [rangeStart, rangeEnd).
type PriceFunc func(rangeStart, rangeEnd time.Time) units.EuroPerWattHour

// FlatPrice returns a PriceFunc that quotes the same price for every
// range. Used as the default source when no market feed is configured.
func FlatPrice(p units.EuroPerWattHour) PriceFunc {
	return func(time.Time, time.Time) units.EuroPerWattHour { return p }
}

// Series is a time-keyed step function of power: Values[i] holds for
// the half-open interval [Start+i*Step, Start+(i+1)*Step). It carries
// generation prognoses into the Snapshot and assigned rate profiles out
// of the Schedule.
type Series struct {
	Start  time.Time
	Step   time.Duration
	Values []units.Watt
}

// NewSeries builds a step series starting at start.
func NewSeries(start time.Time, step time.Duration, values []units.Watt) *Series {
	return &Series{Start: start, Step: step, Values: values}
}

// FlatSeries builds a series holding value constantly from start to end,
// sampled at step. The final sample may extend past end by less than one
// step.
func FlatSeries(start, end time.Time, step time.Duration, value units.Watt) *Series {
	n := int(end.Sub(start) / step)
	if end.Sub(start)%step != 0 {
		n++
	}
	if n < 0 {
		n = 0
	}
	values := make([]units.Watt, n)
	for i := range values {
		values[i] = value
	}
	return &Series{Start: start, Step: step, Values: values}
}

// End returns the exclusive end of the series window.
func (s *Series) End() time.Time {
	return s.Start.Add(time.Duration(len(s.Values)) * s.Step)
}

// At returns the value holding at t, or ErrOutOfRange if t falls outside
// [Start, End).
func (s *Series) At(t time.Time) (units.Watt, error) {
	if t.Before(s.Start) || !t.Before(s.End()) {
		return 0, ErrOutOfRange
	}
	i := int(t.Sub(s.Start) / s.Step)
	return s.Values[i], nil
}

// Add merges other into s pointwise, extending s's window as needed so
// the result covers the union of both windows. Both series must share
// the same step, and the offset between their starts must be a whole
// number of steps.
func (s *Series) Add(other *Series) error {
	if other == nil || len(other.Values) == 0 {
		return nil
	}
	if len(s.Values) == 0 {
		s.Start = other.Start
		s.Step = other.Step
		s.Values = append([]units.Watt(nil), other.Values...)
		return nil
	}
	if s.Step != other.Step || other.Start.Sub(s.Start)%s.Step != 0 {
		return ErrStepMismatch
	}

	offset := int(other.Start.Sub(s.Start) / s.Step)
	if offset < 0 {
		// Prepend zero samples so the receiver starts at other.Start.
		prefix := make([]units.Watt, -offset)
		s.Values = append(prefix, s.Values...)
		s.Start = other.Start
		offset = 0
	}
	if need := offset + len(other.Values); need > len(s.Values) {
		s.Values = append(s.Values, make([]units.Watt, need-len(s.Values))...)
	}
	for i, v := range other.Values {
		s.Values[offset+i] += v
	}
	return nil
}

// Energy integrates the whole series into watt-hours.
func (s *Series) Energy() units.WattHour {
	var total units.WattHour
	for _, v := range s.Values {
		total += v.Energy(s.Step)
	}
	return total
}
