package thermal

import (
	"fmt"
	"math"
	"strings"
)

// NaNPolicy selects how Locate treats not-a-number cells.
type NaNPolicy int

const (
	// NaNIgnore orders NaN below every number, so NaN cells never win
	// unless the whole grid is NaN.
	NaNIgnore NaNPolicy = iota
	// NaNReject fails with ErrNaN when any cell is NaN.
	NaNReject
)

// String returns the config spelling of the policy.
func (p NaNPolicy) String() string {
	switch p {
	case NaNReject:
		return "reject"
	default:
		return "ignore"
	}
}

// ParseNaNPolicy parses "ignore" or "reject".
func ParseNaNPolicy(s string) (NaNPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return NaNIgnore, nil
	case "reject":
		return NaNReject, nil
	default:
		return NaNIgnore, fmt.Errorf("unknown NaN policy %q", s)
	}
}

// Peak is the grid coordinate and value of an extreme cell.
type Peak struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Celsius float64 `json:"celsius"`
}

// greater reports whether a ranks above b, with NaN below every number.
func greater(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	return math.IsNaN(b) || a > b
}

// Locate returns the hottest cell of g. Ties keep the first cell in
// row-major order, so a uniform grid yields (0,0).
func Locate(g *Grid, policy NaNPolicy) (Peak, error) {
	if g.Len() == 0 {
		return Peak{}, newFrameError(ErrCodeEmptyGrid, "grid has no cells")
	}

	best := 0
	for i, v := range g.Values {
		if math.IsNaN(v) && policy == NaNReject {
			return Peak{}, newFrameError(ErrCodeNaN, "NaN at (%d,%d)", i%g.Width, i/g.Width)
		}
		if greater(v, g.Values[best]) {
			best = i
		}
	}
	return Peak{X: best % g.Width, Y: best / g.Width, Celsius: g.Values[best]}, nil
}

// Summary describes one frame's temperature distribution.
type Summary struct {
	Hottest Peak    `json:"hottest"`
	Coldest Peak    `json:"coldest"`
	Mean    float64 `json:"mean"`
	Valid   int     `json:"valid"` // non-NaN cells
}

// Summarize computes extremes and the mean of the non-NaN cells of g.
// The hottest cell matches Locate; the coldest cell keeps the first minimum.
func Summarize(g *Grid, policy NaNPolicy) (Summary, error) {
	hot, err := Locate(g, policy)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{Hottest: hot}
	coldest := -1
	var sum float64
	for i, v := range g.Values {
		if math.IsNaN(v) {
			continue
		}
		s.Valid++
		sum += v
		if coldest < 0 || v < g.Values[coldest] {
			coldest = i
		}
	}
	if coldest < 0 {
		s.Coldest = Peak{Celsius: math.NaN()}
		s.Mean = math.NaN()
		return s, nil
	}
	s.Coldest = Peak{X: coldest % g.Width, Y: coldest / g.Width, Celsius: g.Values[coldest]}
	s.Mean = sum / float64(s.Valid)
	return s, nil
}
