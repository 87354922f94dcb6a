package placement

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
)

// Objective selects the scoring strategy of a search
type Objective int

const (
	// Spread maximizes the summed distance between footprint centers.
	Spread Objective = iota + 1

	// WiringCost minimizes the summed nearest same-net pad distances.
	WiringCost
)

func (o Objective) String() string {
	switch o {
	case Spread:
		return "spread"
	case WiringCost:
		return "wiring_cost"
	default:
		return fmt.Sprintf("objective(%d)", int(o))
	}
}

// ParseObjective accepts "spread", "wiring", "wiring_cost" and "wiring-cost", in any case
func ParseObjective(s string) (Objective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spread":
		return Spread, nil
	case "wiring", "wiring_cost", "wiring-cost", "wiringcost":
		return WiringCost, nil
	}
	return 0, newError(CodeInvalidConfiguration, "unknown objective %q (want spread or wiring_cost)", s)
}

// Valid reports whether o names a known strategy
func (o Objective) Valid() bool {
	return o == Spread || o == WiringCost
}

// Maximize reports whether higher scores are better
func (o Objective) Maximize() bool {
	return o == Spread
}

// Score evaluates the strategy on the current board state
func (o Objective) Score(b *Board) float64 {
	switch o {
	case Spread:
		return SpreadScore(b)
	case WiringCost:
		return WiringCostScore(b)
	}
	return math.NaN()
}

// Improved reports whether after is at least as good as before
func (o Objective) Improved(before, after float64) bool {
	if o.Maximize() {
		return after >= before
	}
	return after <= before
}

// SpreadScore sums the center distance over every ordered pair of distinct
// footprints, so each unordered pair contributes twice.
func SpreadScore(b *Board) float64 {
	var sum float64
	for _, fp := range b.footprints {
		c := fp.Bounds.Center()
		for _, other := range b.footprints {
			if other == fp {
				continue
			}
			sum += r2.Norm(r2.Sub(c, other.Bounds.Center()))
		}
	}
	return sum
}

// WiringCostScore sums, over every footprint and every net it has pads on, the
// shortest distance from one of its pads to a pad of another footprint on the
// same net. Nets without a match on another footprint contribute nothing.
func WiringCostScore(b *Board) float64 {
	var sum float64
	for _, fp := range b.footprints {
		sum += FootprintWiringCost(b, fp)
	}
	return sum
}

// NetWiringCost is WiringCostScore restricted to a single net
func NetWiringCost(b *Board, name string) float64 {
	var sum float64
	for _, fp := range b.footprints {
		pts := fp.NetPoints(name)
		if len(pts) == 0 {
			continue
		}
		if d, ok := b.nearest(fp, Net{Name: name, Points: pts}); ok {
			sum += d
		}
	}
	return sum
}

// FootprintWiringCost is the share of WiringCostScore contributed by fp
func FootprintWiringCost(b *Board, fp *Footprint) float64 {
	var sum float64
	for _, net := range fp.Nets {
		if d, ok := b.nearest(fp, net); ok {
			sum += d
		}
	}
	return sum
}

func (b *Board) nearest(fp *Footprint, net Net) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, other := range b.footprints {
		if other == fp {
			continue
		}
		theirs := other.NetPoints(net.Name)
		for _, p := range net.Points {
			for _, q := range theirs {
				if d := geom.Distance(p, q); d < best {
					best = d
					found = true
				}
			}
		}
	}
	return best, found
}
