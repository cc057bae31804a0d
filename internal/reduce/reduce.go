// Package reduce plans how a set of selected bands is folded into a single
// output channel. A plan is either a raster-algebra expression (arithmetic
// mean) or a delegation to the store's band-series aggregator.
package reduce

import (
	"errors"
	"fmt"
	"strings"
)

// Statistic names a band-folding method.
type Statistic string

// The supported statistics. The sd variants select values a number of
// standard deviations above (pos) or below (neg) the per-pixel series mean;
// their exact semantics belong to the aggregator the plan delegates to.
const (
	Mean   Statistic = "mean"
	Median Statistic = "median"
	Mode   Statistic = "mode"
	Min    Statistic = "min"
	Max    Statistic = "max"
	SD1Pos Statistic = "sd1_pos"
	SD2Pos Statistic = "sd2_pos"
	SD3Pos Statistic = "sd3_pos"
	SD1Neg Statistic = "sd1_neg"
	SD2Neg Statistic = "sd2_neg"
	SD3Neg Statistic = "sd3_neg"
)

// ErrUnknownStatistic is returned for a statistic outside the supported set.
var ErrUnknownStatistic = errors.New("unknown statistic")

var statistics = map[Statistic]bool{
	Mean: true, Median: true, Mode: true, Min: true, Max: true,
	SD1Pos: true, SD2Pos: true, SD3Pos: true,
	SD1Neg: true, SD2Neg: true, SD3Neg: true,
}

// ParseStatistic validates a statistic name from configuration.
func ParseStatistic(s string) (Statistic, error) {
	st := Statistic(s)
	if !statistics[st] {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownStatistic)
	}
	return st, nil
}

// Names returns the supported statistic names, for option help text.
func Names() []string {
	return []string{
		string(Mean), string(Median), string(Mode), string(Min), string(Max),
		string(SD1Pos), string(SD2Pos), string(SD3Pos),
		string(SD1Neg), string(SD2Neg), string(SD3Neg),
	}
}

// PlanKind discriminates the two ways a reduction can be carried out.
type PlanKind int

const (
	// Expression plans evaluate a raster-algebra expression.
	Expression PlanKind = iota
	// Delegate plans hand the inputs to the band-series aggregator.
	Delegate
)

// ReductionPlan describes how to fold the Inputs into one raster: either
// evaluate Expr (Kind == Expression) or call the series aggregator with
// Method (Kind == Delegate).
type ReductionPlan struct {
	Kind   PlanKind
	Inputs []string
	Expr   string // set when Kind == Expression
	Method string // set when Kind == Delegate
}

// Plan builds the reduction plan for a set of band raster names. The mean
// becomes a pixel-wise expression "(b1 + b2 + ... + bk) / k"; every other
// statistic delegates to the series aggregator, with min/max translated to
// the aggregator's "minimum"/"maximum" and the sd variants passed through
// verbatim.
func Plan(bandNames []string, stat Statistic) (ReductionPlan, error) {
	if len(bandNames) == 0 {
		return ReductionPlan{}, fmt.Errorf("reduction needs at least one band")
	}
	inputs := append([]string(nil), bandNames...)

	switch stat {
	case Mean:
		expr := fmt.Sprintf("(%s) / %d", strings.Join(inputs, " + "), len(inputs))
		return ReductionPlan{Kind: Expression, Inputs: inputs, Expr: expr}, nil
	case Median, Mode:
		return ReductionPlan{Kind: Delegate, Inputs: inputs, Method: string(stat)}, nil
	case Min:
		return ReductionPlan{Kind: Delegate, Inputs: inputs, Method: "minimum"}, nil
	case Max:
		return ReductionPlan{Kind: Delegate, Inputs: inputs, Method: "maximum"}, nil
	case SD1Pos, SD2Pos, SD3Pos, SD1Neg, SD2Neg, SD3Neg:
		return ReductionPlan{Kind: Delegate, Inputs: inputs, Method: string(stat)}, nil
	}
	return ReductionPlan{}, fmt.Errorf("%q: %w", stat, ErrUnknownStatistic)
}
