package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
)

// CargoSpec parameterizes the number of containers a vessel carries.
//
//	type: constant     params: value
//	type: uniform      params: min, max
//	type: gaussian     params: mean, std_dev, min, max
//	type: exponential  params: mean
//	type: empirical    bins:   {count: weight, ...}
type CargoSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
	Bins   map[string]float64 `yaml:"bins,omitempty"`
}

// CountSampler generates container counts.
type CountSampler interface {
	// Sample returns a non-negative count.
	Sample(rng *rand.Rand) int
}

// ConstantCount always returns the same count.
type ConstantCount struct {
	value int
}

func (s *ConstantCount) Sample(_ *rand.Rand) int {
	return s.value
}

// UniformCount draws uniformly from [min, max].
type UniformCount struct {
	min, max int
}

func (s *UniformCount) Sample(rng *rand.Rand) int {
	return s.min + rng.Intn(s.max-s.min+1)
}

// GaussianCount produces clamped Gaussian counts.
type GaussianCount struct {
	mean, stdDev float64
	min, max     int
}

func (s *GaussianCount) Sample(rng *rand.Rand) int {
	if s.min == s.max {
		return s.min
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(float64(s.max), math.Max(float64(s.min), val))
	return int(math.Round(clamped))
}

// ExponentialCount produces exponentially-distributed counts.
type ExponentialCount struct {
	mean float64
}

func (s *ExponentialCount) Sample(rng *rand.Rand) int {
	return int(math.Round(math.Min(rng.ExpFloat64()*s.mean, MaxCargo)))
}

// EmpiricalCount samples from a weighted histogram using inverse CDF.
type EmpiricalCount struct {
	values []int     // sorted counts
	cdf    []float64 // cumulative probabilities, same length as values
}

// NewEmpiricalCount builds a sampler from count → weight. Weights are
// normalized; non-positive weights are dropped.
func NewEmpiricalCount(pdf map[int]float64) *EmpiricalCount {
	keys := make([]int, 0, len(pdf))
	total := 0.0
	for k, p := range pdf {
		if p > 0 {
			keys = append(keys, k)
			total += p
		}
	}
	sort.Ints(keys)

	values := make([]int, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		cumulative += pdf[k] / total
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}
	return &EmpiricalCount{values: values, cdf: cdf}
}

func (s *EmpiricalCount) Sample(rng *rand.Rand) int {
	if len(s.values) == 0 {
		return 0
	}
	if len(s.values) == 1 {
		return s.values[0]
	}
	idx := sort.SearchFloat64s(s.cdf, rng.Float64())
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return s.values[idx]
}

// MaxCargo bounds every container count a CargoSpec may produce.
const MaxCargo = 1 << 20

// requireParam checks that all required keys exist in a params map and hold
// finite values.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("cargo distribution requires parameter %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("cargo parameter %q must be finite, got %v", k, v)
		}
	}
	return nil
}

// countRange validates a [min, max] container range.
func countRange(kind string, lo, hi float64) (int, int, error) {
	if lo < 0 || hi < lo || hi > MaxCargo {
		return 0, 0, fmt.Errorf("%s cargo needs 0 <= min <= max <= %d, got [%v, %v]", kind, MaxCargo, lo, hi)
	}
	return int(lo), int(hi), nil
}

// NewCountSampler creates a CountSampler from a CargoSpec.
func NewCountSampler(spec CargoSpec) (CountSampler, error) {
	p := spec.Params
	switch spec.Type {
	case "constant":
		if err := requireParam(p, "value"); err != nil {
			return nil, err
		}
		if p["value"] < 0 || p["value"] > MaxCargo {
			return nil, fmt.Errorf("constant cargo must be in [0, %d], got %v", MaxCargo, p["value"])
		}
		return &ConstantCount{value: int(p["value"])}, nil

	case "uniform":
		if err := requireParam(p, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi, err := countRange("uniform", p["min"], p["max"])
		if err != nil {
			return nil, err
		}
		return &UniformCount{min: lo, max: hi}, nil

	case "gaussian":
		if err := requireParam(p, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		if p["std_dev"] < 0 {
			return nil, fmt.Errorf("gaussian cargo std_dev must be non-negative, got %v", p["std_dev"])
		}
		lo, hi, err := countRange("gaussian", p["min"], p["max"])
		if err != nil {
			return nil, err
		}
		return &GaussianCount{mean: p["mean"], stdDev: p["std_dev"], min: lo, max: hi}, nil

	case "exponential":
		if err := requireParam(p, "mean"); err != nil {
			return nil, err
		}
		if p["mean"] <= 0 || p["mean"] > MaxCargo {
			return nil, fmt.Errorf("exponential cargo mean must be in (0, %d], got %v", MaxCargo, p["mean"])
		}
		return &ExponentialCount{mean: p["mean"]}, nil

	case "empirical":
		pdf := make(map[int]float64, len(spec.Bins))
		for k, v := range spec.Bins {
			count, err := strconv.Atoi(k)
			if err != nil || count < 0 || count > MaxCargo {
				return nil, fmt.Errorf("empirical cargo bin %q is not an integer in [0, %d]", k, MaxCargo)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("empirical cargo bin %q has non-finite weight %v", k, v)
			}
			if v > 0 {
				pdf[count] = v
			}
		}
		if len(pdf) == 0 {
			return nil, fmt.Errorf("empirical cargo distribution has no bins with positive weight")
		}
		return NewEmpiricalCount(pdf), nil

	default:
		return nil, fmt.Errorf("unknown cargo distribution type %q", spec.Type)
	}
}
