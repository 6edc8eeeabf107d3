package workload

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonSampler_MeanIAT_MatchesMean(t *testing.T) {
	// GIVEN a Poisson sampler with mean interval 300
	rng := rand.New(rand.NewSource(42))
	sampler := NewArrivalSampler(ArrivalSpec{Process: "poisson"}, 300)

	// WHEN 10000 IATs are sampled
	n := 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += sampler.SampleIAT(rng)
	}
	meanIAT := sum / float64(n)

	// THEN mean IAT ≈ 300 (within 5%)
	if math.Abs(meanIAT-300)/300 > 0.05 {
		t.Errorf("mean IAT = %.1f, want ≈ 300 (within 5%%)", meanIAT)
	}
}

func TestGammaSampler_HighCV_ProducesBurstierArrivals(t *testing.T) {
	// GIVEN a Gamma sampler with CV=3.5 and a Poisson sampler at same mean
	rng1 := rand.New(rand.NewSource(42))
	rng2 := rand.New(rand.NewSource(42))
	cv := 3.5
	gamma := NewArrivalSampler(ArrivalSpec{Process: "gamma", CV: &cv}, 300)
	poisson := NewArrivalSampler(ArrivalSpec{Process: "poisson"}, 300)

	// WHEN 10000 IATs sampled from each
	n := 10000
	gammaIATs := make([]float64, n)
	poissonIATs := make([]float64, n)
	for i := 0; i < n; i++ {
		gammaIATs[i] = gamma.SampleIAT(rng1)
		poissonIATs[i] = poisson.SampleIAT(rng2)
	}

	// THEN Gamma CV > 2.0 and Poisson CV ≈ 1.0
	gammaCV := coefficientOfVariation(gammaIATs)
	poissonCV := coefficientOfVariation(poissonIATs)
	if gammaCV < 2.0 {
		t.Errorf("gamma CV = %.2f, want > 2.0", gammaCV)
	}
	if poissonCV < 0.8 || poissonCV > 1.2 {
		t.Errorf("poisson CV = %.2f, want ≈ 1.0", poissonCV)
	}
}

func TestGammaSampler_MeanAndVariance_MatchTheoretical(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cv := 2.0
	sampler := NewArrivalSampler(ArrivalSpec{Process: "gamma", CV: &cv}, 100)

	n := 50000
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = sampler.SampleIAT(rng)
	}
	// Theoretical: mean = 100, variance = mean² * CV²
	mean, variance := meanAndVariance(vals)
	expectedVar := 100.0 * 100.0 * cv * cv
	if math.Abs(mean-100)/100 > 0.05 {
		t.Errorf("gamma mean = %.1f, want ≈ 100 (within 5%%)", mean)
	}
	if math.Abs(variance-expectedVar)/expectedVar > 0.15 {
		t.Errorf("gamma variance = %.0f, want ≈ %.0f (within 15%%)", variance, expectedVar)
	}
}

func TestWeibullSampler_MeanIAT_MatchesMean(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cv := 1.5
	sampler := NewArrivalSampler(ArrivalSpec{Process: "weibull", CV: &cv}, 300)

	n := 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += sampler.SampleIAT(rng)
	}
	meanIAT := sum / float64(n)
	// Weibull mean should match target within 10%
	if math.Abs(meanIAT-300)/300 > 0.10 {
		t.Errorf("weibull mean IAT = %.1f, want ≈ 300 (within 10%%)", meanIAT)
	}
}

func TestSamplers_NeverNegative(t *testing.T) {
	cv := 0.5
	specs := []ArrivalSpec{
		{Process: "poisson"},
		{Process: "gamma", CV: &cv},
		{Process: "weibull", CV: &cv},
		{Process: "constant"},
	}
	for _, spec := range specs {
		t.Run(spec.Process, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			sampler := NewArrivalSampler(spec, 300)
			for i := 0; i < 5000; i++ {
				if iat := sampler.SampleIAT(rng); iat < 0 || math.IsNaN(iat) {
					t.Fatalf("IAT must be non-negative, got %v at iteration %d", iat, i)
				}
			}
		})
	}
}

func TestConstantSampler_ExactIntervals_IndependentOfSeed(t *testing.T) {
	sampler := NewArrivalSampler(ArrivalSpec{Process: "constant"}, 300)
	rng1 := rand.New(rand.NewSource(1))
	rng2 := rand.New(rand.NewSource(999))

	for i := 0; i < 50; i++ {
		assert.Equal(t, 300.0, sampler.SampleIAT(rng1))
		assert.Equal(t, 300.0, sampler.SampleIAT(rng2))
	}
}

func TestSource_SameSeedSameStream(t *testing.T) {
	sampler := NewArrivalSampler(ArrivalSpec{Process: "poisson"}, 300)
	a := Source(sampler, rand.New(rand.NewSource(7)))
	b := Source(sampler, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a(), b())
	}
}

func TestArrivalSpec_Validate(t *testing.T) {
	zero := 0.0
	neg := -1.0
	ok := 2.0
	tests := []struct {
		name    string
		spec    ArrivalSpec
		wantErr bool
	}{
		{"poisson", ArrivalSpec{Process: "poisson"}, false},
		{"gamma with cv", ArrivalSpec{Process: "gamma", CV: &ok}, false},
		{"constant", ArrivalSpec{Process: "constant"}, false},
		{"unknown process", ArrivalSpec{Process: "bursty"}, true},
		{"empty process", ArrivalSpec{}, true},
		{"zero cv", ArrivalSpec{Process: "weibull", CV: &zero}, true},
		{"negative cv", ArrivalSpec{Process: "gamma", CV: &neg}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestWeibullSampler_ZeroUniform_NoOverflow verifies that clamping u=0 to
// SmallestNonzeroFloat64 produces a finite result.
func TestWeibullSampler_ZeroUniform_NoOverflow(t *testing.T) {
	s := &WeibullSampler{shape: 1.0, scale: 1000.0}
	u := math.SmallestNonzeroFloat64
	sample := s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
	if math.IsInf(sample, 0) {
		t.Error("sample should not be +Inf for SmallestNonzeroFloat64")
	}
	if sample <= 0 {
		t.Error("sample should be positive")
	}
}

// coefficientOfVariation computes std_dev / mean.
func coefficientOfVariation(vals []float64) float64 {
	mean, variance := meanAndVariance(vals)
	return math.Sqrt(variance) / mean
}

func meanAndVariance(vals []float64) (float64, float64) {
	n := float64(len(vals))
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / n
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return mean, sumSq / n
}
