package ode

import (
	"context"
	"fmt"
	"math"
)

// Func returns dy/dt at (t, y). It must not retain or modify y.
type Func func(t float64, y []float64) []float64

// Options controls the integrator.
type Options struct {
	RTol     float64 // relative tolerance (default 1e-3)
	ATol     float64 // absolute tolerance (default 1e-6)
	MaxSteps int     // accepted+rejected step budget (default 100000)
}

// DefaultOptions returns the RK45 defaults.
func DefaultOptions() Options {
	return Options{RTol: 1e-3, ATol: 1e-6, MaxSteps: 100000}
}

const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 10.0
	errExp    = -1.0 / 5.0
)

// Dormand–Prince tableau.
var (
	rkC = [6]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1}
	rkA = [6][5]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
	}
	rkB = [6]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84}
	rkE = [7]float64{-71.0 / 57600, 0, 71.0 / 16695, -71.0 / 1920, 17253.0 / 339200, -22.0 / 525, 1.0 / 40}
	rkP = [7][4]float64{
		{1, -8048581381.0 / 2820520608, 8663915743.0 / 2820520608, -12715105075.0 / 11282082432},
		{0, 0, 0, 0},
		{0, 131558114200.0 / 32700410799, -68118460800.0 / 10900136933, 87487479700.0 / 32700410799},
		{0, -1754552775.0 / 470086768, 14199869525.0 / 1410260304, -10690763975.0 / 1880347072},
		{0, 127303824393.0 / 49829197408, -318862633887.0 / 49829197408, 701980252875.0 / 199316789632},
		{0, -282668133.0 / 205662961, 2019193451.0 / 616988883, -1453857185.0 / 822651844},
		{0, 40617522.0 / 29380423, -110615467.0 / 29380423, 69997945.0 / 29380423},
	}
)

func rmsNorm(v, scale []float64) float64 {
	var s float64
	for i := range v {
		q := v[i] / scale[i]
		s += q * q
	}

	return math.Sqrt(s / float64(len(v)))
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}

type stepper struct {
	f          Func
	opts       Options
	n          int
	direction  float64
	t, tBound  float64
	y, fy      []float64
	hAbs       float64
	k          [7][]float64
	tOld, hOld float64
	yOld       []float64
}

func (s *stepper) call(t float64, y []float64) ([]float64, error) {
	dy := s.f(t, y)
	if len(dy) != s.n || !finite(dy) {
		return nil, fmt.Errorf("t=%g: %w", t, ErrNonFinite)
	}

	return dy, nil
}

func (s *stepper) initialStep() (float64, error) {
	if s.t == s.tBound {
		return 0, nil
	}
	scale := make([]float64, s.n)
	for i := range scale {
		scale[i] = s.opts.ATol + math.Abs(s.y[i])*s.opts.RTol
	}
	d0 := rmsNorm(s.y, scale)
	d1 := rmsNorm(s.fy, scale)
	h0 := 0.01 * d0 / d1
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	}
	interval := math.Abs(s.tBound - s.t)
	h0 = math.Min(h0, interval)
	y1 := make([]float64, s.n)
	for i := range y1 {
		y1[i] = s.y[i] + h0*s.direction*s.fy[i]
	}
	f1, err := s.call(s.t+h0*s.direction, y1)
	if err != nil {
		return 0, err
	}
	diff := make([]float64, s.n)
	for i := range diff {
		diff[i] = f1[i] - s.fy[i]
	}
	d2 := rmsNorm(diff, scale) / h0
	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/5.0)
	}

	return math.Min(math.Min(100*h0, h1), interval), nil
}

// step advances by one accepted step.
func (s *stepper) step() error {
	minStep := 10 * math.Abs(math.Nextafter(s.t, s.direction*math.Inf(1))-s.t)
	hAbs := s.hAbs
	rejected := false
	for {
		if hAbs < minStep {
			return fmt.Errorf("t=%g: %w", s.t, ErrStepSize)
		}
		h := hAbs * s.direction
		tNew := s.t + h
		if s.direction*(tNew-s.tBound) > 0 {
			tNew = s.tBound
		}
		h = tNew - s.t
		hAbs = math.Abs(h)

		s.k[0] = s.fy
		for st := 1; st < 6; st++ {
			yi := make([]float64, s.n)
			for i := range yi {
				acc := 0.0
				for j := 0; j < st; j++ {
					acc += rkA[st][j] * s.k[j][i]
				}
				yi[i] = s.y[i] + h*acc
			}
			kk, err := s.call(s.t+rkC[st]*h, yi)
			if err != nil {
				return err
			}
			s.k[st] = kk
		}
		yNew := make([]float64, s.n)
		for i := range yNew {
			acc := 0.0
			for j := 0; j < 6; j++ {
				acc += rkB[j] * s.k[j][i]
			}
			yNew[i] = s.y[i] + h*acc
		}
		fNew, err := s.call(tNew, yNew)
		if err != nil {
			return err
		}
		s.k[6] = fNew

		scale := make([]float64, s.n)
		errv := make([]float64, s.n)
		for i := range scale {
			scale[i] = s.opts.ATol + math.Max(math.Abs(s.y[i]), math.Abs(yNew[i]))*s.opts.RTol
			acc := 0.0
			for j := 0; j < 7; j++ {
				acc += rkE[j] * s.k[j][i]
			}
			errv[i] = h * acc
		}
		errNorm := rmsNorm(errv, scale)

		if errNorm < 1 {
			factor := maxFactor
			if errNorm > 0 {
				factor = math.Min(maxFactor, safety*math.Pow(errNorm, errExp))
			}
			if rejected {
				factor = math.Min(1, factor)
			}
			s.tOld, s.hOld = s.t, h
			s.yOld = s.y
			s.t, s.y, s.fy = tNew, yNew, fNew
			s.hAbs = hAbs * factor

			return nil
		}
		hAbs *= math.Max(minFactor, safety*math.Pow(errNorm, errExp))
		rejected = true
	}
}

// dense evaluates the quartic interpolant of the last step at t.
func (s *stepper) dense(t float64) []float64 {
	x := (t - s.tOld) / s.hOld
	p := [4]float64{x, x * x, x * x * x, x * x * x * x}
	out := make([]float64, s.n)
	for i := range out {
		acc := 0.0
		for j := 0; j < 7; j++ {
			var q float64
			for c := 0; c < 4; c++ {
				q += rkP[j][c] * p[c]
			}
			acc += s.k[j][i] * q
		}
		out[i] = s.yOld[i] + s.hOld*acc
	}

	return out
}

// Solve integrates dy/dt = f from t0 to t1 starting at y0 and returns the
// solution at every tEval, in order. tEval must be monotonic in the
// direction of integration and lie within [t0, t1].
func Solve(ctx context.Context, f Func, t0, t1 float64, y0, tEval []float64, opts Options) ([][]float64, error) {
	if opts.RTol <= 0 {
		opts.RTol = DefaultOptions().RTol
	}
	if opts.ATol <= 0 {
		opts.ATol = DefaultOptions().ATol
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultOptions().MaxSteps
	}
	direction := 1.0
	if t1 < t0 {
		direction = -1
	}
	lo, hi := math.Min(t0, t1), math.Max(t0, t1)
	for i, te := range tEval {
		if te < lo || te > hi {
			return nil, fmt.Errorf("Solve: tEval[%d]=%g: %w", i, te, ErrEvalRange)
		}
		if i > 0 && direction*(te-tEval[i-1]) < 0 {
			return nil, fmt.Errorf("Solve: tEval[%d]=%g: %w", i, te, ErrEvalOrder)
		}
	}

	s := &stepper{f: f, opts: opts, n: len(y0), direction: direction, t: t0, tBound: t1}
	s.y = append([]float64(nil), y0...)
	fy, err := s.call(t0, s.y)
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}
	s.fy = fy
	if s.hAbs, err = s.initialStep(); err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}

	out := make([][]float64, 0, len(tEval))
	next := 0
	// points at t0 need no step
	for next < len(tEval) && tEval[next] == t0 {
		out = append(out, append([]float64(nil), s.y...))
		next++
	}
	for steps := 0; next < len(tEval); steps++ {
		if steps >= opts.MaxSteps {
			return nil, fmt.Errorf("Solve: %w", ErrMaxSteps)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.step(); err != nil {
			return nil, fmt.Errorf("Solve: %w", err)
		}
		for next < len(tEval) && direction*(tEval[next]-s.t) <= 0 {
			if tEval[next] == s.t {
				out = append(out, append([]float64(nil), s.y...))
			} else {
				out = append(out, s.dense(tEval[next]))
			}
			next++
		}
	}

	return out, nil
}
