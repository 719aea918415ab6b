package detector

import "math"

// Bayesian online changepoint detection with a constant hazard rate and a
// Normal-Gamma conjugate prior over segment mean and precision, giving a
// Student-t predictive per run length.
const (
	cpHazard = 1.0 / 100.0
	cpFloor  = 1e-12
)

type normalGamma struct {
	mu    float64
	kappa float64
	alpha float64
	beta  float64
}

// predictive evaluates the Student-t posterior predictive density at x.
func (p normalGamma) predictive(x float64) float64 {
	df := 2 * p.alpha
	scale2 := p.beta * (p.kappa + 1) / (p.alpha * p.kappa)
	z2 := (x - p.mu) * (x - p.mu) / scale2
	lg1, _ := math.Lgamma((df + 1) / 2)
	lg2, _ := math.Lgamma(df / 2)
	logPdf := lg1 - lg2 - 0.5*math.Log(df*math.Pi*scale2) - (df+1)/2*math.Log1p(z2/df)
	pdf := math.Exp(logPdf)
	if pdf < cpFloor || math.IsNaN(pdf) {
		return cpFloor
	}
	return pdf
}

// update folds observation x into the sufficient statistics.
func (p normalGamma) update(x float64) normalGamma {
	return normalGamma{
		mu:    (p.kappa*p.mu + x) / (p.kappa + 1),
		kappa: p.kappa + 1,
		alpha: p.alpha + 0.5,
		beta:  p.beta + p.kappa*(x-p.mu)*(x-p.mu)/(2*(p.kappa+1)),
	}
}

// Changepoints locates structural breaks in the series and returns their
// sample indices in ascending order. With smooth set, the series is
// block-averaged in groups of five first, and indices refer to the
// smoothed series. A break is reported at the sample where the most
// probable run length collapses. Constant or near-empty series yield no
// changepoints.
func Changepoints(series []float64, smooth bool) []int {
	data := series
	if smooth {
		data = Smooth(series, 5)
	}
	if len(data) < 3 {
		return nil
	}

	// Standardize so the unit-scale prior fits any price level.
	mean, std := meanStd(data)
	if std == 0 {
		return nil
	}
	prior := normalGamma{mu: 0, kappa: 1, alpha: 1, beta: 1}

	runProb := []float64{1}
	params := []normalGamma{prior}
	var changepoints []int
	prevArgmax := 0

	for t, raw := range data {
		x := (raw - mean) / std

		pred := make([]float64, len(params))
		for r, p := range params {
			pred[r] = p.predictive(x)
		}

		next := make([]float64, len(runProb)+1)
		for r, rp := range runProb {
			next[r+1] = rp * pred[r] * (1 - cpHazard)
			next[0] += rp * pred[r] * cpHazard
		}
		total := 0.0
		for _, v := range next {
			total += v
		}
		if total == 0 {
			return changepoints
		}
		for i := range next {
			next[i] /= total
		}

		argmax := 0
		for i, v := range next {
			if v > next[argmax] {
				argmax = i
			}
		}
		// A break shows as a collapse of the MAP run length; ordinary
		// growth only moves it by one per step.
		if prevArgmax-argmax >= 5 {
			changepoints = append(changepoints, t)
		}
		prevArgmax = argmax

		nextParams := make([]normalGamma, len(params)+1)
		nextParams[0] = prior
		for r, p := range params {
			nextParams[r+1] = p.update(x)
		}
		runProb = next
		params = nextParams
	}
	return changepoints
}

func meanStd(series []float64) (mean, std float64) {
	n := float64(len(series))
	for _, v := range series {
		mean += v
	}
	mean /= n
	for _, v := range series {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / n)
	return mean, std
}
