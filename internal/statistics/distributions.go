package statistics

import "math"

const (
	maxIterations = 300
	convergence   = 3e-14
	tiny          = 1e-300
)

// NormalCDF is the standard normal cumulative distribution function.
func NormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// NormalQuantile is the inverse of NormalCDF for p in (0, 1).
func NormalQuantile(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// ChiSquareSF returns P(X > x) for X chi-square distributed with dof
// degrees of freedom.
func ChiSquareSF(x float64, dof int) float64 {
	if x <= 0 {
		return 1
	}
	return upperGamma(float64(dof)/2, x/2)
}

// StudentTTwoTailed returns P(|T| > |t|) for T Student-t distributed with
// dof degrees of freedom.
func StudentTTwoTailed(t float64, dof int) float64 {
	if dof <= 0 {
		return 1
	}
	if math.IsInf(t, 0) {
		return 0
	}
	v := float64(dof)
	return incompleteBeta(v/2, 0.5, v/(v+t*t))
}

// upperGamma is the regularized upper incomplete gamma function Q(a, x).
func upperGamma(a, x float64) float64 {
	if x < a+1 {
		return 1 - lowerGammaSeries(a, x)
	}
	return upperGammaFraction(a, x)
}

func lowerGammaSeries(a, x float64) float64 {
	lg, _ := math.Lgamma(a)
	sum := 1 / a
	term := sum
	ap := a
	for range maxIterations {
		ap++
		term *= x / ap
		sum += term
		if math.Abs(term) < math.Abs(sum)*convergence {
			break
		}
	}
	return sum * math.Exp(-x+a*math.Log(x)-lg)
}

// upperGammaFraction evaluates Q(a, x) with Lentz's continued fraction.
func upperGammaFraction(a, x float64) float64 {
	lg, _ := math.Lgamma(a)
	b := x + 1 - a
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i <= maxIterations; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < convergence {
			break
		}
	}
	return math.Exp(-x+a*math.Log(x)-lg) * h
}

// incompleteBeta is the regularized incomplete beta function I_x(a, b).
func incompleteBeta(a, b, x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	front := math.Exp(lab - la - lb + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaFraction(a, b, x) / a
	}
	return 1 - front*betaFraction(b, a, 1-x)/b
}

func betaFraction(a, b, x float64) float64 {
	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d
	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < convergence {
			break
		}
	}
	return h
}
