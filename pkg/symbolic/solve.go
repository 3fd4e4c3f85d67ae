package symbolic

// SolveLinear solves the simultaneous equations eqs == 0 for the given
// unknowns by Cramer's rule. The equations must be linear in the unknowns;
// coefficients are recovered by differentiation. A nil map is returned when
// the system is singular (or otherwise has no unique solution).
func SolveLinear(eqs []Expr, unknowns []*Sym) map[string]Expr {
	n := len(unknowns)
	if len(eqs) != n || n == 0 {
		return nil
	}

	zero := make(map[string]Expr, n)
	for _, u := range unknowns {
		zero[u.Name()] = N(0)
	}

	a := make([][]Expr, n)
	b := make([]Expr, n)
	for i, eq := range eqs {
		a[i] = make([]Expr, n)
		for j, u := range unknowns {
			a[i][j] = eq.Diff(u.Name()).Simplify()
		}
		// The constant part of the residual; moved to the right-hand side.
		b[i] = MulOf(N(-1), eq.Sub(zero)).Simplify()
	}

	d := Expand(Det(a))
	if IsZero(d) {
		return nil
	}
	dInv := PowOf(d, N(-1))

	sol := make(map[string]Expr, n)
	for j, u := range unknowns {
		aj := make([][]Expr, n)
		for i := range a {
			aj[i] = make([]Expr, n)
			copy(aj[i], a[i])
			aj[i][j] = b[i]
		}
		sol[u.Name()] = Together(MulOf(Expand(Det(aj)), dInv))
	}
	return sol
}

// Det computes the determinant of a square expression matrix by cofactor
// expansion along the first row.
func Det(m [][]Expr) Expr {
	n := len(m)
	if n == 1 {
		return m[0][0]
	}
	var terms []Expr
	for j := 0; j < n; j++ {
		if IsZero(m[0][j]) {
			continue
		}
		sub := make([][]Expr, 0, n-1)
		for i := 1; i < n; i++ {
			row := make([]Expr, 0, n-1)
			for k := 0; k < n; k++ {
				if k == j {
					continue
				}
				row = append(row, m[i][k])
			}
			sub = append(sub, row)
		}
		sign := int64(1)
		if j%2 == 1 {
			sign = -1
		}
		terms = append(terms, MulOf(N(sign), m[0][j], Det(sub)))
	}
	if len(terms) == 0 {
		return N(0)
	}
	return AddOf(terms...)
}

// Roots returns the roots of e treated as a polynomial in the named
// variable. Closed forms are produced for degrees one and two; ok is false
// for higher degrees, where no closed form is attempted.
func Roots(e Expr, varName string) (roots []Expr, ok bool) {
	coeffs := PolyCoeffs(e, varName)
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	coeff := func(d int) Expr {
		if c, ok := coeffs[d]; ok {
			return c
		}
		return N(0)
	}

	switch deg {
	case 0:
		return nil, true
	case 1:
		r := Together(MulOf(N(-1), coeff(0), PowOf(coeff(1), N(-1))))
		return []Expr{r}, true
	case 2:
		a, b, c := coeff(2), coeff(1), coeff(0)
		disc := Expand(AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))).Simplify()
		sq := Sqrt(disc)
		inv2a := PowOf(MulOf(N(2), a), N(-1))
		r1 := Together(MulOf(AddOf(MulOf(N(-1), b), sq), inv2a))
		r2 := Together(MulOf(AddOf(MulOf(N(-1), b), MulOf(N(-1), sq)), inv2a))
		return []Expr{r1, r2}, true
	}
	return nil, false
}
