package symbolic

import "sort"

// Expand distributes products over sums and multiplies out small integral
// powers of sums, leaving other powers intact.
func Expand(e Expr) Expr {
	switch v := e.Simplify().(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Expand(t)
		}
		return AddOf(terms...)
	case *Mul:
		acc := Expr(N(1))
		for _, f := range v.factors {
			acc = distribute(acc, Expand(f))
		}
		return acc
	case *Pow:
		base := Expand(v.base)
		en, ok := v.exp.(*Num)
		if !ok || !en.IsInt() || !en.val.Num().IsInt64() {
			return PowOf(base, v.exp)
		}
		k := en.val.Num().Int64()
		if _, isAdd := base.(*Add); !isAdd || k <= 1 || k > 16 {
			return PowOf(base, v.exp)
		}
		acc := base
		for i := int64(1); i < k; i++ {
			acc = distribute(acc, base)
		}
		return acc
	default:
		return v
	}
}

func distribute(a, b Expr) Expr {
	at, bt := termsOf(a), termsOf(b)
	var out []Expr
	for _, ta := range at {
		for _, tb := range bt {
			out = append(out, MulOf(ta, tb))
		}
	}
	return AddOf(out...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// Degree returns the degree of e in the named variable, treating e as a
// polynomial. Factors in which the variable only appears inside an
// unexpandable power contribute degree zero.
func Degree(e Expr, varName string) int {
	sym := S(varName)
	switch v := e.Simplify().(type) {
	case *Sym:
		if v.name == sym.name {
			return 1
		}
	case *Pow:
		if b, ok := v.base.(*Sym); ok && b.name == sym.name {
			if en, ok := v.exp.(*Num); ok && en.IsInt() && en.val.Num().IsInt64() {
				return int(en.val.Num().Int64())
			}
		}
	case *Mul:
		deg := 0
		for _, f := range v.factors {
			deg += Degree(f, varName)
		}
		return deg
	case *Add:
		deg := 0
		for _, t := range v.terms {
			if d := Degree(t, varName); d > deg {
				deg = d
			}
		}
		return deg
	}
	return 0
}

// PolyCoeffs expands e and collects the coefficient of each power of the
// named variable. Zero coefficients are omitted.
func PolyCoeffs(e Expr, varName string) map[int]Expr {
	sym := S(varName)
	coeffs := make(map[int]Expr)
	for _, t := range termsOf(Expand(e)) {
		deg := Degree(t, varName)
		c := t
		if deg != 0 {
			c = MulOf(t, PowOf(sym, N(int64(-deg))))
		}
		if prev, ok := coeffs[deg]; ok {
			c = AddOf(prev, c)
		}
		coeffs[deg] = c
	}
	for d, c := range coeffs {
		if IsZero(c) {
			delete(coeffs, d)
		}
	}
	return coeffs
}

// FreeSymbols returns the sorted names of the symbols appearing in e.
func FreeSymbols(e Expr) []string {
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(x Expr) {
		switch v := x.(type) {
		case *Sym:
			seen[v.name] = true
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			walk(v.base)
			walk(v.exp)
		}
	}
	walk(e)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
