package symbolic

import (
	"math/big"
	"sort"
)

// Fraction decomposes e into a numerator and denominator pair with negative
// powers lifted into the denominator and common factors cancelled. The
// returned pair satisfies e == num/den.
func Fraction(e Expr) (num, den Expr) {
	num, den = fraction(e.Simplify())
	return cancel(num, den)
}

func fraction(e Expr) (Expr, Expr) {
	switch v := e.(type) {
	case *Num:
		r := v.val
		if r.IsInt() {
			return v, N(1)
		}
		return &Num{val: new(big.Rat).SetInt(r.Num())}, &Num{val: new(big.Rat).SetInt(r.Denom())}
	case *Sym:
		return v, N(1)
	case *Pow:
		en, ok := v.exp.(*Num)
		if !ok {
			return v, N(1)
		}
		nb, db := fraction(v.base.Simplify())
		if en.val.Sign() < 0 {
			k := numFromRat(new(big.Rat).Neg(en.val))
			return PowOf(db, k), PowOf(nb, k)
		}
		return PowOf(nb, en), PowOf(db, en)
	case *Mul:
		numAcc, denAcc := Expr(N(1)), Expr(N(1))
		for _, f := range v.factors {
			nf, df := fraction(f)
			numAcc = MulOf(numAcc, nf)
			denAcc = MulOf(denAcc, df)
		}
		return numAcc, denAcc
	case *Add:
		numAcc, denAcc := Expr(N(0)), Expr(N(1))
		for _, t := range v.terms {
			nt, dt := fraction(t)
			numAcc, denAcc = addFractions(numAcc, denAcc, nt, dt)
		}
		return numAcc, denAcc
	}
	return e, N(1)
}

// addFractions combines n1/d1 + n2/d2 over a common denominator, keeping the
// denominator shared when the two already agree.
func addFractions(n1, d1, n2, d2 Expr) (Expr, Expr) {
	if d1.Equal(d2) {
		return AddOf(n1, n2), d1
	}
	return AddOf(MulOf(n1, d2), MulOf(n2, d1)), MulOf(d1, d2)
}

// factorization is a product decomposed into a rational coefficient and a
// map of base factors with rational exponents.
type factorization struct {
	coeff *big.Rat
	bases map[string]Expr
	exps  map[string]*big.Rat
	keys  []string
}

func factorize(e Expr) *factorization {
	f := &factorization{
		coeff: big.NewRat(1, 1),
		bases: make(map[string]Expr),
		exps:  make(map[string]*big.Rat),
	}
	var walk func(Expr)
	walk = func(x Expr) {
		switch v := x.(type) {
		case *Num:
			f.coeff.Mul(f.coeff, v.val)
		case *Mul:
			for _, fac := range v.factors {
				walk(fac)
			}
		default:
			base, exp := x, ratOne
			if p, ok := x.(*Pow); ok {
				if en, ok := p.exp.(*Num); ok {
					base, exp = p.base, en.val
				}
			}
			if a, ok := base.(*Add); ok {
				// Pull the monomial content out of a sum so factors shared
				// by every term can cancel against the other side.
				if content, rest := addContent(a); content != nil {
					walk(PowOf(content, numFromRat(exp)))
					base = rest
				}
			}
			key := base.String()
			if _, seen := f.exps[key]; !seen {
				f.bases[key] = base
				f.exps[key] = new(big.Rat)
				f.keys = append(f.keys, key)
			}
			f.exps[key].Add(f.exps[key], exp)
		}
	}
	walk(e.Simplify())
	sort.Strings(f.keys)
	return f
}

func (f *factorization) build() Expr {
	var factors []Expr
	if f.coeff.Cmp(ratOne) != 0 {
		factors = append(factors, numFromRat(f.coeff))
	}
	for _, k := range f.keys {
		exp := f.exps[k]
		if exp.Sign() == 0 {
			continue
		}
		if exp.Cmp(ratOne) == 0 {
			factors = append(factors, f.bases[k])
			continue
		}
		factors = append(factors, PowOf(f.bases[k], numFromRat(exp)))
	}
	if len(factors) == 0 {
		return N(1)
	}
	return MulOf(factors...)
}

// addContent splits a sum into its monomial content, the product of factors
// appearing in every term with the lowest shared exponent, and the reduced
// sum. A nil content means the terms share nothing.
func addContent(a *Add) (content, rest Expr) {
	var shared map[string]*big.Rat
	bases := make(map[string]Expr)
	for i, t := range a.terms {
		ft := factorize(t)
		if i == 0 {
			shared = make(map[string]*big.Rat, len(ft.keys))
			for _, k := range ft.keys {
				if ft.exps[k].Sign() > 0 {
					shared[k] = new(big.Rat).Set(ft.exps[k])
					bases[k] = ft.bases[k]
				}
			}
			continue
		}
		for k, e := range shared {
			te, ok := ft.exps[k]
			if !ok || te.Sign() <= 0 {
				delete(shared, k)
				continue
			}
			if te.Cmp(e) < 0 {
				e.Set(te)
			}
		}
		if len(shared) == 0 {
			return nil, a
		}
	}
	if len(shared) == 0 {
		return nil, a
	}

	var keys []string
	for k := range shared {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var cf, inv []Expr
	for _, k := range keys {
		cf = append(cf, PowOf(bases[k], numFromRat(shared[k])))
		inv = append(inv, PowOf(bases[k], numFromRat(new(big.Rat).Neg(shared[k]))))
	}
	content = MulOf(cf...)
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = MulOf(append([]Expr{t}, inv...)...)
	}
	return content, AddOf(terms...)
}

// cancel removes factors common to num and den and normalizes the rational
// coefficient into the numerator.
func cancel(num, den Expr) (Expr, Expr) {
	num, den = num.Simplify(), den.Simplify()
	if IsZero(den) || IsZero(num) {
		return num, den
	}
	if num.Equal(den) {
		return N(1), N(1)
	}
	fn, fd := factorize(num), factorize(den)
	for _, k := range fd.keys {
		ne, ok := fn.exps[k]
		if !ok {
			continue
		}
		de := fd.exps[k]
		m := ne
		if de.Cmp(ne) < 0 {
			m = de
		}
		if m.Sign() <= 0 {
			continue
		}
		shared := new(big.Rat).Set(m)
		ne.Sub(ne, shared)
		de.Sub(de, shared)
	}
	if fd.coeff.Sign() != 0 {
		fn.coeff.Quo(fn.coeff, fd.coeff)
		fd.coeff.SetInt64(1)
	}
	num, den = fn.build(), fd.build()
	if negLeading(den) {
		num, den = negate(num), negate(den)
	}
	return num, den
}

// negLeading reports whether every additive term of e carries a negative
// coefficient.
func negLeading(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.val.Sign() < 0
	case *Add:
		for _, t := range v.terms {
			if !negLeading(t) {
				return false
			}
		}
		return len(v.terms) > 0
	case *Mul:
		c, _ := splitCoeff(v)
		return c.Sign() < 0
	}
	return false
}

// negate flips the sign of e, distributing over sums so the terms keep their
// flat form.
func negate(e Expr) Expr {
	if a, ok := e.(*Add); ok {
		terms := make([]Expr, len(a.terms))
		for i, t := range a.terms {
			terms[i] = MulOf(N(-1), t)
		}
		return AddOf(terms...)
	}
	return MulOf(N(-1), e)
}

// Together rewrites e as a single fraction num*den^-1 with common factors
// cancelled.
func Together(e Expr) Expr {
	num, den := Fraction(e)
	if IsOne(den) {
		return num
	}
	return MulOf(num, PowOf(den, N(-1)))
}

// Equiv reports whether a and b denote the same rational function, comparing
// cross-multiplied fraction forms after expansion.
func Equiv(a, b Expr) bool {
	na, da := Fraction(a)
	nb, db := Fraction(b)
	diff := AddOf(MulOf(na, db), MulOf(N(-1), nb, da))
	return IsZero(Expand(diff))
}
