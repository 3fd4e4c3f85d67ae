// Package symbolic implements the exact-arithmetic expression engine used by
// the small-signal analyses. Expressions are immutable trees of Num, Sym, Add,
// Mul and Pow nodes; Simplify returns a canonical form in which like monomials
// are collected and repeated factors are merged into powers.
package symbolic

import (
	"math/big"
	"sort"
	"strings"
)

// Expr is a node of a symbolic expression tree.
type Expr interface {
	// Simplify returns the canonical form of the expression.
	Simplify() Expr
	// String renders the expression for display and for canonical ordering.
	String() string
	// Diff differentiates with respect to the named symbol.
	Diff(varName string) Expr
	// Sub performs a simultaneous, non-iterative substitution: occurrences of
	// each named symbol are replaced once, and replacements are not rescanned.
	Sub(subs map[string]Expr) Expr
	// Eval reduces the expression to an exact rational if possible.
	Eval() (*Num, bool)
	// Equal reports structural equality of the simplified forms.
	Equal(other Expr) bool
}

var (
	ratZero = big.NewRat(0, 1)
	ratOne  = big.NewRat(1, 1)
)

// Num is an exact rational constant.
type Num struct {
	val *big.Rat
}

// N returns an integer constant.
func N(v int64) *Num { return &Num{val: big.NewRat(v, 1)} }

// F returns the rational constant p/q.
func F(p, q int64) *Num { return &Num{val: big.NewRat(p, q)} }

// NFloat converts a float to an exact rational constant.
func NFloat(v float64) *Num {
	r := new(big.Rat)
	r.SetFloat64(v)
	return &Num{val: r}
}

func numFromRat(r *big.Rat) *Num {
	c := new(big.Rat)
	c.Set(r)
	return &Num{val: c}
}

// Rat returns a copy of the underlying rational value.
func (n *Num) Rat() *big.Rat {
	r := new(big.Rat)
	r.Set(n.val)
	return r
}

// IsZero reports whether the constant is exactly zero.
func (n *Num) IsZero() bool { return n.val.Sign() == 0 }

// IsOne reports whether the constant is exactly one.
func (n *Num) IsOne() bool { return n.val.Cmp(ratOne) == 0 }

// IsInt reports whether the constant has denominator one.
func (n *Num) IsInt() bool { return n.val.IsInt() }

func (n *Num) Simplify() Expr { return n }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) Diff(varName string) Expr { return N(0) }

func (n *Num) Sub(subs map[string]Expr) Expr { return n }

func (n *Num) Eval() (*Num, bool) { return n, true }

func (n *Num) Equal(other Expr) bool {
	o, ok := other.Simplify().(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

// Sym is a named symbol. Instances are interned by the registry in
// symbols.go, so pointer identity tracks name identity.
type Sym struct {
	name string
	assm Assumptions
}

// Name returns the canonical (upper-case) symbol name.
func (s *Sym) Name() string { return s.name }

// Assumptions returns the assumptions recorded for the symbol.
func (s *Sym) Assumptions() Assumptions { return s.assm }

func (s *Sym) Simplify() Expr { return s }

func (s *Sym) String() string { return s.name }

func (s *Sym) Diff(varName string) Expr {
	if s.name == strings.ToUpper(varName) {
		return N(1)
	}
	return N(0)
}

func (s *Sym) Sub(subs map[string]Expr) Expr {
	if r, ok := subs[s.name]; ok {
		return r
	}
	return s
}

func (s *Sym) Eval() (*Num, bool) { return nil, false }

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.Simplify().(*Sym)
	return ok && s.name == o.name
}

// Add is a sum of terms.
type Add struct {
	terms []Expr
}

// AddOf returns the simplified sum of the given terms.
func AddOf(terms ...Expr) Expr {
	a := &Add{terms: terms}
	return a.Simplify()
}

// Terms returns the term list of the sum.
func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) Simplify() Expr {
	var flat []Expr
	for _, t := range a.terms {
		st := t.Simplify()
		if sa, ok := st.(*Add); ok {
			flat = append(flat, sa.terms...)
			continue
		}
		flat = append(flat, st)
	}

	// Collect like monomials by the canonical string of their non-numeric
	// part, accumulating rational coefficients exactly.
	type bucket struct {
		coeff *big.Rat
		rest  Expr
	}
	numAcc := new(big.Rat)
	buckets := make(map[string]*bucket)
	var keys []string
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			numAcc.Add(numAcc, n.val)
			continue
		}
		coeff, rest := splitCoeff(t)
		key := rest.String()
		b, seen := buckets[key]
		if !seen {
			b = &bucket{coeff: new(big.Rat), rest: rest}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.coeff.Add(b.coeff, coeff)
	}
	sort.Strings(keys)

	var out []Expr
	for _, k := range keys {
		b := buckets[k]
		switch {
		case b.coeff.Sign() == 0:
			// cancelled
		case b.coeff.Cmp(ratOne) == 0:
			out = append(out, b.rest)
		default:
			out = append(out, mulByRat(b.coeff, b.rest))
		}
	}
	if numAcc.Sign() != 0 {
		out = append(out, &Num{val: numAcc})
	}

	switch len(out) {
	case 0:
		return N(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// splitCoeff splits a simplified non-Num term into its leading rational
// coefficient and the remaining factor.
func splitCoeff(t Expr) (*big.Rat, Expr) {
	m, ok := t.(*Mul)
	if !ok || len(m.factors) == 0 {
		return ratOne, t
	}
	n, ok := m.factors[0].(*Num)
	if !ok {
		return ratOne, t
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return n.val, rest[0]
	}
	return n.val, &Mul{factors: rest}
}

func mulByRat(r *big.Rat, rest Expr) Expr {
	if m, ok := rest.(*Mul); ok {
		factors := append([]Expr{numFromRat(r)}, m.factors...)
		return &Mul{factors: factors}
	}
	return &Mul{factors: []Expr{numFromRat(r), rest}}
}

func (a *Add) String() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Diff(varName string) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Diff(varName)
	}
	return AddOf(terms...)
}

func (a *Add) Sub(subs map[string]Expr) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Sub(subs)
	}
	return AddOf(terms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := new(big.Rat)
	for _, t := range a.terms {
		n, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc.Add(acc, n.val)
	}
	return &Num{val: acc}, true
}

func (a *Add) Equal(other Expr) bool {
	return equalSimplified(a, other)
}

// Mul is a product of factors.
type Mul struct {
	factors []Expr
}

// MulOf returns the simplified product of the given factors.
func MulOf(factors ...Expr) Expr {
	m := &Mul{factors: factors}
	return m.Simplify()
}

// Factors returns the factor list of the product.
func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) Simplify() Expr {
	var flat []Expr
	for _, f := range m.factors {
		sf := f.Simplify()
		if sm, ok := sf.(*Mul); ok {
			flat = append(flat, sm.factors...)
			continue
		}
		flat = append(flat, sf)
	}

	// Merge repeated bases into powers, accumulating numeric exponents
	// exactly. The numeric coefficient is folded separately.
	type pfac struct {
		base Expr
		exp  *big.Rat
	}
	coeff := big.NewRat(1, 1)
	facs := make(map[string]*pfac)
	var keys []string
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff.Mul(coeff, n.val)
			continue
		}
		base, exp := f, ratOne
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok {
				base, exp = p.base, en.val
			}
		}
		key := base.String()
		pf, seen := facs[key]
		if !seen {
			pf = &pfac{base: base, exp: new(big.Rat)}
			facs[key] = pf
			keys = append(keys, key)
		}
		pf.exp.Add(pf.exp, exp)
	}
	if coeff.Sign() == 0 {
		return N(0)
	}
	sort.Strings(keys)

	var out []Expr
	for _, k := range keys {
		pf := facs[k]
		switch {
		case pf.exp.Sign() == 0:
			// x^0
		case pf.exp.Cmp(ratOne) == 0:
			out = append(out, pf.base)
		default:
			out = append(out, &Pow{base: pf.base, exp: &Num{val: pf.exp}})
		}
	}

	if len(out) == 0 {
		return &Num{val: coeff}
	}
	if coeff.Cmp(ratOne) != 0 {
		out = append([]Expr{numFromRat(coeff)}, out...)
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Mul{factors: out}
}

func (m *Mul) String() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		s := f.String()
		if _, ok := f.(*Add); ok {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, "*")
}

func (m *Mul) Diff(varName string) Expr {
	// Product rule over the full factor list.
	var terms []Expr
	for i := range m.factors {
		factors := make([]Expr, len(m.factors))
		copy(factors, m.factors)
		factors[i] = m.factors[i].Diff(varName)
		terms = append(terms, MulOf(factors...))
	}
	return AddOf(terms...)
}

func (m *Mul) Sub(subs map[string]Expr) Expr {
	factors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		factors[i] = f.Sub(subs)
	}
	return MulOf(factors...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := big.NewRat(1, 1)
	for _, f := range m.factors {
		n, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc.Mul(acc, n.val)
	}
	return &Num{val: acc}, true
}

func (m *Mul) Equal(other Expr) bool {
	return equalSimplified(m, other)
}

// Pow is a base raised to an exponent.
type Pow struct {
	base Expr
	exp  Expr
}

// PowOf returns the simplified power base^exp.
func PowOf(base, exp Expr) Expr {
	p := &Pow{base: base, exp: exp}
	return p.Simplify()
}

// Sqrt returns the principal square root of e as e^(1/2).
func Sqrt(e Expr) Expr { return PowOf(e, F(1, 2)) }

// Base returns the base of the power.
func (p *Pow) Base() Expr { return p.base }

// Exp returns the exponent of the power.
func (p *Pow) Exp() Expr { return p.exp }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
		switch b := base.(type) {
		case *Num:
			if b.IsOne() {
				return b
			}
			if b.IsZero() {
				if en.val.Sign() > 0 {
					return b
				}
				// 0^negative is undefined; leave it unevaluated.
				return &Pow{base: base, exp: exp}
			}
			if en.IsInt() && en.val.Num().IsInt64() {
				if v, ok := ratPowInt(b.val, en.val.Num().Int64()); ok {
					return &Num{val: v}
				}
			}
		case *Mul:
			// Distribute integral powers over products so reciprocal
			// factors line up for cancellation.
			factors := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				factors[i] = PowOf(f, en)
			}
			return MulOf(factors...)
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, en))
		}
		return &Pow{base: base, exp: exp}
	}

	if bp, ok := base.(*Pow); ok {
		return PowOf(bp.base, MulOf(bp.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

// ratPowInt computes r^e for |e| <= 64; larger exponents are left symbolic.
func ratPowInt(r *big.Rat, e int64) (*big.Rat, bool) {
	if e > 64 || e < -64 {
		return nil, false
	}
	neg := e < 0
	if neg {
		e = -e
	}
	acc := big.NewRat(1, 1)
	for i := int64(0); i < e; i++ {
		acc.Mul(acc, r)
	}
	if neg {
		if acc.Sign() == 0 {
			return nil, false
		}
		acc.Inv(acc)
	}
	return acc, true
}

func (p *Pow) String() string {
	bs := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		bs = "(" + bs + ")"
	}
	es := p.exp.String()
	switch p.exp.(type) {
	case *Add, *Mul, *Pow:
		es = "(" + es + ")"
	}
	return bs + "^" + es
}

// Diff applies the constant-exponent power rule. Exponents in this engine are
// either numeric or free of the differentiation variable, so the general
// logarithmic term never arises.
func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
}

func (p *Pow) Sub(subs map[string]Expr) Expr {
	return PowOf(p.base.Sub(subs), p.exp.Sub(subs))
}

func (p *Pow) Eval() (*Num, bool) {
	bn, ok := p.base.Eval()
	if !ok {
		return nil, false
	}
	en, ok := p.exp.Eval()
	if !ok || !en.IsInt() || !en.val.Num().IsInt64() {
		return nil, false
	}
	v, ok := ratPowInt(bn.val, en.val.Num().Int64())
	if !ok {
		return nil, false
	}
	return &Num{val: v}, true
}

func (p *Pow) Equal(other Expr) bool {
	return equalSimplified(p, other)
}

// equalSimplified compares canonical forms through their rendered strings.
// Simplification orders terms and factors deterministically, so equal
// canonical strings mean equal expressions.
func equalSimplified(a, b Expr) bool {
	return a.Simplify().String() == b.Simplify().String()
}

// IsZero reports whether the simplified expression is the constant zero.
func IsZero(e Expr) bool {
	n, ok := e.Simplify().(*Num)
	return ok && n.IsZero()
}

// IsOne reports whether the simplified expression is the constant one.
func IsOne(e Expr) bool {
	n, ok := e.Simplify().(*Num)
	return ok && n.IsOne()
}
