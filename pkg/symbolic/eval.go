package symbolic

import (
	"fmt"
	"math"
)

// EvalWith evaluates e numerically with the given symbol bindings. Every
// symbol in e must be bound.
func EvalWith(e Expr, bindings map[string]float64) (float64, error) {
	switch v := e.(type) {
	case *Num:
		f, _ := v.val.Float64()
		return f, nil
	case *Sym:
		f, ok := bindings[v.name]
		if !ok {
			return 0, fmt.Errorf("unbound symbol %s", v.name)
		}
		return f, nil
	case *Add:
		acc := 0.0
		for _, t := range v.terms {
			f, err := EvalWith(t, bindings)
			if err != nil {
				return 0, err
			}
			acc += f
		}
		return acc, nil
	case *Mul:
		acc := 1.0
		for _, fac := range v.factors {
			f, err := EvalWith(fac, bindings)
			if err != nil {
				return 0, err
			}
			acc *= f
		}
		return acc, nil
	case *Pow:
		base, err := EvalWith(v.base, bindings)
		if err != nil {
			return 0, err
		}
		exp, err := EvalWith(v.exp, bindings)
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return 0, fmt.Errorf("cannot evaluate expression %s", e)
}
