package analysis

import (
	"github.com/edp1096/sym-spice/pkg/symbolic"
)

// TF is one derived transfer function: the small-signal gain from the input
// source to one circuit unknown, its DC value, and its poles and zeros when
// a closed form exists.
type TF struct {
	Gain  symbolic.Expr
	Gain0 symbolic.Expr
	Poles []symbolic.Expr
	Zeros []symbolic.Expr
}

// TransferFunctions holds the gains keyed "<output>/<input>", with Keys in
// solution order.
type TransferFunctions struct {
	Keys     []string
	Funcs    map[string]TF
	Warnings []string
}

// CalculateGains differentiates every solved unknown with respect to the
// input source. Unknowns the source does not reach get a zero gain with no
// poles or zeros. Poles and zeros come from the roots of the denominator and
// numerator in the frequency variable; degrees above two have no closed form
// and leave the lists nil with a warning.
func CalculateGains(sol *Solution, source string) *TransferFunctions {
	in := symbolic.S(source)
	sZero := map[string]symbolic.Expr{freqS().Name(): symbolic.N(0)}

	tfs := &TransferFunctions{Funcs: make(map[string]TF)}
	for _, name := range sol.Names {
		v, ok := sol.Values[name]
		if !ok {
			continue
		}
		gain := symbolic.Together(v.Diff(in.Name()))
		key := name + "/" + in.Name()
		if symbolic.IsZero(gain) {
			tfs.Keys = append(tfs.Keys, key)
			tfs.Funcs[key] = TF{Gain: symbolic.N(0), Gain0: symbolic.N(0)}
			continue
		}

		tf := TF{
			Gain:  gain,
			Gain0: symbolic.Together(gain.Sub(sZero)),
		}
		num, den := symbolic.Fraction(gain)
		var pok, zok bool
		tf.Poles, pok = symbolic.Roots(den, freqS().Name())
		tf.Zeros, zok = symbolic.Roots(num, freqS().Name())
		if !pok {
			tfs.Warnings = append(tfs.Warnings,
				"no closed form for the poles of "+key+": denominator degree above two")
		}
		if !zok {
			tfs.Warnings = append(tfs.Warnings,
				"no closed form for the zeros of "+key+": numerator degree above two")
		}

		tfs.Keys = append(tfs.Keys, key)
		tfs.Funcs[key] = tf
	}
	return tfs
}
