package symbolic

import (
	"strings"
	"sync"
)

// Assumptions qualifies a symbol for downstream manipulation. Only the
// assumptions enabled for the engine are retained; the rest are dropped at
// construction so that two requests for the same name always intern to the
// same symbol regardless of caller-side hints.
type Assumptions struct {
	Real     bool
	Positive bool
	Complex  bool
}

// enabledAssumptions is the allow-list applied by the registry. Real and
// positive hints are accepted from callers but not currently propagated;
// complex is kept so the frequency variable stays marked.
var enabledAssumptions = Assumptions{Complex: true}

func (a Assumptions) filtered() Assumptions {
	return Assumptions{
		Real:     a.Real && enabledAssumptions.Real,
		Positive: a.Positive && enabledAssumptions.Positive,
		Complex:  a.Complex && enabledAssumptions.Complex,
	}
}

var registry = struct {
	sync.Mutex
	syms map[string]*Sym
}{syms: make(map[string]*Sym)}

// NewSymbol interns a symbol under its canonical upper-case name. Repeated
// calls with the same name return the identical *Sym, so symbols created by
// different layers of the analysis compare equal.
func NewSymbol(name string, a Assumptions) *Sym {
	canon := strings.ToUpper(name)
	registry.Lock()
	defer registry.Unlock()
	if s, ok := registry.syms[canon]; ok {
		return s
	}
	s := &Sym{name: canon, assm: a.filtered()}
	registry.syms[canon] = s
	return s
}

// S interns a plain symbol with no assumptions.
func S(name string) *Sym { return NewSymbol(name, Assumptions{}) }

// FreqSym is the complex frequency variable used by AC formulations.
func FreqSym() *Sym { return NewSymbol("s", Assumptions{Complex: true}) }
