package analysis

import (
	"fmt"
	"strings"

	"github.com/edp1096/sym-spice/pkg/circuit"
	"github.com/edp1096/sym-spice/pkg/device"
)

// Run performs the full symbolic analysis: assembly, substitution, solve,
// and, when a source is named, transfer-function derivation. Warnings
// collected during assembly and solving end up on the returned solution.
func Run(ckt *circuit.Circuit, opts Options) (*Solution, *TransferFunctions, error) {
	if opts.Verbose >= 1 {
		mode := "DC"
		if opts.AC {
			mode = "AC"
		}
		fmt.Printf("Starting symbolic %s analysis: %s\n", mode, ckt.Name())
	}

	sys, err := Assemble(ckt, opts)
	if err != nil {
		return nil, nil, err
	}

	a, n := sys.Reduced()
	a, n = ApplySubstitutions(a, n, opts.Subs)
	vars := ckt.Variables(opts.AC)

	if opts.Verbose >= 3 {
		fmt.Println("Equations:")
		for i, eq := range BuildEquations(a, n, vars) {
			fmt.Printf("  (%d)  0 = %s\n", i+1, eq)
		}
	}

	sol := Solve(a, n, vars, sys.SubsG)
	sol.Warnings = append(sys.Warnings, sol.Warnings...)
	if opts.Verbose >= 1 {
		for _, w := range sol.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
	}

	var tfs *TransferFunctions
	if opts.Source != "" && !sol.Empty() {
		src := strings.ToUpper(opts.Source)
		d, ok := ckt.FindDevice(src)
		if !ok || (d.Kind != device.VSource && d.Kind != device.ISource) {
			return nil, nil, fmt.Errorf("transfer function source %s: no such independent source", src)
		}
		tfs = CalculateGains(sol, src)
	}
	return sol, tfs, nil
}
