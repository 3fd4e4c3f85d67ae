package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/sym-spice/pkg/analysis"
	"github.com/edp1096/sym-spice/pkg/circuit"
	"github.com/edp1096/sym-spice/pkg/device"
	"github.com/edp1096/sym-spice/pkg/netlist"
	"github.com/edp1096/sym-spice/pkg/result"
	"github.com/edp1096/sym-spice/pkg/util"
)

var (
	flagTF      string
	flagDC      bool
	flagR0s     bool
	flagSubs    []string
	flagOut     string
	flagCheck   string
	flagVerbose int
)

var rootCmd = &cobra.Command{
	Use:   "symspice <netlist>",
	Short: "Symbolic small-signal circuit analysis",
	Long: `symspice solves a circuit symbolically: elements without a value are kept
as symbols, the circuit equations are solved in closed form, and transfer
functions with poles and zeros can be derived against an input source.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagTF, "tf", "", "derive transfer functions w.r.t. this source")
	rootCmd.Flags().BoolVar(&flagDC, "dc", false, "use the DC formulation (no frequency variable)")
	rootCmd.Flags().BoolVar(&flagR0s, "r0s", false, "include MOS output resistances")
	rootCmd.Flags().StringArrayVar(&flagSubs, "sub", nil, "parameter substitution name=name (repeatable)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "write results to this file (transfer functions to <file>.tfs)")
	rootCmd.Flags().StringVar(&flagCheck, "check", "", "numeric cross-check bindings, e.g. R1=1k,R2=2k,V1=1")
	rootCmd.Flags().CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity")
}

// Execute runs the command line interface.
func Execute() error {
	return rootCmd.Execute()
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	nl, err := netlist.Parse(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	ckt, err := circuit.FromNetlist(nl)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if flagVerbose >= 2 {
		listElements(ckt)
	}

	opts, err := buildOptions(nl)
	if err != nil {
		return err
	}

	sol, tfs, err := analysis.Run(ckt, opts)
	if err != nil {
		return err
	}

	res := &result.Symbolic{Title: ckt.Name(), Sol: sol, TFs: tfs}
	fmt.Print(res.String())
	if tfs != nil {
		fmt.Print(res.TFString())
	}
	if flagOut != "" {
		if err := res.WriteFile(flagOut); err != nil {
			return err
		}
	}

	if flagCheck != "" {
		if err := crossCheck(ckt, sol, opts); err != nil {
			return fmt.Errorf("numeric cross-check failed: %w", err)
		}
		fmt.Println("* numeric cross-check passed")
	}
	return nil
}

func buildOptions(nl *netlist.Netlist) (analysis.Options, error) {
	opts := analysis.Options{
		Source:  nl.Symbolic.Source,
		AC:      nl.Symbolic.AC && !flagDC,
		R0s:     nl.Symbolic.R0s || flagR0s,
		Verbose: flagVerbose,
	}
	if flagTF != "" {
		opts.Source = flagTF
	}
	subs, err := analysis.ParseSubstitutions(append(append([]string{}, nl.Subs...), flagSubs...))
	if err != nil {
		return opts, err
	}
	opts.Subs = subs
	return opts, nil
}

var kindUnits = map[device.Kind]string{
	device.Resistor:  "Ohm",
	device.Capacitor: "F",
	device.Inductor:  "H",
	device.VSource:   "V",
	device.ISource:   "A",
}

func listElements(ckt *circuit.Circuit) {
	fmt.Printf("Circuit: %s\n", ckt.Name())
	for _, d := range ckt.Devices() {
		if d.Symbolic {
			fmt.Printf("  %-8s %-10s symbolic\n", d.ID, d.Kind)
			continue
		}
		fmt.Printf("  %-8s %-10s %s\n", d.ID, d.Kind, util.FormatValueFactor(d.Value, kindUnits[d.Kind]))
	}
}

func crossCheck(ckt *circuit.Circuit, sol *analysis.Solution, opts analysis.Options) error {
	bindings := make(map[string]float64)
	for _, pair := range strings.Split(flagCheck, ",") {
		name, val, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("malformed binding %q: want name=value", pair)
		}
		v, err := netlist.ParseValue(val)
		if err != nil {
			return fmt.Errorf("binding %q: %w", pair, err)
		}
		bindings[strings.ToUpper(strings.TrimSpace(name))] = v
	}

	sys, err := analysis.Assemble(ckt, opts)
	if err != nil {
		return err
	}
	return analysis.Verify(sys, ckt, sol, opts, bindings, 1e-6)
}
