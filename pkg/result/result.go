// Package result renders analysis output for the terminal and for result
// files.
package result

import (
	"fmt"
	"os"
	"strings"

	"github.com/edp1096/sym-spice/pkg/analysis"
)

// Symbolic bundles everything one symbolic run produced.
type Symbolic struct {
	Title string
	Sol   *analysis.Solution
	TFs   *analysis.TransferFunctions
}

// TFPath returns the companion file path transfer functions are written to.
func TFPath(path string) string { return path + ".tfs" }

func (r *Symbolic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Symbolic analysis: %s\n", r.Title)

	for _, w := range r.Sol.Warnings {
		fmt.Fprintf(&b, "* warning: %s\n", w)
	}
	if r.Sol.Empty() {
		return b.String()
	}
	for _, name := range r.Sol.Names {
		v, ok := r.Sol.Values[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s = %s\n", name, v)
	}
	return b.String()
}

// TFString renders the derived transfer functions, one block per gain.
func (r *Symbolic) TFString() string {
	if r.TFs == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "* Transfer functions: %s\n", r.Title)
	for _, w := range r.TFs.Warnings {
		fmt.Fprintf(&b, "* warning: %s\n", w)
	}
	for _, key := range r.TFs.Keys {
		tf := r.TFs.Funcs[key]
		fmt.Fprintf(&b, "%s = %s\n", key, tf.Gain)
		fmt.Fprintf(&b, "\tDC gain: %s\n", tf.Gain0)
		for i, p := range tf.Poles {
			fmt.Fprintf(&b, "\tP%d: %s\n", i, p)
		}
		for i, z := range tf.Zeros {
			fmt.Fprintf(&b, "\tZ%d: %s\n", i, z)
		}
	}
	return b.String()
}

// WriteFile stores the solution at path. Transfer functions, when present,
// go to the companion ".tfs" file next to it.
func (r *Symbolic) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(r.String()), 0o644); err != nil {
		return err
	}
	if r.TFs != nil {
		if err := os.WriteFile(TFPath(path), []byte(r.TFString()), 0o644); err != nil {
			return err
		}
	}
	return nil
}
