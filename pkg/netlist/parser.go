// Package netlist reads SPICE-style circuit descriptions. The reader keeps
// elements as raw tokens plus a parsed value; building devices out of them is
// the circuit package's job.
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Element is one netlist card. Type is the upper-case element letter and
// Name the full element name. HasValue is false when the card carries no
// numeric value, in which case the element is analyzed symbolically.
type Element struct {
	Type     string
	Name     string
	Nodes    []string
	Ctrl     []string
	Source   string
	Pair     []string
	Value    float64
	HasValue bool
}

// SymbolicDirective carries the options of a .symbolic card.
type SymbolicDirective struct {
	Enabled bool
	Source  string // tf=<name>: derive transfer functions w.r.t. this source
	AC      bool   // ac=1 (default): include reactive elements with the complex frequency
	R0s     bool   // r0s=1: include MOS output resistances
}

// Netlist is the parsed form of one input deck.
type Netlist struct {
	Title    string
	Elements []Element
	Symbolic SymbolicDirective
	Subs     []string // raw name=name pairs collected from .subs cards
}

// Parse reads a netlist deck. The first non-blank line is the title;
// '*' starts a comment and '+' continues the previous card.
func Parse(input string) (*Netlist, error) {
	nl := &Netlist{Symbolic: SymbolicDirective{AC: true}}

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(input))
	sawTitle := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if !sawTitle {
			nl.Title = line
			sawTitle = true
			continue
		}
		if strings.HasPrefix(line, "+") {
			if len(lines) == 0 {
				return nil, fmt.Errorf("continuation line without a preceding card: %q", line)
			}
			lines[len(lines)-1] += " " + strings.TrimPrefix(line, "+")
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, line := range lines {
		fields := strings.Fields(strings.ToUpper(line))
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], ".") {
			if err := nl.parseDotCard(fields); err != nil {
				return nil, err
			}
			continue
		}
		elem, err := parseElement(fields)
		if err != nil {
			return nil, err
		}
		nl.Elements = append(nl.Elements, elem)
	}
	return nl, nil
}

func (nl *Netlist) parseDotCard(fields []string) error {
	switch fields[0] {
	case ".SYMBOLIC":
		nl.Symbolic.Enabled = true
		for _, f := range fields[1:] {
			key, val, found := strings.Cut(f, "=")
			if !found {
				return fmt.Errorf(".symbolic: malformed option %q", f)
			}
			switch key {
			case "TF":
				nl.Symbolic.Source = val
			case "AC":
				nl.Symbolic.AC = val != "0"
			case "R0S":
				nl.Symbolic.R0s = val != "0"
			default:
				return fmt.Errorf(".symbolic: unknown option %q", key)
			}
		}
	case ".SUBS":
		nl.Subs = append(nl.Subs, fields[1:]...)
	case ".END":
		// end of deck
	default:
		return fmt.Errorf("unknown dot card %s", fields[0])
	}
	return nil
}

func parseElement(fields []string) (Element, error) {
	name := fields[0]
	elem := Element{Type: name[:1], Name: name}
	args := fields[1:]

	need := func(n int, what string) error {
		if len(args) < n {
			return fmt.Errorf("%s: want %s", name, what)
		}
		return nil
	}
	takeValue := func(idx int) error {
		if len(args) <= idx {
			return nil // no value: symbolic element
		}
		v, err := ParseValue(args[idx])
		if err != nil {
			return fmt.Errorf("%s: bad value %q: %w", name, args[idx], err)
		}
		elem.Value = v
		elem.HasValue = true
		return nil
	}

	switch elem.Type {
	case "R", "C", "L", "V", "I":
		if err := need(2, "two nodes"); err != nil {
			return elem, err
		}
		elem.Nodes = args[:2]
		vi := 2
		// sources accept an optional DC keyword before the value
		if (elem.Type == "V" || elem.Type == "I") && len(args) > 2 && args[2] == "DC" {
			vi = 3
		}
		if err := takeValue(vi); err != nil {
			return elem, err
		}
	case "E", "G":
		if err := need(4, "two nodes and a controlling node pair"); err != nil {
			return elem, err
		}
		elem.Nodes = args[:2]
		elem.Ctrl = args[2:4]
		if err := takeValue(4); err != nil {
			return elem, err
		}
	case "H", "F":
		if err := need(3, "two nodes and a controlling source"); err != nil {
			return elem, err
		}
		elem.Nodes = args[:2]
		elem.Source = args[2]
		if err := takeValue(3); err != nil {
			return elem, err
		}
	case "K":
		if err := need(2, "two inductor names"); err != nil {
			return elem, err
		}
		elem.Pair = args[:2]
		if err := takeValue(2); err != nil {
			return elem, err
		}
	case "D":
		if err := need(2, "two nodes"); err != nil {
			return elem, err
		}
		elem.Nodes = args[:2]
	case "M", "Q":
		if err := need(3, "three nodes"); err != nil {
			return elem, err
		}
		elem.Nodes = args[:3]
	default:
		return elem, fmt.Errorf("unknown element type %q in %s", elem.Type, name)
	}
	return elem, nil
}

var valuePattern = regexp.MustCompile(`^([+-]?\d*\.?\d+(?:[eE][+-]?\d+)?)([A-Za-z]*)$`)

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"MEG": 1e6,
	"K":   1e3,
	"M":   1e-3,
	"U":   1e-6,
	"N":   1e-9,
	"P":   1e-12,
	"F":   1e-15,
}

// ParseValue parses a number with an optional SPICE scale suffix
// (T, G, MEG, K, M, U, N, P, F). Trailing unit letters after the suffix are
// ignored, so "10uF" reads as 10e-6.
func ParseValue(s string) (float64, error) {
	m := valuePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid numeric value %q", s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	suffix := strings.ToUpper(m[2])
	if suffix == "" {
		return v, nil
	}
	if strings.HasPrefix(suffix, "MEG") {
		return v * unitMap["MEG"], nil
	}
	if factor, ok := unitMap[suffix[:1]]; ok {
		return v * factor, nil
	}
	return v, nil
}
