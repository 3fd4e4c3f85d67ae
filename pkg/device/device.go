// Package device defines the circuit element model shared by the netlist
// reader and the analyses. Elements are a single tagged struct rather than
// one type per model: the analyses dispatch on Kind, and fields not used by
// a kind are left zero.
package device

import "fmt"

// Kind identifies the element class of a Device.
type Kind int

const (
	Resistor Kind = iota
	Capacitor
	Inductor
	VSource
	ISource
	VCVS     // E: voltage-controlled voltage source
	VCCS     // G: voltage-controlled current source
	CCVS     // H: current-controlled voltage source
	CCCS     // F: current-controlled current source
	Coupling // K: mutual inductance between two inductors
	Diode
	MOS
	BJT
)

var kindNames = map[Kind]string{
	Resistor:  "resistor",
	Capacitor: "capacitor",
	Inductor:  "inductor",
	VSource:   "vsource",
	ISource:   "isource",
	VCVS:      "vcvs",
	VCCS:      "vccs",
	CCVS:      "ccvs",
	CCCS:      "cccs",
	Coupling:  "coupling",
	Diode:     "diode",
	MOS:       "mos",
	BJT:       "bjt",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Device is one circuit element. Nodes holds the terminal node indices in
// the order the element class defines them: (n+, n-) for two-terminal
// elements, (drain, gate, source) for a MOS. Ctrl holds the controlling node
// pair of E/G elements, Source the controlling source name of H/F elements,
// and Pair the two coupled inductor names of a K element.
type Device struct {
	ID       string
	Kind     Kind
	Nodes    []int
	Ctrl     []int
	Source   string
	Pair     [2]string
	Value    float64
	Symbolic bool
}

func NewResistor(id string, n1, n2 int, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: Resistor, Nodes: []int{n1, n2}, Value: value, Symbolic: symbolic}
}

func NewCapacitor(id string, n1, n2 int, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: Capacitor, Nodes: []int{n1, n2}, Value: value, Symbolic: symbolic}
}

func NewInductor(id string, n1, n2 int, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: Inductor, Nodes: []int{n1, n2}, Value: value, Symbolic: symbolic}
}

func NewVSource(id string, n1, n2 int, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: VSource, Nodes: []int{n1, n2}, Value: value, Symbolic: symbolic}
}

func NewISource(id string, n1, n2 int, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: ISource, Nodes: []int{n1, n2}, Value: value, Symbolic: symbolic}
}

func NewVCVS(id string, n1, n2, cn1, cn2 int, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: VCVS, Nodes: []int{n1, n2}, Ctrl: []int{cn1, cn2}, Value: value, Symbolic: symbolic}
}

func NewVCCS(id string, n1, n2, cn1, cn2 int, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: VCCS, Nodes: []int{n1, n2}, Ctrl: []int{cn1, cn2}, Value: value, Symbolic: symbolic}
}

func NewCCVS(id string, n1, n2 int, source string, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: CCVS, Nodes: []int{n1, n2}, Source: source, Value: value, Symbolic: symbolic}
}

func NewCCCS(id string, n1, n2 int, source string, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: CCCS, Nodes: []int{n1, n2}, Source: source, Value: value, Symbolic: symbolic}
}

func NewCoupling(id, l1, l2 string, value float64, symbolic bool) *Device {
	return &Device{ID: id, Kind: Coupling, Pair: [2]string{l1, l2}, Value: value, Symbolic: symbolic}
}

func NewDiode(id string, n1, n2 int) *Device {
	return &Device{ID: id, Kind: Diode, Nodes: []int{n1, n2}, Symbolic: true}
}

func NewMOS(id string, nd, ng, ns int) *Device {
	return &Device{ID: id, Kind: MOS, Nodes: []int{nd, ng, ns}, Symbolic: true}
}

func NewBJT(id string, nc, nb, ne int) *Device {
	return &Device{ID: id, Kind: BJT, Nodes: []int{nc, nb, ne}, Symbolic: true}
}

// IsVoltageDefined reports whether the element contributes a branch current
// unknown and a KVL row to the formulation. Inductors are voltage-defined
// only in the AC formulation; at DC they drop out of the system entirely.
func (d *Device) IsVoltageDefined(ac bool) bool {
	switch d.Kind {
	case VSource, VCVS, CCVS:
		return true
	case Inductor:
		return ac
	}
	return false
}

// OtherInductor returns the partner of self in a coupling element.
func (d *Device) OtherInductor(self string) (string, error) {
	if d.Kind != Coupling {
		return "", fmt.Errorf("%s: not a coupling element", d.ID)
	}
	switch self {
	case d.Pair[0]:
		return d.Pair[1], nil
	case d.Pair[1]:
		return d.Pair[0], nil
	}
	return "", fmt.Errorf("%s: inductor %s is not coupled here", d.ID, self)
}
