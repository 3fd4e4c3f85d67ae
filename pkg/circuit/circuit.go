// Package circuit holds the in-memory circuit: interned nodes, the ordered
// element list, and the per-formulation branch bookkeeping the analyses
// depend on.
package circuit

import (
	"fmt"

	"github.com/edp1096/sym-spice/pkg/device"
	"github.com/edp1096/sym-spice/pkg/netlist"
	"github.com/edp1096/sym-spice/pkg/symbolic"
)

// Circuit is a parsed circuit. Node index 0 is always the reference node;
// other nodes are numbered in first-appearance order. Devices keep netlist
// order, which fixes the ordering of auxiliary current unknowns.
type Circuit struct {
	name     string
	nodes    []string
	nodeMap  map[string]int
	devices  []*device.Device
	byID     map[string]*device.Device
	auxIndex map[string]int
	auxOrder []string
}

// New returns an empty circuit containing only the reference node.
func New(name string) *Circuit {
	c := &Circuit{
		name:    name,
		nodes:   []string{"0"},
		nodeMap: map[string]int{"0": 0, "GND": 0},
		byID:    make(map[string]*device.Device),
	}
	return c
}

// Name returns the circuit title.
func (c *Circuit) Name() string { return c.name }

// NodeIndex interns a node name and returns its index. "0" and "GND" are the
// reference node.
func (c *Circuit) NodeIndex(name string) int {
	if i, ok := c.nodeMap[name]; ok {
		return i
	}
	i := len(c.nodes)
	c.nodes = append(c.nodes, name)
	c.nodeMap[name] = i
	return i
}

// NodeName returns the name of node i.
func (c *Circuit) NodeName(i int) string { return c.nodes[i] }

// NodeCount returns the number of nodes including the reference node.
func (c *Circuit) NodeCount() int { return len(c.nodes) }

// AddDevice appends a device, keeping encounter order.
func (c *Circuit) AddDevice(d *device.Device) error {
	if _, dup := c.byID[d.ID]; dup {
		return fmt.Errorf("duplicate element name %s", d.ID)
	}
	c.devices = append(c.devices, d)
	c.byID[d.ID] = d
	return nil
}

// Devices returns the elements in netlist order.
func (c *Circuit) Devices() []*device.Device { return c.devices }

// FindDevice looks an element up by name.
func (c *Circuit) FindDevice(id string) (*device.Device, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// AssignAuxIndices numbers the voltage-defined elements of the given
// formulation in encounter order. The set depends on the formulation:
// inductors carry a branch current only when ac is true.
func (c *Circuit) AssignAuxIndices(ac bool) {
	c.auxIndex = make(map[string]int)
	c.auxOrder = c.auxOrder[:0]
	for _, d := range c.devices {
		if d.IsVoltageDefined(ac) {
			c.auxIndex[d.ID] = len(c.auxOrder)
			c.auxOrder = append(c.auxOrder, d.ID)
		}
	}
}

// AuxCount returns the number of auxiliary current unknowns assigned by the
// last AssignAuxIndices call.
func (c *Circuit) AuxCount() int { return len(c.auxOrder) }

// FindAuxIndex returns the ordinal of the named element among the
// voltage-defined elements.
func (c *Circuit) FindAuxIndex(id string) (int, error) {
	i, ok := c.auxIndex[id]
	if !ok {
		return 0, fmt.Errorf("element %s has no branch current in this formulation", id)
	}
	return i, nil
}

// Variables returns the unknown vector of the reduced formulation: one
// voltage symbol per non-reference node in node-index order, then one branch
// current symbol per voltage-defined element in encounter order.
func (c *Circuit) Variables(ac bool) []*symbolic.Sym {
	c.AssignAuxIndices(ac)
	vars := make([]*symbolic.Sym, 0, len(c.nodes)-1+len(c.auxOrder))
	for _, n := range c.nodes[1:] {
		vars = append(vars, symbolic.S("V"+n))
	}
	for _, id := range c.auxOrder {
		vars = append(vars, symbolic.S("I["+id+"]"))
	}
	return vars
}

// FromNetlist builds a circuit out of a parsed deck.
func FromNetlist(nl *netlist.Netlist) (*Circuit, error) {
	c := New(nl.Title)
	for _, e := range nl.Elements {
		d, err := c.buildDevice(e)
		if err != nil {
			return nil, err
		}
		if err := c.AddDevice(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Circuit) buildDevice(e netlist.Element) (*device.Device, error) {
	node := func(i int) int { return c.NodeIndex(e.Nodes[i]) }
	sym := !e.HasValue

	switch e.Type {
	case "R":
		return device.NewResistor(e.Name, node(0), node(1), e.Value, sym), nil
	case "C":
		return device.NewCapacitor(e.Name, node(0), node(1), e.Value, sym), nil
	case "L":
		return device.NewInductor(e.Name, node(0), node(1), e.Value, sym), nil
	case "V":
		return device.NewVSource(e.Name, node(0), node(1), e.Value, sym), nil
	case "I":
		return device.NewISource(e.Name, node(0), node(1), e.Value, sym), nil
	case "E":
		cn1, cn2 := c.NodeIndex(e.Ctrl[0]), c.NodeIndex(e.Ctrl[1])
		return device.NewVCVS(e.Name, node(0), node(1), cn1, cn2, e.Value, sym), nil
	case "G":
		cn1, cn2 := c.NodeIndex(e.Ctrl[0]), c.NodeIndex(e.Ctrl[1])
		return device.NewVCCS(e.Name, node(0), node(1), cn1, cn2, e.Value, sym), nil
	case "H":
		return device.NewCCVS(e.Name, node(0), node(1), e.Source, e.Value, sym), nil
	case "F":
		return device.NewCCCS(e.Name, node(0), node(1), e.Source, e.Value, sym), nil
	case "K":
		return device.NewCoupling(e.Name, e.Pair[0], e.Pair[1], e.Value, sym), nil
	case "D":
		return device.NewDiode(e.Name, node(0), node(1)), nil
	case "M":
		return device.NewMOS(e.Name, node(0), node(1), node(2)), nil
	case "Q":
		return device.NewBJT(e.Name, node(0), node(1), node(2)), nil
	}
	return nil, fmt.Errorf("unknown element type %q in %s", e.Type, e.Name)
}
