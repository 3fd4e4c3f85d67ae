// Package matrix wraps the sparse LU solver used to cross-check symbolic
// solutions at a numeric operating point.
package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

type CircuitMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

// NewMatrix creates a real-valued system of the given size. Entry indices
// are 1-based, matching the solver's convention.
func NewMatrix(size int) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1), // 1-based indexing
		solution: make([]float64, size+1),
		config:   config,
	}, nil
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) error {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return fmt.Errorf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size)
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
	return nil
}

func (m *CircuitMatrix) AddRHS(i int, value float64) error {
	if i <= 0 || i > m.Size {
		return fmt.Errorf("rhs index out of bounds (i=%d, size=%d)", i, m.Size)
	}
	m.rhs[i] += value
	return nil
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *CircuitMatrix) Solve() error {
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %v", err)
	}
	sol, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %v", err)
	}
	m.solution = sol
	return nil
}

// Solution returns the 1-based solution vector of the last Solve call.
func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
