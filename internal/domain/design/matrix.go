// Package design assembles the sparse regression design matrix from
// possessions and prunes rows that carry no information.
package design

import (
	"gonum.org/v1/gonum/mat"
)

// Matrix is a read-only sparse matrix in compressed sparse row form.
// Entries within a row are sorted by column and never explicitly zero.
//
// Matrix implements mat.Matrix so it can be handed to gonum for dense
// conversion and formatting in diagnostics and tests.
type Matrix struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	values     []float64
}

var _ mat.Matrix = (*Matrix)(nil)

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (r, c int) { return m.rows, m.cols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.values) }

// Row returns the column indices and values stored in row i. The slices
// alias the matrix storage and must not be modified.
func (m *Matrix) Row(i int) (cols []int, vals []float64) {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	return m.colIdx[lo:hi], m.values[lo:hi]
}

// RowNNZ returns the number of entries stored in row i.
func (m *Matrix) RowNNZ(i int) int {
	return m.rowPtr[i+1] - m.rowPtr[i]
}

// At returns the value at (i, j).
func (m *Matrix) At(i, j int) float64 {
	if j < 0 || j >= m.cols {
		panic(mat.ErrColAccess)
	}
	cols, vals := m.Row(i)
	for k, c := range cols {
		if c == j {
			return vals[k]
		}
		if c > j {
			break
		}
	}
	return 0
}

// T returns the implicit transpose.
func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// MulVecTo computes dst = M x. dst must have one element per row and x one
// per column.
func (m *Matrix) MulVecTo(dst, x []float64) {
	if len(dst) != m.rows || len(x) != m.cols {
		panic(mat.ErrShape)
	}
	for i := 0; i < m.rows; i++ {
		var sum float64
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			sum += m.values[k] * x[m.colIdx[k]]
		}
		dst[i] = sum
	}
}

// MulTransVecTo computes dst = Mᵀ x. dst must have one element per column and
// x one per row.
func (m *Matrix) MulTransVecTo(dst, x []float64) {
	if len(dst) != m.cols || len(x) != m.rows {
		panic(mat.ErrShape)
	}
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < m.rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			dst[m.colIdx[k]] += m.values[k] * xi
		}
	}
}

// SelectRows returns a new matrix made of the given rows, in the given order.
func (m *Matrix) SelectRows(rows []int) *Matrix {
	b := newBuilder(m.cols, len(rows))
	for _, i := range rows {
		cols, vals := m.Row(i)
		b.colIdx = append(b.colIdx, cols...)
		b.values = append(b.values, vals...)
		b.endRow()
	}
	return b.matrix()
}

// Dense returns a dense copy. Intended for small matrices only.
func (m *Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(m)
}

// builder appends rows to a CSR matrix.
type builder struct {
	cols   int
	rowPtr []int
	colIdx []int
	values []float64
}

func newBuilder(cols, rowsHint int) *builder {
	b := &builder{
		cols:   cols,
		rowPtr: make([]int, 1, rowsHint+1),
	}
	return b
}

// set assigns v to column col of the row being built. A repeated column
// overwrites the earlier value; zero removes the entry.
func (b *builder) set(col int, v float64) {
	start := b.rowPtr[len(b.rowPtr)-1]
	for k := start; k < len(b.colIdx); k++ {
		if b.colIdx[k] == col {
			b.values[k] = v
			return
		}
	}
	b.colIdx = append(b.colIdx, col)
	b.values = append(b.values, v)
}

// endRow closes the current row, dropping zeros and sorting by column.
func (b *builder) endRow() {
	start := b.rowPtr[len(b.rowPtr)-1]
	w := start
	for k := start; k < len(b.colIdx); k++ {
		if b.values[k] == 0 {
			continue
		}
		b.colIdx[w], b.values[w] = b.colIdx[k], b.values[k]
		w++
	}
	b.colIdx, b.values = b.colIdx[:w], b.values[:w]

	// rows hold at most a handful of entries; insertion sort
	for i := start + 1; i < w; i++ {
		for j := i; j > start && b.colIdx[j-1] > b.colIdx[j]; j-- {
			b.colIdx[j-1], b.colIdx[j] = b.colIdx[j], b.colIdx[j-1]
			b.values[j-1], b.values[j] = b.values[j], b.values[j-1]
		}
	}
	b.rowPtr = append(b.rowPtr, w)
}

func (b *builder) matrix() *Matrix {
	return &Matrix{
		rows:   len(b.rowPtr) - 1,
		cols:   b.cols,
		rowPtr: b.rowPtr,
		colIdx: b.colIdx,
		values: b.values,
	}
}
