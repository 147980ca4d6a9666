package series

import (
	"fmt"
	"math"
)

// Matrix is a dense row-major float64 matrix
type Matrix [][]float64

// NewMatrix allocates a zeroed rows×cols matrix
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Transpose returns Mᵀ
func Transpose(m Matrix) Matrix {
	if len(m) == 0 {
		return Matrix{}
	}
	t := NewMatrix(len(m[0]), len(m))
	for i := range m {
		for j := range m[i] {
			t[j][i] = m[i][j]
		}
	}
	return t
}

// Multiply returns A·B
func Multiply(a, b Matrix) (Matrix, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("multiply: empty matrix")
	}
	if len(a[0]) != len(b) {
		return nil, fmt.Errorf("multiply: dimension mismatch %dx%d vs %dx%d",
			len(a), len(a[0]), len(b), len(b[0]))
	}

	out := NewMatrix(len(a), len(b[0]))
	for i := range a {
		for k, aik := range a[i] {
			if aik == 0 {
				continue
			}
			for j := range b[k] {
				out[i][j] += aik * b[k][j]
			}
		}
	}
	return out, nil
}

// MultiplyVec returns A·v
func MultiplyVec(a Matrix, v []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, fmt.Errorf("multiply: empty matrix")
	}
	if len(a[0]) != len(v) {
		return nil, fmt.Errorf("multiply: dimension mismatch %dx%d vs %d",
			len(a), len(a[0]), len(v))
	}

	out := make([]float64, len(a))
	for i := range a {
		for j, aij := range a[i] {
			out[i] += aij * v[j]
		}
	}
	return out, nil
}

// Inverse inverts a square matrix by Gauss-Jordan elimination with
// partial pivoting: each column swaps in the row with the largest
// absolute pivot candidate before eliminating.
func Inverse(m Matrix) (Matrix, error) {
	n := len(m)
	if n == 0 || len(m[0]) != n {
		return nil, fmt.Errorf("inverse: matrix is not square")
	}

	// Augmented [M | I]
	aug := NewMatrix(n, 2*n)
	for i := range m {
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("inverse: singular matrix at column %d", col)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		scale := aug[col][col]
		for j := range aug[col] {
			aug[col][j] /= scale
		}

		for row := 0; row < n; row++ {
			if row == col || aug[row][col] == 0 {
				continue
			}
			factor := aug[row][col]
			for j := range aug[row] {
				aug[row][j] -= factor * aug[col][j]
			}
		}
	}

	inv := NewMatrix(n, n)
	for i := range inv {
		copy(inv[i], aug[i][n:])
	}
	return inv, nil
}
