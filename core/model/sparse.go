package model

// SparseVector represents a sparse float64 feature vector of fixed
// dimensionality. Indices hold the non-zero positions and Values the
// corresponding signed counts or weights. The dimensionality is fixed at
// construction and never grows, which is what allows hashed feature vectors
// from an unbounded vocabulary to share one weight vector.
type SparseVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// NewSparseVector creates an empty sparse vector with the given dimension.
func NewSparseVector(dim int) SparseVector {
	return SparseVector{Dim: dim}
}

// Add accumulates val at the given index. Repeated indices add up rather
// than overwrite.
func (sv *SparseVector) Add(idx int, val float64) {
	for i, existingIdx := range sv.Indices {
		if existingIdx == idx {
			sv.Values[i] += val
			return
		}
	}
	sv.Indices = append(sv.Indices, idx)
	sv.Values = append(sv.Values, val)
}

// Dot computes the dot product with a dense vector.
func (sv SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range sv.Indices {
		if idx < len(dense) {
			sum += sv.Values[i] * dense[idx]
		}
	}
	return sum
}

// NormSquared returns the squared L2 norm of the vector.
func (sv SparseVector) NormSquared() float64 {
	var sum float64
	for _, v := range sv.Values {
		sum += v * v
	}
	return sum
}

// ToDense converts to a dense float64 slice of length Dim.
func (sv SparseVector) ToDense() []float64 {
	dense := make([]float64, sv.Dim)
	for i, idx := range sv.Indices {
		if idx < sv.Dim {
			dense[idx] = sv.Values[i]
		}
	}
	return dense
}

// Nnz returns the number of stored entries.
func (sv SparseVector) Nnz() int {
	return len(sv.Indices)
}
