// Package sparse implements the sparse feature vectors passed between the
// vectorizer, the class balancer and the classifier.
package sparse

import (
	"math"
	"slices"
)

// Vector is a sparse vector with strictly increasing indices. The zero value
// is the all-zero vector of any dimension.
type Vector struct {
	Indices []int
	Values  []float64
}

// FromMap builds a Vector from an index->value map, dropping zeros.
func FromMap(m map[int]float64) Vector {
	idx := make([]int, 0, len(m))
	for i, v := range m {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	slices.Sort(idx)
	vals := make([]float64, len(idx))
	for k, i := range idx {
		vals[k] = m[i]
	}
	return Vector{Indices: idx, Values: vals}
}

// NNZ is the number of stored entries.
func (v Vector) NNZ() int { return len(v.Indices) }

// IsZero reports whether every entry is zero.
func (v Vector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// MaxIndex returns the largest stored index, or -1 for an empty vector.
func (v Vector) MaxIndex() int {
	if len(v.Indices) == 0 {
		return -1
	}
	return v.Indices[len(v.Indices)-1]
}

// Dot returns the inner product of two sparse vectors.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// DotDense returns the inner product with a dense slice. Indices beyond the
// end of dense contribute nothing.
func (v Vector) DotDense(dense []float64) float64 {
	var sum float64
	for k, i := range v.Indices {
		if i < len(dense) {
			sum += v.Values[k] * dense[i]
		}
	}
	return sum
}

// SquaredNorm returns the squared L2 norm.
func (v Vector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return sum
}

// SquaredDistance returns the squared euclidean distance between v and o.
func (v Vector) SquaredDistance(o Vector) float64 {
	d := v.SquaredNorm() + o.SquaredNorm() - 2*v.Dot(o)
	if d < 0 {
		return 0
	}
	return d
}

// Normalize returns v scaled to unit L2 norm. The zero vector is returned as is.
func (v Vector) Normalize() Vector {
	norm := math.Sqrt(v.SquaredNorm())
	if norm == 0 {
		return v
	}
	out := Vector{Indices: append([]int(nil), v.Indices...), Values: make([]float64, len(v.Values))}
	for k, x := range v.Values {
		out.Values[k] = x / norm
	}
	return out
}

// AddScaledDense adds alpha*v into dense in place.
func (v Vector) AddScaledDense(alpha float64, dense []float64) {
	for k, i := range v.Indices {
		dense[i] += alpha * v.Values[k]
	}
}

// Interpolate returns v + gap*(o - v). Entries that end up zero are dropped.
func Interpolate(v, o Vector, gap float64) Vector {
	out := Vector{
		Indices: make([]int, 0, len(v.Indices)+len(o.Indices)),
		Values:  make([]float64, 0, len(v.Indices)+len(o.Indices)),
	}
	push := func(i int, x float64) {
		if x != 0 {
			out.Indices = append(out.Indices, i)
			out.Values = append(out.Values, x)
		}
	}
	i, j := 0, 0
	for i < len(v.Indices) || j < len(o.Indices) {
		switch {
		case j >= len(o.Indices) || (i < len(v.Indices) && v.Indices[i] < o.Indices[j]):
			push(v.Indices[i], v.Values[i]-gap*v.Values[i])
			i++
		case i >= len(v.Indices) || o.Indices[j] < v.Indices[i]:
			push(o.Indices[j], gap*o.Values[j])
			j++
		default:
			push(v.Indices[i], v.Values[i]+gap*(o.Values[j]-v.Values[i]))
			i++
			j++
		}
	}
	return out
}
