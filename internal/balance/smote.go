// Package balance oversamples minority classes with SMOTE before training.
package balance

import (
	"math/rand"
	"sort"

	"github.com/Skufu/medirec/internal/sparse"
)

// Policy decides whether and how SMOTE runs for a given minority class size.
type Policy struct {
	// MinMinority is the largest minority size for which balancing is skipped.
	MinMinority int
	// NeighborOffset gives k = minority - NeighborOffset.
	NeighborOffset int
}

// DefaultPolicy skips single-member minorities and uses k = minority - 1.
func DefaultPolicy() Policy {
	return Policy{MinMinority: 1, NeighborOffset: 1}
}

// Neighbors returns the neighbour count for a minority class of size m, and
// false when balancing should be skipped.
func (p Policy) Neighbors(m int) (int, bool) {
	if m <= p.MinMinority || m < 2 {
		return 0, false
	}
	k := m - p.NeighborOffset
	if k > m-1 {
		k = m - 1
	}
	if k < 1 {
		k = 1
	}
	return k, true
}

// MinorityCount returns the size of the smallest class in y.
func MinorityCount(y []string) int {
	counts := classCounts(y)
	min := 0
	for _, n := range counts {
		if min == 0 || n < min {
			min = n
		}
	}
	return min
}

// SMOTE generates synthetic samples by interpolating between a sample and one
// of its K nearest same-class neighbours.
type SMOTE struct {
	K    int
	Seed int64
}

// Resample returns X and y extended so every class has as many samples as the
// majority class. Original samples come first, in their original order.
func (s SMOTE) Resample(X []sparse.Vector, y []string) ([]sparse.Vector, []string) {
	counts := classCounts(y)
	target := 0
	for _, n := range counts {
		if n > target {
			target = n
		}
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(s.Seed))
	outX := append([]sparse.Vector(nil), X...)
	outY := append([]string(nil), y...)

	for _, label := range labels {
		need := target - counts[label]
		if need == 0 {
			continue
		}
		var members []sparse.Vector
		for i, l := range y {
			if l == label {
				members = append(members, X[i])
			}
		}
		k := s.K
		if k > len(members)-1 {
			k = len(members) - 1
		}
		if k < 1 {
			continue
		}
		nn := nearestNeighbors(members, k)
		for n := 0; n < need; n++ {
			row := rng.Intn(len(members) * k)
			i, j := row/k, nn[row/k][row%k]
			gap := rng.Float64()
			outX = append(outX, sparse.Interpolate(members[i], members[j], gap))
			outY = append(outY, label)
		}
	}
	return outX, outY
}

// nearestNeighbors returns, for each member, the indices of its k closest other
// members by euclidean distance, ties broken by index.
func nearestNeighbors(members []sparse.Vector, k int) [][]int {
	out := make([][]int, len(members))
	for i := range members {
		type cand struct {
			j int
			d float64
		}
		cands := make([]cand, 0, len(members)-1)
		for j := range members {
			if j != i {
				cands = append(cands, cand{j, members[i].SquaredDistance(members[j])})
			}
		}
		sort.Slice(cands, func(a, b int) bool {
			if cands[a].d != cands[b].d {
				return cands[a].d < cands[b].d
			}
			return cands[a].j < cands[b].j
		})
		out[i] = make([]int, k)
		for n := 0; n < k; n++ {
			out[i][n] = cands[n].j
		}
	}
	return out
}

func classCounts(y []string) map[string]int {
	counts := make(map[string]int)
	for _, l := range y {
		counts[l]++
	}
	return counts
}
