package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skufu/medirec/internal/sparse"
)

func vec(idx int, val float64) sparse.Vector {
	return sparse.Vector{Indices: []int{idx}, Values: []float64{val}}
}

func TestPolicyNeighbors(t *testing.T) {
	p := DefaultPolicy()

	_, ok := p.Neighbors(1)
	assert.False(t, ok)

	k, ok := p.Neighbors(2)
	assert.True(t, ok)
	assert.Equal(t, 1, k)

	k, ok = p.Neighbors(6)
	assert.True(t, ok)
	assert.Equal(t, 5, k)

	k, ok = Policy{MinMinority: 1, NeighborOffset: 0}.Neighbors(4)
	assert.True(t, ok)
	assert.Equal(t, 3, k, "k never exceeds available neighbours")

	_, ok = Policy{MinMinority: 3, NeighborOffset: 1}.Neighbors(3)
	assert.False(t, ok)
}

func TestMinorityCount(t *testing.T) {
	assert.Equal(t, 1, MinorityCount([]string{"a", "b", "b"}))
	assert.Equal(t, 2, MinorityCount([]string{"a", "a", "b", "b", "b"}))
	assert.Equal(t, 0, MinorityCount(nil))
}

func TestResampleReachesParity(t *testing.T) {
	X := []sparse.Vector{vec(0, 1), vec(0, 2), vec(0, 3), vec(0, 4), vec(1, 1), vec(1, 2)}
	y := []string{"major", "major", "major", "major", "minor", "minor"}

	outX, outY := SMOTE{K: 1, Seed: 42}.Resample(X, y)

	assert.Len(t, outX, 8)
	assert.Equal(t, y, outY[:6], "originals are kept in order")
	counts := classCounts(outY)
	assert.Equal(t, 4, counts["major"])
	assert.Equal(t, 4, counts["minor"])

	for _, x := range outX[6:] {
		// interpolated between (1,1) and (1,2)
		assert.Equal(t, []int{1}, x.Indices)
		assert.GreaterOrEqual(t, x.Values[0], 1.0)
		assert.LessOrEqual(t, x.Values[0], 2.0)
	}
}

func TestResampleDeterministic(t *testing.T) {
	X := []sparse.Vector{vec(0, 1), vec(0, 2), vec(0, 3), vec(1, 1), vec(1, 5)}
	y := []string{"a", "a", "a", "b", "b"}

	x1, _ := SMOTE{K: 1, Seed: 7}.Resample(X, y)
	x2, _ := SMOTE{K: 1, Seed: 7}.Resample(X, y)
	assert.Equal(t, x1, x2)
}

func TestResampleBalancedInputUnchanged(t *testing.T) {
	X := []sparse.Vector{vec(0, 1), vec(0, 2), vec(1, 1), vec(1, 2)}
	y := []string{"a", "a", "b", "b"}

	outX, outY := SMOTE{K: 1, Seed: 1}.Resample(X, y)
	assert.Equal(t, X, outX)
	assert.Equal(t, y, outY)
}

func TestNearestNeighbors(t *testing.T) {
	members := []sparse.Vector{vec(0, 0), vec(0, 1), vec(0, 5)}
	nn := nearestNeighbors(members, 1)
	assert.Equal(t, [][]int{{1}, {0}, {1}}, nn)
}
