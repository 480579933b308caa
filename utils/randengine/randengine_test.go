package randengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	e := New(42)
	for range 20 {
		points := e.Partition(1000, 5, 50)
		require.Len(t, points, 6)
		assert.Equal(t, 0., points[0])
		assert.Equal(t, 1000., points[5])
		for i := 1; i < len(points); i++ {
			assert.GreaterOrEqual(t, points[i]-points[i-1], 50-1e-9)
		}
	}
}

func TestPartitionPanicsWhenTooShort(t *testing.T) {
	assert.Panics(t, func() { New(1).Partition(100, 5, 30) })
}

func TestReproducible(t *testing.T) {
	a, b := New(7), New(7)
	for range 10 {
		assert.Equal(t, a.Uniform(3, 5), b.Uniform(3, 5))
		assert.Equal(t, a.DiscreteDistribution([]float64{1, 2, 3}), b.DiscreteDistribution([]float64{1, 2, 3}))
	}
}

func TestDiscreteDistribution(t *testing.T) {
	e := New(3)
	for range 100 {
		assert.Equal(t, int32(1), e.DiscreteDistribution([]float64{0, 1, 0}))
		v := e.Uniform(2, 4)
		assert.GreaterOrEqual(t, v, 2.)
		assert.Less(t, v, 4.)
	}
	assert.False(t, e.PTrue(0))
}
