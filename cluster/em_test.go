package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/omredit/cluster"
)

func TestEM_TwoGroups(t *testing.T) {
	// letter gaps around 2, word gaps around 12
	samples := []float64{1, 2, 2, 3, 2, 1, 3, 11, 12, 13, 12}
	m, err := cluster.EM(samples,
		[]float64{0.5, 0.5},
		[]cluster.Gaussian{{Mean: 0, Sigma: 5}, {Mean: 20, Sigma: 5}})
	require.NoError(t, err)

	assert.LessOrEqual(t, m.Iterations, cluster.MaxIterations)
	assert.InDelta(t, 2.0, m.Laws[0].Mean, 0.2)
	assert.InDelta(t, 12.0, m.Laws[1].Mean, 0.2)
	assert.InDelta(t, 7.0/11, m.Pi[0], 0.02)
	assert.InDelta(t, 1.0, m.Pi[0]+m.Pi[1], 1e-9)

	assert.Equal(t, 0, m.Classify(2.5))
	assert.Equal(t, 1, m.Classify(10))
}

func TestEM_Errors(t *testing.T) {
	_, err := cluster.EM(nil, []float64{1}, []cluster.Gaussian{{Sigma: 1}})
	require.ErrorIs(t, err, cluster.ErrNoSamples)

	_, err = cluster.EM([]float64{1}, []float64{1, 0}, []cluster.Gaussian{{Sigma: 1}})
	require.ErrorIs(t, err, cluster.ErrComponentMismatch)
}

func TestEM_DoesNotMutateInputs(t *testing.T) {
	pi := []float64{0.3, 0.7}
	laws := []cluster.Gaussian{{Mean: 0, Sigma: 1}, {Mean: 5, Sigma: 1}}
	_, err := cluster.EM([]float64{0, 0.5, 5, 5.5}, pi, laws)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.7}, pi)
	assert.Equal(t, cluster.Gaussian{Mean: 5, Sigma: 1}, laws[1])
}
