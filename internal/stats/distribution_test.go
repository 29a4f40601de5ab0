package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	values := []float64{10, 2, 8, 4, 6}
	d := Describe(values)

	assert.Equal(t, 5, d.Count)
	assert.InDelta(t, 6.0, d.Mean, 1e-9)
	assert.Equal(t, 2.0, d.Min)
	assert.Equal(t, 6.0, d.P50)
	assert.InDelta(t, 9.2, d.P90, 1e-9)
	assert.Equal(t, 10.0, d.Max)

	// input order is preserved
	assert.Equal(t, []float64{10, 2, 8, 4, 6}, values)
}

func TestDescribeEmpty(t *testing.T) {
	assert.Equal(t, Distribution{}, Describe(nil))
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 4.0, Quantile(values, 1))
	assert.InDelta(t, 2.5, Quantile(values, 0.5), 1e-9)
	assert.Equal(t, 4.0, Quantile(values, 2))
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}
