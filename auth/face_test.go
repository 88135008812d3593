package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votechain/models"
)

func descriptorOf(value float64) models.Descriptor {
	d := make(models.Descriptor, models.MinDescriptorLength)
	for i := range d {
		d[i] = value
	}
	return d
}

func TestEuclideanMatcherIdentical(t *testing.T) {
	m := NewEuclideanMatcher()

	result, err := m.Match(descriptorOf(0.5), descriptorOf(0.5))
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.Equal(t, 0.0, result.Distance)
	assert.Equal(t, 100.0, result.Confidence)
}

func TestEuclideanMatcherNearAndFar(t *testing.T) {
	m := NewEuclideanMatcher()
	enrolled := descriptorOf(0.5)

	near := descriptorOf(0.5)
	near[0] += 0.3 // distance 0.3, inside the threshold
	result, err := m.Match(enrolled, near)
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.InDelta(t, 0.3, result.Distance, 1e-9)
	assert.InDelta(t, 70.0, result.Confidence, 1e-6)

	far := descriptorOf(1.5) // distance sqrt(128), far beyond the threshold
	result, err = m.Match(enrolled, far)
	require.NoError(t, err)
	assert.False(t, result.Match)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestEuclideanMatcherRejectsBadInput(t *testing.T) {
	m := NewEuclideanMatcher()

	_, err := m.Match(descriptorOf(0.5), descriptorOf(0.5)[:64])
	assert.ErrorContains(t, err, "length mismatch")

	_, err = m.Match(nil, descriptorOf(0.5))
	assert.ErrorContains(t, err, "empty")

	_, err = m.Match(descriptorOf(0.5), nil)
	assert.ErrorContains(t, err, "empty")
}
