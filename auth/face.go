package auth

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"votechain/models"
)

// MatchThreshold is the Euclidean distance below which two descriptors are
// considered the same face.
const MatchThreshold = 0.6

// MatchResult reports the outcome of a descriptor comparison. Confidence is
// max(0, (1-distance)*100).
type MatchResult struct {
	Match      bool
	Distance   float64
	Confidence float64
}

// DescriptorMatcher scores a probe descriptor against the enrolled one.
// Pluggable so a stronger verification backend can replace the distance
// heuristic without touching the callers.
type DescriptorMatcher interface {
	Match(enrolled, probe models.Descriptor) (MatchResult, error)
}

// EuclideanMatcher matches on raw Euclidean distance over equal-length
// vectors.
type EuclideanMatcher struct {
	Threshold float64
}

func NewEuclideanMatcher() *EuclideanMatcher {
	return &EuclideanMatcher{Threshold: MatchThreshold}
}

func (m *EuclideanMatcher) Match(enrolled, probe models.Descriptor) (MatchResult, error) {
	if len(enrolled) == 0 || len(probe) == 0 {
		return MatchResult{}, fmt.Errorf("empty face descriptor")
	}
	if len(enrolled) != len(probe) {
		return MatchResult{}, fmt.Errorf("descriptor length mismatch: %d vs %d", len(enrolled), len(probe))
	}

	distance := floats.Distance(enrolled, probe, 2)
	confidence := (1 - distance) * 100
	if confidence < 0 {
		confidence = 0
	}

	return MatchResult{
		Match:      distance < m.Threshold,
		Distance:   distance,
		Confidence: confidence,
	}, nil
}
