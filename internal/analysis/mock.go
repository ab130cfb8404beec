package analysis

import (
	"context"
	"crypto/sha256"
	"fmt"
)

// Mock is a deterministic stand-in for the classification service used in
// local mode and tests. The classification is derived from the image's
// SHA-256 digest, so the same bytes always produce the same result. It
// emits the flat legacy shape, matching the generation the mock replaced.
type Mock struct{}

// NewMock creates a deterministic mock analyzer.
func NewMock() *Mock {
	return &Mock{}
}

var mockAssessments = []LesionAssessment{LesionNone, LesionLow, LesionModerate, LesionHigh}

// Classify derives a stable classification from the image digest.
func (m *Mock) Classify(ctx context.Context, image []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(image)

	tz := TZType(fmt.Sprintf("Type %d", int(sum[0])%3+1))
	assessment := mockAssessments[int(sum[1])%len(mockAssessments)]
	risk := int(sum[2]) % 101
	sufficient := true

	return &Result{
		TZType:           tz,
		LesionAssessment: assessment,
		LesionSummary: fmt.Sprintf(
			"Deterministic mock assessment: %s lesion likelihood, transformation zone %s.",
			assessment, tz,
		),
		RiskScore:              &risk,
		ImageQuality:           "acceptable",
		ImageQualitySufficient: &sufficient,
	}, nil
}
