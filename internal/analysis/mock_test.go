package analysis_test

import (
	"context"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cerviguard/console/internal/analysis"
)

func TestMockClassifyDeterministic(t *testing.T) {
	mock := analysis.NewMock()
	image := []byte("the same image bytes")

	first, err := mock.Classify(context.Background(), image)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	second, err := mock.Classify(context.Background(), image)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same bytes produced different results (-first +second):\n%s", diff)
	}
}

func TestMockClassifyBounds(t *testing.T) {
	mock := analysis.NewMock()

	inputs := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("colposcopy-frame-001"),
		[]byte("colposcopy-frame-002"),
	}

	validTZ := []analysis.TZType{analysis.TZType1, analysis.TZType2, analysis.TZType3}
	validAssessments := []analysis.LesionAssessment{
		analysis.LesionNone, analysis.LesionLow, analysis.LesionModerate, analysis.LesionHigh,
	}

	for _, input := range inputs {
		result, err := mock.Classify(context.Background(), input)
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", input, err)
		}

		if result.Structured() {
			t.Errorf("Classify(%q) produced structured shape, want flat", input)
		}
		if !slices.Contains(validTZ, result.TZType) {
			t.Errorf("Classify(%q) TZType = %q, not a valid type", input, result.TZType)
		}
		if !slices.Contains(validAssessments, result.LesionAssessment) {
			t.Errorf("Classify(%q) LesionAssessment = %q, not a valid assessment", input, result.LesionAssessment)
		}
		if result.RiskScore == nil || *result.RiskScore < 0 || *result.RiskScore > 100 {
			t.Errorf("Classify(%q) RiskScore = %v, want within [0, 100]", input, result.RiskScore)
		}
		if result.LesionSummary == "" {
			t.Errorf("Classify(%q) produced empty summary", input)
		}
	}
}

func TestMockClassifyCancelledContext(t *testing.T) {
	mock := analysis.NewMock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Classify(ctx, []byte("image")); err == nil {
		t.Error("Classify() with cancelled context returned nil error")
	}
}
