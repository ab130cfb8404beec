// Package analysis implements the client for the external cervical image
// classification service and the normalization of its responses.
//
// The service contract has evolved through incompatible generations: the
// current API returns multi-class predictions for lesion severity and
// transformation zone, while the previous one returned a flat risk
// assessment. Both response shapes are recognized at the client boundary
// and mapped into the single Result representation below.
package analysis

import "context"

// TZType is the transformation-zone classification category.
type TZType string

// Transformation zone types.
const (
	TZType1 TZType = "Type 1"
	TZType2 TZType = "Type 2"
	TZType3 TZType = "Type 3"
)

// LesionAssessment is the severity categorization of a detected abnormality.
type LesionAssessment string

// Lesion assessment severities, ordered lowest to highest.
const (
	LesionNone     LesionAssessment = "none"
	LesionLow      LesionAssessment = "low"
	LesionModerate LesionAssessment = "moderate"
	LesionHigh     LesionAssessment = "high"
)

// Lesion classification labels for the structured shape.
var lesionLabels = []string{"Normal", "LSIL", "HSIL", "Cancer"}

// Transformation zone labels for the structured shape.
var tzLabels = []string{string(TZType1), string(TZType2), string(TZType3)}

// Prediction is a single class score within a ranked prediction list.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"classId"`
}

// ClassGroup holds the ranked predictions for one classification head
// along with its top label and confidence.
type ClassGroup struct {
	Predictions   []Prediction `json:"predictions"`
	TopLabel      string       `json:"topLabel"`
	TopConfidence float64      `json:"topConfidence"`
}

// ImageInfo describes the analyzed image as reported by the service.
type ImageInfo struct {
	Valid    bool `json:"valid"`
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Channels int  `json:"channels"`
}

// Result is the normalized case analysis outcome. Exactly one of the two
// shapes is populated: the structured multi-class shape (Lesion and
// TransformationZone set) or the flat legacy shape (TZType, LesionAssessment,
// and RiskScore set). The shapes are never mixed within one result.
type Result struct {
	// Structured shape.
	Lesion             *ClassGroup `json:"lesion,omitempty"`
	TransformationZone *ClassGroup `json:"transformationZone,omitempty"`
	ImageInfo          *ImageInfo  `json:"imageInfo,omitempty"`
	RequestID          string      `json:"requestId,omitempty"`
	ProcessedAt        int64       `json:"processedAt,omitempty"`
	ProcessorVersion   string      `json:"processorVersion,omitempty"`

	// Flat shape.
	TZType                 TZType           `json:"tzType,omitempty"`
	LesionAssessment       LesionAssessment `json:"lesionAssessment,omitempty"`
	LesionSummary          string           `json:"lesionSummary,omitempty"`
	RiskScore              *int             `json:"riskScore,omitempty"`
	ImageQuality           string           `json:"imageQuality,omitempty"`
	ImageQualitySufficient *bool            `json:"imageQualitySufficient,omitempty"`
}

// Structured reports whether the result carries the multi-class shape.
func (r *Result) Structured() bool {
	return r.Lesion != nil && r.TransformationZone != nil
}

// System is the contract the case lifecycle depends on: submit image bytes,
// receive a normalized result or a typed failure.
type System interface {
	Classify(ctx context.Context, image []byte) (*Result, error)
}
