package analysis

// Wire types for the /predict response. Field presence varies by API
// generation; the variant is resolved once by schemaVariant rather than
// sniffing fields throughout the mapping code.

type apiResponse struct {
	Result apiResult `json:"result"`
}

type apiResult struct {
	Status           string       `json:"status"`
	RequestID        string       `json:"request_id"`
	Analysis         *apiAnalysis `json:"analysis"`
	ImageInfo        *apiImageInfo `json:"image_info"`
	Error            string       `json:"error"`
	ErrorCode        string       `json:"error_code"`
	ErrorType        string       `json:"error_type"`
	ErrorMessage     string       `json:"error_message"`
	ProcessedAt      int64        `json:"processed_at"`
	ProcessorVersion string       `json:"processor_version"`
}

type apiAnalysis struct {
	// Structured generation.
	Lesion             *apiClassGroup `json:"lesion"`
	TransformationZone *apiClassGroup `json:"transformation_zone"`

	// Flat generation.
	TZType                 string        `json:"tz_type"`
	LesionAssessment       string        `json:"lesion_assessment"`
	LesionSummary          string        `json:"lesion_summary"`
	RiskScore              *float64      `json:"risk_score"`
	ImageQuality           string        `json:"image_quality"`
	ImageQualitySufficient *bool         `json:"image_quality_sufficient"`
	ImageInfo              *apiImageInfo `json:"image_info"`
}

type apiClassGroup struct {
	Predictions   []apiPrediction `json:"predictions"`
	TopLabel      string          `json:"top_label"`
	TopConfidence float64         `json:"top_confidence"`
}

type apiPrediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
}

type apiImageInfo struct {
	Valid    *bool `json:"valid"`
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	Channels int   `json:"channels"`
}

type schemaVariant int

const (
	variantUnknown schemaVariant = iota
	variantStructured
	variantFlat
)

// variant resolves which schema generation the analysis payload belongs to.
func (a *apiAnalysis) variant() schemaVariant {
	switch {
	case a.Lesion != nil || a.TransformationZone != nil:
		return variantStructured
	case a.TZType != "" || a.LesionAssessment != "" || a.RiskScore != nil:
		return variantFlat
	default:
		return variantUnknown
	}
}
