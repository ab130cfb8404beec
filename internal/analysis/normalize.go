package analysis

import (
	"log/slog"
	"math"
	"slices"
	"strings"
)

const defaultLesionSummary = "No analysis summary provided."

// normalize maps a decoded /predict response into a Result. It is
// deterministic: the only inputs are the response fields themselves.
//
// Out-of-whitelist categorical values do not fail the response; they are
// replaced with the lowest-severity default and reported through a warn
// event so data-quality degradation stays visible. Out-of-range numeric
// values are clamped, never rejected.
func normalize(logger *slog.Logger, resp *apiResponse) (*Result, error) {
	analysis := resp.Result.Analysis
	if analysis == nil {
		return nil, &SchemaError{Missing: "result.analysis"}
	}

	switch analysis.variant() {
	case variantStructured:
		return normalizeStructured(logger, &resp.Result, analysis)
	case variantFlat:
		return normalizeFlat(logger, analysis), nil
	default:
		return nil, &SchemaError{Missing: "result.analysis classification fields"}
	}
}

func normalizeStructured(logger *slog.Logger, res *apiResult, analysis *apiAnalysis) (*Result, error) {
	if analysis.Lesion == nil || len(analysis.Lesion.Predictions) == 0 {
		return nil, &SchemaError{Missing: "result.analysis.lesion.predictions"}
	}
	if analysis.TransformationZone == nil || len(analysis.TransformationZone.Predictions) == 0 {
		return nil, &SchemaError{Missing: "result.analysis.transformation_zone.predictions"}
	}

	out := &Result{
		Lesion:             normalizeGroup(logger, "lesion", analysis.Lesion, lesionLabels),
		TransformationZone: normalizeGroup(logger, "transformation_zone", analysis.TransformationZone, tzLabels),
		RequestID:          res.RequestID,
		ProcessedAt:        res.ProcessedAt,
		ProcessorVersion:   res.ProcessorVersion,
	}

	info := res.ImageInfo
	if info == nil {
		info = analysis.ImageInfo
	}
	if info != nil {
		out.ImageInfo = &ImageInfo{
			Valid:    info.Valid == nil || *info.Valid,
			Width:    info.Width,
			Height:   info.Height,
			Channels: info.Channels,
		}
	}

	return out, nil
}

func normalizeGroup(logger *slog.Logger, field string, group *apiClassGroup, labels []string) *ClassGroup {
	out := &ClassGroup{
		Predictions: make([]Prediction, 0, len(group.Predictions)),
	}

	for _, p := range group.Predictions {
		out.Predictions = append(out.Predictions, Prediction{
			Label:      normalizeLabel(logger, field, p.Label, labels),
			Confidence: clampConfidence(p.Confidence),
			ClassID:    p.ClassID,
		})
	}

	top := group.TopLabel
	if top == "" {
		top = out.Predictions[0].Label
	}
	out.TopLabel = normalizeLabel(logger, field+".top_label", top, labels)
	out.TopConfidence = clampConfidence(group.TopConfidence)

	return out
}

func normalizeFlat(logger *slog.Logger, analysis *apiAnalysis) *Result {
	tz := TZType(analysis.TZType)
	if !slices.Contains(tzLabels, string(tz)) {
		reportFallback(logger, "tz_type", analysis.TZType, string(TZType1))
		tz = TZType1
	}

	lesion := LesionAssessment(strings.ToLower(analysis.LesionAssessment))
	switch lesion {
	case LesionNone, LesionLow, LesionModerate, LesionHigh:
	default:
		reportFallback(logger, "lesion_assessment", analysis.LesionAssessment, string(LesionNone))
		lesion = LesionNone
	}

	summary := analysis.LesionSummary
	if summary == "" {
		summary = defaultLesionSummary
	}

	var raw float64
	if analysis.RiskScore != nil {
		raw = *analysis.RiskScore
	}
	risk := clampRiskScore(raw)

	out := &Result{
		TZType:                 tz,
		LesionAssessment:       lesion,
		LesionSummary:          summary,
		RiskScore:              &risk,
		ImageQuality:           analysis.ImageQuality,
		ImageQualitySufficient: analysis.ImageQualitySufficient,
	}

	if analysis.ImageInfo != nil {
		out.ImageInfo = &ImageInfo{
			Valid:    analysis.ImageInfo.Valid == nil || *analysis.ImageInfo.Valid,
			Width:    analysis.ImageInfo.Width,
			Height:   analysis.ImageInfo.Height,
			Channels: analysis.ImageInfo.Channels,
		}
	}

	return out
}

func normalizeLabel(logger *slog.Logger, field, label string, labels []string) string {
	if slices.Contains(labels, label) {
		return label
	}
	reportFallback(logger, field, label, labels[0])
	return labels[0]
}

// reportFallback emits the structured event that makes default substitution
// observable in production instead of silent.
func reportFallback(logger *slog.Logger, field, value, substituted string) {
	logger.Warn("unknown classification value substituted",
		"field", field,
		"value", value,
		"substituted", substituted,
	)
}

func clampConfidence(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func clampRiskScore(v float64) int {
	return int(math.Min(100, math.Max(0, math.Round(v))))
}
