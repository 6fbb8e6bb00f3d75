package entities

import "math"

// Class labels derived from the classifier's binary output.
const (
	ClassDepressed    = "Depressed"
	ClassNotDepressed = "Not Depressed"
)

// Severity is the final screening label.
type Severity string

const (
	SeveritySevere   Severity = "Severe Depression"
	SeverityModerate Severity = "Moderate Depression"
	SeverityMild     Severity = "Mild Depression"
	SeverityNone     Severity = "No Depression"
)

// Confidence bucket lower bounds. Each bound is inclusive.
const (
	SevereThreshold   = 0.85
	ModerateThreshold = 0.70
	MildThreshold     = 0.55
)

// Severities lists every label ApplyThreshold can return.
func Severities() []Severity {
	return []Severity{SeveritySevere, SeverityModerate, SeverityMild, SeverityNone}
}

// PredictionResult is the response body of a successful prediction.
type PredictionResult struct {
	Prediction     int      `json:"prediction"`
	PredictedClass string   `json:"predicted_class"`
	Confidence     float64  `json:"confidence"`
	FinalClass     Severity `json:"final_class"`
}

// ClassLabel maps the classifier output to its human label. Only 1 is
// "Depressed"; every other value reads as "Not Depressed".
func ClassLabel(prediction int) string {
	if prediction == 1 {
		return ClassDepressed
	}
	return ClassNotDepressed
}

// ApplyThreshold maps a predicted class and its confidence onto the severity
// table. For "Not Depressed" the scale is mirrored: low confidence in a
// negative result is read as strong suspicion of depression.
func ApplyThreshold(predictedClass string, confidence float64) Severity {
	if predictedClass == ClassDepressed {
		switch {
		case confidence >= SevereThreshold:
			return SeveritySevere
		case confidence >= ModerateThreshold:
			return SeverityModerate
		case confidence >= MildThreshold:
			return SeverityMild
		default:
			return SeverityNone
		}
	}

	switch {
	case confidence >= SevereThreshold:
		return SeverityNone
	case confidence >= ModerateThreshold:
		return SeverityMild
	case confidence >= MildThreshold:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// RoundConfidence rounds to four decimal places.
func RoundConfidence(confidence float64) float64 {
	return math.Round(confidence*10000) / 10000
}
