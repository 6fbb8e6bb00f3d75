package entities

import "time"

// Assessment is the audit record of one prediction.
type Assessment struct {
	ID             string            `json:"id" db:"id"`
	ModelVersion   string            `json:"model_version" db:"model_version"`
	Answers        [FeatureCount]int `json:"answers" db:"answers"`
	TotalScore     int               `json:"total_score" db:"total_score"`
	Prediction     int               `json:"prediction" db:"prediction"`
	PredictedClass string            `json:"predicted_class" db:"predicted_class"`
	Confidence     float64           `json:"confidence" db:"confidence"`
	FinalClass     Severity          `json:"final_class" db:"final_class"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
}

// NewAssessment builds the audit record for a questionnaire and its result.
func NewAssessment(q *Questionnaire, result *PredictionResult, modelVersion string) *Assessment {
	return &Assessment{
		ModelVersion:   modelVersion,
		Answers:        q.Answers(),
		TotalScore:     q.TotalScore(),
		Prediction:     result.Prediction,
		PredictedClass: result.PredictedClass,
		Confidence:     result.Confidence,
		FinalClass:     result.FinalClass,
	}
}

// AnswerMap keys the answers by item name.
func (a *Assessment) AnswerMap() map[string]int {
	out := make(map[string]int, FeatureCount)
	for i, name := range FeatureNames {
		out[name] = a.Answers[i]
	}
	return out
}
