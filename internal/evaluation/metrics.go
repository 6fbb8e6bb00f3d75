package evaluation

// ConfusionMatrix counts binary outcomes with 1 as the positive class.
type ConfusionMatrix struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// Add records one prediction against its label.
func (m *ConfusionMatrix) Add(label, prediction int) {
	switch {
	case label == 1 && prediction == 1:
		m.TP++
	case label == 1:
		m.FN++
	case prediction == 1:
		m.FP++
	default:
		m.TN++
	}
}

// Total is the number of recorded predictions.
func (m ConfusionMatrix) Total() int {
	return m.TP + m.FP + m.TN + m.FN
}

// Accuracy is the fraction of correct predictions. Returns 0.0 when empty.
func (m ConfusionMatrix) Accuracy() float64 {
	return ratio(m.TP+m.TN, m.Total())
}

// Precision is TP / (TP + FP). Returns 0.0 when nothing was predicted positive.
func (m ConfusionMatrix) Precision() float64 {
	return ratio(m.TP, m.TP+m.FP)
}

// Recall is TP / (TP + FN). Returns 0.0 when there are no positive labels.
func (m ConfusionMatrix) Recall() float64 {
	return ratio(m.TP, m.TP+m.FN)
}

// F1 is the harmonic mean of precision and recall.
func (m ConfusionMatrix) F1() float64 {
	p, r := m.Precision(), m.Recall()
	if p+r == 0 {
		return 0.0
	}
	return 2 * p * r / (p + r)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0.0
	}
	return float64(num) / float64(den)
}
