package entities

// FeatureCount is the number of SRQ-20 items.
const FeatureCount = 20

// FeatureNames lists the SRQ-20 items in the order the classifier was trained on.
var FeatureNames = [FeatureCount]string{
	"headache",
	"appetite",
	"sleep",
	"fear",
	"shaking",
	"nervous",
	"digestion",
	"troubled",
	"unhappy",
	"cry",
	"enjoyment",
	"decisions",
	"work",
	"play",
	"interest",
	"worthless",
	"suicide",
	"tiredness",
	"uncomfortable",
	"easily_tired",
}

// Questionnaire holds one set of SRQ-20 responses. Values are 0/1 by
// convention but any integer is accepted.
type Questionnaire struct {
	Headache      int `json:"headache"`
	Appetite      int `json:"appetite"`
	Sleep         int `json:"sleep"`
	Fear          int `json:"fear"`
	Shaking       int `json:"shaking"`
	Nervous       int `json:"nervous"`
	Digestion     int `json:"digestion"`
	Troubled      int `json:"troubled"`
	Unhappy       int `json:"unhappy"`
	Cry           int `json:"cry"`
	Enjoyment     int `json:"enjoyment"`
	Decisions     int `json:"decisions"`
	Work          int `json:"work"`
	Play          int `json:"play"`
	Interest      int `json:"interest"`
	Worthless     int `json:"worthless"`
	Suicide       int `json:"suicide"`
	Tiredness     int `json:"tiredness"`
	Uncomfortable int `json:"uncomfortable"`
	EasilyTired   int `json:"easily_tired"`
}

// Answers returns the responses in FeatureNames order.
func (q *Questionnaire) Answers() [FeatureCount]int {
	return [FeatureCount]int{
		q.Headache,
		q.Appetite,
		q.Sleep,
		q.Fear,
		q.Shaking,
		q.Nervous,
		q.Digestion,
		q.Troubled,
		q.Unhappy,
		q.Cry,
		q.Enjoyment,
		q.Decisions,
		q.Work,
		q.Play,
		q.Interest,
		q.Worthless,
		q.Suicide,
		q.Tiredness,
		q.Uncomfortable,
		q.EasilyTired,
	}
}

// QuestionnaireFromAnswers is the inverse of Answers.
func QuestionnaireFromAnswers(a [FeatureCount]int) Questionnaire {
	return Questionnaire{
		Headache:      a[0],
		Appetite:      a[1],
		Sleep:         a[2],
		Fear:          a[3],
		Shaking:       a[4],
		Nervous:       a[5],
		Digestion:     a[6],
		Troubled:      a[7],
		Unhappy:       a[8],
		Cry:           a[9],
		Enjoyment:     a[10],
		Decisions:     a[11],
		Work:          a[12],
		Play:          a[13],
		Interest:      a[14],
		Worthless:     a[15],
		Suicide:       a[16],
		Tiredness:     a[17],
		Uncomfortable: a[18],
		EasilyTired:   a[19],
	}
}

// Features projects the responses into the classifier's input vector.
func (q *Questionnaire) Features() []float64 {
	answers := q.Answers()
	features := make([]float64, FeatureCount)
	for i, v := range answers {
		features[i] = float64(v)
	}
	return features
}

// TotalScore is the conventional SRQ-20 sum of endorsed items.
func (q *Questionnaire) TotalScore() int {
	total := 0
	for _, v := range q.Answers() {
		total += v
	}
	return total
}
