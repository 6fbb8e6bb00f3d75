package providers

// Classifier is a pre-fitted binary classifier. Implementations must be safe
// for concurrent use; the server shares one instance across all requests.
type Classifier interface {
	// Predict returns the class label for a single feature row
	Predict(features []float64) (int, error)

	// PredictProba returns the class distribution for a single feature row,
	// ordered like Classes
	PredictProba(features []float64) ([]float64, error)

	// Classes returns the class labels known to the model
	Classes() []int

	// Version identifies the loaded artifact
	Version() string
}
