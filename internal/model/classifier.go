package model

// Classifier defines the boundary to the inference collaborator.
// Predict is synchronous and side-effect free from the caller's
// perspective; label = probability >= threshold, per model.
type Classifier interface {
	Predict(fv FeatureVector, threshold float64) ([]ClassificationResult, error)
}
