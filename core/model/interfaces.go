package model

import (
	"gonum.org/v1/gonum/mat"
)

// Predictor is the interface for models that can predict labels for input data.
type Predictor interface {
	// Predict returns predicted class labels for X, one row per sample.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute an evaluation score.
type Scorer interface {
	// Score returns the mean accuracy of the predictions on X against y.
	// Scoring never mutates the model; scoring the same batch twice without
	// an intervening update yields identical results.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// IncrementalLearner is the interface for models that support incremental
// (out-of-core) learning, one mini-batch at a time.
type IncrementalLearner interface {
	// PartialFit applies one sequential pass over the given mini-batch.
	// classes declares the full label set and is required on the first call;
	// subsequent calls may pass nil.
	PartialFit(X mat.Matrix, y mat.Matrix, classes []int) error
}

// OnlineClassifier combines the capabilities of a streaming classifier:
// incremental updates, prediction, and read-only scoring.
type OnlineClassifier interface {
	IncrementalLearner
	Predictor
	Scorer

	// PartialFitSparse applies one sequential pass over hashed sparse
	// samples. This is the path the out-of-core trainer uses.
	PartialFitSparse(vecs []SparseVector, labels []int) error

	// PredictSparse returns the predicted label for a single sparse sample.
	PredictSparse(v SparseVector) (int, error)

	// ScoreSparse returns the fraction of sparse samples whose prediction
	// matches the given label.
	ScoreSparse(vecs []SparseVector, labels []int) (float64, error)

	// Classes returns the declared class labels.
	Classes() []int
}

// TextVectorizer is the interface for stateless text-to-vector transforms.
// Implementations must be pure functions of their configuration and input,
// safe for concurrent use without synchronization.
type TextVectorizer interface {
	// TransformOne converts one text sample into a sparse feature vector of
	// exactly NFeatures dimensions.
	TransformOne(text string) SparseVector

	// Transform converts a batch of text samples.
	Transform(texts []string) []SparseVector

	// NFeatures returns the fixed output dimensionality.
	NFeatures() int
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
