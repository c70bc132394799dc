// Package log defines standard attribute keys for streaming learning operations.
//
// Using these keys consistently enables structured log analysis across the
// hashing, training and evaluation components. The keys follow a hierarchical
// naming convention (e.g. "model.name", "data.samples") to enable filtering.
package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "PassiveAggressiveClassifier", "HashingVectorizer"
	ModelNameKey = "model.name"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "transform", "partial_fit", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "feature_extraction", "linear_model", "outofcore"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	// Examples: "training", "validation", "inference"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the dimensionality of the hashed feature space.
	FeaturesKey = "data.features"

	// BatchSizeKey indicates the size of the current mini-batch.
	BatchSizeKey = "data.batch_size"

	// BatchesSeenKey counts the mini-batches consumed from the stream so far.
	BatchesSeenKey = "stream.batches_seen"

	// SamplesSeenKey counts the samples consumed from the stream so far.
	SamplesSeenKey = "stream.samples_seen"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records validation accuracy in [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// DriftScoreKey records the drift detector score at evaluation time.
	DriftScoreKey = "metrics.drift_score"
)

// Standard attribute value constants for common operations.
const (
	OperationFit        = "fit"
	OperationPredict    = "predict"
	OperationTransform  = "transform"
	OperationScore      = "score"
	OperationPartialFit = "partial_fit"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"
)
