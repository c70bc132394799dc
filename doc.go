// Package hashlearn provides out-of-core text classification for Go:
// a stateless hashing vectorizer paired with an online passive-aggressive
// linear classifier, trained batch-by-batch from unbounded streams.
//
// The library follows a scikit-learn-like API so that engineers familiar
// with Python's ecosystem can build streaming learning pipelines in Go.
//
// # Features
//
// - Bounded Memory: fixed hash space, no growing vocabulary table
// - Streaming Updates: passive-aggressive mini-batch learning, never re-reads past data
// - Concurrency Safe: stateless hashing parallelized per sample, atomic model updates
// - scikit-learn-like API: Fit / PartialFit / Predict / Score
// - Robust Error Handling: structured error types with stack traces
//
// # Installation
//
// Install hashlearn using go get:
//
//	go get github.com/YuminosukeSato/hashlearn
//
// # Quick Start
//
// Hash texts into a fixed feature space and train incrementally:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/hashlearn/sklearn/feature_extraction"
//	    "github.com/YuminosukeSato/hashlearn/sklearn/linear_model"
//	)
//
//	func main() {
//	    hv, err := feature_extraction.NewHashingVectorizer(1 << 20)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    clf := linear_model.NewPassiveAggressiveClassifier(
//	        linear_model.WithPAClasses([]int{-1, 1}),
//	    )
//
//	    texts := []string{"great product", "terrible service"}
//	    labels := []int{1, -1}
//	    if err := clf.PartialFitSparse(hv.Transform(texts), labels); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := clf.PredictSparse(hv.TransformOne("really great"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Prediction:", pred)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - sklearn/feature_extraction: hashing trick text vectorizer
//   - sklearn/linear_model: passive-aggressive online classifier
//   - sklearn/drift: concept drift detection (DDM)
//   - outofcore: batch/validation training loop over text streams
//   - metrics: evaluation metrics (accuracy, AUC, log loss)
//   - core/model: core interfaces, sparse vectors, persistence
//   - core/parallel: parallel processing utilities
//
// # Streaming
//
// The outofcore.Trainer couples the vectorizer and classifier and consumes
// labeled text batches from a channel:
//
//	trainer, _ := outofcore.NewTrainer(hv, clf,
//	    outofcore.WithValidationSet(valTexts, valLabels),
//	    outofcore.WithEvalEvery(10),
//	)
//	err := trainer.Run(ctx, batchChan)
//
// Cancellation between batches leaves the model valid: a batch either fully
// applies or fully fails before any weight mutation.
//
// # License
//
// hashlearn is released under the MIT License.
package hashlearn
