package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Batch represents a dense data batch for streaming learning.
type Batch struct {
	X mat.Matrix // Feature matrix
	Y mat.Matrix // Target matrix
}

// TextBatch represents one atomic unit of labeled raw text consumed from an
// input stream. Texts and Labels are parallel slices; a batch is either
// applied in full or rejected in full by the consumer.
type TextBatch struct {
	Texts  []string
	Labels []int
}

// Len returns the number of samples in the batch.
func (b *TextBatch) Len() int {
	return len(b.Texts)
}

// StreamingEstimator provides channel-based streaming learning interface.
type StreamingEstimator interface {
	IncrementalLearner

	// FitStream trains the model from a data stream.
	// Continues learning until the context is canceled or the channel is closed.
	FitStream(ctx context.Context, dataChan <-chan *Batch) error
}
