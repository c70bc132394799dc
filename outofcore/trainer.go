// Package outofcore couples a stateless text vectorizer with an online
// classifier and drives training from an unbounded batch stream.
//
// The trainer owns no model state of its own: the classifier's weight vector
// is the only state carried across batches. Hashing is parallelized per
// sample; updates are applied strictly in stream order because they are not
// commutative.
package outofcore

import (
	"context"
	"sync"
	"time"

	"github.com/YuminosukeSato/hashlearn/core/model"
	"github.com/YuminosukeSato/hashlearn/pkg/errors"
	"github.com/YuminosukeSato/hashlearn/pkg/log"
	"github.com/YuminosukeSato/hashlearn/sklearn/drift"
)

// ProgressRecord captures the trainer state at one validation point.
type ProgressRecord struct {
	BatchesSeen   int           // Batches consumed from the stream so far
	SamplesSeen   int           // Samples consumed from the stream so far
	Accuracy      float64       // Held-out validation accuracy
	Elapsed       time.Duration // Wall time since Run started
	DriftWarning  bool          // Drift detector warning state at this point
	DriftDetected bool          // Drift detector out-of-control state at this point
}

// Trainer consumes labeled text batches from a channel, hashes each batch
// into the fixed feature space, applies one incremental update per batch,
// and periodically scores a held-out validation set.
//
// Run applies updates sequentially; cancellation between batches leaves the
// classifier valid and usable (a batch either fully applies or fully fails
// before any weight mutation).
type Trainer struct {
	vectorizer model.TextVectorizer
	classifier model.OnlineClassifier

	// Held-out validation set, hashed once up front.
	valVecs   []model.SparseVector
	valLabels []int

	evalEvery int
	detector  drift.Detector
	logger    log.Logger

	// Counters and history are read by callers while Run is in flight.
	mu          sync.RWMutex
	batchesSeen int
	samplesSeen int
	lastEvalAt  int
	history     []ProgressRecord
}

// TrainerOption is a Trainer configuration option.
type TrainerOption func(*Trainer)

// WithValidationSet sets the held-out texts and labels scored at every
// validation point. The texts are hashed once when the trainer is built.
func WithValidationSet(texts []string, labels []int) TrainerOption {
	return func(t *Trainer) {
		t.valVecs = t.vectorizer.Transform(texts)
		t.valLabels = append([]int(nil), labels...)
	}
}

// WithEvalEvery sets the validation cadence in batches (default: 10).
func WithEvalEvery(n int) TrainerOption {
	return func(t *Trainer) {
		t.evalEvery = n
	}
}

// WithDriftDetector attaches a drift detector fed prequentially: each
// incoming sample is first predicted with the current weights, the outcome
// is fed to the detector, and only then is the batch used for the update.
func WithDriftDetector(d drift.Detector) TrainerOption {
	return func(t *Trainer) {
		t.detector = d
	}
}

// NewTrainer creates a trainer around an existing vectorizer and classifier.
func NewTrainer(vectorizer model.TextVectorizer, classifier model.OnlineClassifier, options ...TrainerOption) (*Trainer, error) {
	if vectorizer == nil {
		return nil, errors.NewValidationError("vectorizer", "must not be nil", nil)
	}
	if classifier == nil {
		return nil, errors.NewValidationError("classifier", "must not be nil", nil)
	}

	t := &Trainer{
		vectorizer: vectorizer,
		classifier: classifier,
		evalEvery:  10,
		logger: log.GetLoggerWithName("outofcore.Trainer").With(
			log.FeaturesKey, vectorizer.NFeatures(),
		),
	}

	for _, opt := range options {
		opt(t)
	}

	if t.evalEvery <= 0 {
		return nil, errors.NewValidationError("eval_every", "must be a positive integer", t.evalEvery)
	}
	if len(t.valVecs) != len(t.valLabels) {
		return nil, errors.NewDimensionError("NewTrainer", len(t.valVecs), len(t.valLabels), 0)
	}

	return t, nil
}

// Run consumes batches until the channel is closed or the context is
// canceled. On cancellation it returns ctx.Err(); the classifier keeps the
// weights from all fully applied batches.
//
// A batch with a label outside the declared class set fails the whole run
// before mutating any weights.
func (t *Trainer) Run(ctx context.Context, batches <-chan *model.TextBatch) error {
	start := time.Now()
	t.logger.Info("training stream started",
		log.OperationKey, log.OperationPartialFit,
		log.PhaseKey, log.PhaseTraining,
	)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("training stream canceled",
				log.BatchesSeenKey, t.batchesSeen,
				log.SamplesSeenKey, t.samplesSeen,
			)
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				// Clean close: take a final validation point so the
				// history always reflects the finished model.
				if len(t.valVecs) > 0 && t.lastEvalAt != t.batchesSeen {
					if err := t.validate(start); err != nil {
						return err
					}
				}
				t.logger.Info("training stream finished",
					log.BatchesSeenKey, t.batchesSeen,
					log.SamplesSeenKey, t.samplesSeen,
					log.DurationMsKey, time.Since(start).Milliseconds(),
				)
				return nil
			}

			if batch == nil || batch.Len() == 0 {
				continue
			}
			if err := t.processBatch(batch); err != nil {
				return err
			}
			if t.batchesSeen%t.evalEvery == 0 && len(t.valVecs) > 0 {
				if err := t.validate(start); err != nil {
					return err
				}
			}
		}
	}
}

func (t *Trainer) processBatch(batch *model.TextBatch) error {
	if len(batch.Texts) != len(batch.Labels) {
		return errors.NewDimensionError("Trainer.Run", len(batch.Texts), len(batch.Labels), 0)
	}

	// Hashing has no shared state, so samples fan out across cores.
	vecs := t.vectorizer.Transform(batch.Texts)

	t.feedDetector(vecs, batch.Labels)

	if err := t.classifier.PartialFitSparse(vecs, batch.Labels); err != nil {
		return errors.Wrap(err, "outofcore: batch rejected")
	}

	t.mu.Lock()
	t.batchesSeen++
	t.samplesSeen += batch.Len()
	t.mu.Unlock()
	return nil
}

// feedDetector runs the prequential (test-then-train) step: predict each
// sample with the current weights and feed the outcome to the detector.
// Skipped while the classifier is still uninitialized.
func (t *Trainer) feedDetector(vecs []model.SparseVector, labels []int) {
	if t.detector == nil {
		return
	}

	for i, v := range vecs {
		pred, err := t.classifier.PredictSparse(v)
		if err != nil {
			// First batch before the ready transition; nothing to test yet.
			return
		}
		res := t.detector.Update(pred == labels[i])
		if res.DriftDetected {
			warning := errors.NewModelDriftWarning("ddm", res.ErrorRate, res.ConfidenceLevel, "detector statistics reset")
			errors.Warn(warning)
			t.logger.Warn("concept drift detected",
				log.BatchesSeenKey, t.batchesSeen,
				log.DriftScoreKey, res.ErrorRate,
			)
		}
	}
}

func (t *Trainer) validate(start time.Time) error {
	acc, err := t.classifier.ScoreSparse(t.valVecs, t.valLabels)
	if err != nil {
		return errors.Wrap(err, "outofcore: validation failed")
	}

	rec := ProgressRecord{
		BatchesSeen: t.batchesSeen,
		SamplesSeen: t.samplesSeen,
		Accuracy:    acc,
		Elapsed:     time.Since(start),
	}
	if t.detector != nil {
		if stats, ok := t.detector.(interface{ GetStatistics() drift.DDMStatistics }); ok {
			s := stats.GetStatistics()
			rec.DriftWarning = s.WarningDetected
			rec.DriftDetected = s.DriftDetected
		}
	}

	t.mu.Lock()
	t.lastEvalAt = rec.BatchesSeen
	t.history = append(t.history, rec)
	t.mu.Unlock()

	t.logger.Info("validation checkpoint",
		log.PhaseKey, log.PhaseValidation,
		log.BatchesSeenKey, rec.BatchesSeen,
		log.SamplesSeenKey, rec.SamplesSeen,
		log.AccuracyKey, rec.Accuracy,
		log.DurationMsKey, rec.Elapsed.Milliseconds(),
	)
	return nil
}

// History returns a copy of all validation checkpoints recorded so far.
func (t *Trainer) History() []ProgressRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ProgressRecord, len(t.history))
	copy(out, t.history)
	return out
}

// BatchesSeen returns the number of batches consumed from the stream.
func (t *Trainer) BatchesSeen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.batchesSeen
}

// SamplesSeen returns the number of samples consumed from the stream.
func (t *Trainer) SamplesSeen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.samplesSeen
}

// SliceBatches cuts parallel text/label slices into batches of the given
// size. The last batch may be shorter. Useful for feeding Run from data
// already in memory.
func SliceBatches(texts []string, labels []int, size int) ([]*model.TextBatch, error) {
	if len(texts) != len(labels) {
		return nil, errors.NewDimensionError("SliceBatches", len(texts), len(labels), 0)
	}
	if size <= 0 {
		return nil, errors.NewValidationError("batch_size", "must be a positive integer", size)
	}

	var out []*model.TextBatch
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, &model.TextBatch{
			Texts:  texts[start:end],
			Labels: labels[start:end],
		})
	}
	return out, nil
}
