package outofcore

import (
	"context"
	"testing"
	"time"

	"github.com/YuminosukeSato/hashlearn/core/model"
	"github.com/YuminosukeSato/hashlearn/pkg/errors"
	"github.com/YuminosukeSato/hashlearn/sklearn/drift"
	"github.com/YuminosukeSato/hashlearn/sklearn/feature_extraction"
	"github.com/YuminosukeSato/hashlearn/sklearn/linear_model"
)

// syntheticStream builds an easily separable two-class text stream.
func syntheticStream(n int) ([]string, []int) {
	posTexts := []string{
		"great excellent wonderful product",
		"good great amazing quality",
		"excellent wonderful good service",
	}
	negTexts := []string{
		"bad awful terrible product",
		"awful horrible bad quality",
		"terrible horrible awful service",
	}

	texts := make([]string, 0, n)
	labels := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			texts = append(texts, posTexts[i%len(posTexts)])
			labels = append(labels, 1)
		} else {
			texts = append(texts, negTexts[i%len(negTexts)])
			labels = append(labels, -1)
		}
	}
	return texts, labels
}

func sendAll(batches []*model.TextBatch) <-chan *model.TextBatch {
	ch := make(chan *model.TextBatch, len(batches))
	for _, b := range batches {
		ch <- b
	}
	close(ch)
	return ch
}

func TestTrainerRun(t *testing.T) {
	hv, err := feature_extraction.NewHashingVectorizer(1 << 12)
	if err != nil {
		t.Fatalf("NewHashingVectorizer failed: %v", err)
	}
	clf := linear_model.NewPassiveAggressiveClassifier(
		linear_model.WithPAClasses([]int{-1, 1}),
	)

	trainTexts, trainLabels := syntheticStream(200)
	valTexts, valLabels := syntheticStream(40)

	trainer, err := NewTrainer(hv, clf,
		WithValidationSet(valTexts, valLabels),
		WithEvalEvery(5),
	)
	if err != nil {
		t.Fatalf("NewTrainer failed: %v", err)
	}

	batches, err := SliceBatches(trainTexts, trainLabels, 20)
	if err != nil {
		t.Fatalf("SliceBatches failed: %v", err)
	}

	if err := trainer.Run(context.Background(), sendAll(batches)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if trainer.BatchesSeen() != 10 {
		t.Errorf("BatchesSeen = %d, want 10", trainer.BatchesSeen())
	}
	if trainer.SamplesSeen() != 200 {
		t.Errorf("SamplesSeen = %d, want 200", trainer.SamplesSeen())
	}

	history := trainer.History()
	if len(history) == 0 {
		t.Fatal("expected at least one validation checkpoint")
	}
	final := history[len(history)-1]
	if final.Accuracy < 0.95 {
		t.Errorf("final validation accuracy = %.3f, want >= 0.95", final.Accuracy)
	}
	if final.BatchesSeen != 10 || final.SamplesSeen != 200 {
		t.Errorf("final checkpoint counters = (%d, %d), want (10, 200)",
			final.BatchesSeen, final.SamplesSeen)
	}
}

func TestTrainerCancellation(t *testing.T) {
	hv, _ := feature_extraction.NewHashingVectorizer(1 << 10)
	clf := linear_model.NewPassiveAggressiveClassifier(
		linear_model.WithPAClasses([]int{-1, 1}),
	)
	trainer, err := NewTrainer(hv, clf)
	if err != nil {
		t.Fatalf("NewTrainer failed: %v", err)
	}

	texts, labels := syntheticStream(20)
	batches, _ := SliceBatches(texts, labels, 10)

	// Train on one batch, then cancel before the second is consumed.
	ch := make(chan *model.TextBatch)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- trainer.Run(ctx, ch)
	}()

	ch <- batches[0]
	// Wait for the first batch to be applied before canceling.
	for trainer.BatchesSeen() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; err != context.Canceled {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	// The model keeps the weights from the applied batch and stays usable.
	if !clf.IsFitted() {
		t.Fatal("classifier should remain fitted after cancellation")
	}
	vecs := hv.Transform(texts)
	if _, err := clf.ScoreSparse(vecs, labels); err != nil {
		t.Errorf("ScoreSparse after cancellation failed: %v", err)
	}
}

func TestTrainerMalformedBatchRejectsRun(t *testing.T) {
	hv, _ := feature_extraction.NewHashingVectorizer(1 << 10)
	clf := linear_model.NewPassiveAggressiveClassifier(
		linear_model.WithPAClasses([]int{-1, 1}),
	)
	trainer, err := NewTrainer(hv, clf)
	if err != nil {
		t.Fatalf("NewTrainer failed: %v", err)
	}

	texts, labels := syntheticStream(10)
	good := &model.TextBatch{Texts: texts, Labels: labels}
	bad := &model.TextBatch{
		Texts:  []string{"fine text", "rogue label"},
		Labels: []int{1, 7},
	}

	err = trainer.Run(context.Background(), sendAll([]*model.TextBatch{good, bad}))
	if err == nil {
		t.Fatal("expected error for label outside the declared class set")
	}
	var mbe *errors.MalformedBatchError
	if !errors.As(err, &mbe) {
		t.Fatalf("error = %v, want MalformedBatchError", err)
	}

	// Only the good batch counts; the bad one was rejected whole.
	if trainer.BatchesSeen() != 1 {
		t.Errorf("BatchesSeen = %d, want 1", trainer.BatchesSeen())
	}
	if trainer.SamplesSeen() != 10 {
		t.Errorf("SamplesSeen = %d, want 10", trainer.SamplesSeen())
	}
}

func TestTrainerDriftDetector(t *testing.T) {
	hv, _ := feature_extraction.NewHashingVectorizer(1 << 12)
	clf := linear_model.NewPassiveAggressiveClassifier(
		linear_model.WithPAClasses([]int{-1, 1}),
	)

	detector := drift.NewDDM(drift.WithDDMMinNumInstances(10))
	trainer, err := NewTrainer(hv, clf, WithDriftDetector(detector))
	if err != nil {
		t.Fatalf("NewTrainer failed: %v", err)
	}

	// Stable phase: consistent labels.
	texts, labels := syntheticStream(100)
	batches, _ := SliceBatches(texts, labels, 10)
	if err := trainer.Run(context.Background(), sendAll(batches)); err != nil {
		t.Fatalf("Run (stable phase) failed: %v", err)
	}

	// Drifted phase: same texts, flipped labels. The detector must see the
	// error rate jump; training itself still succeeds.
	flipped := make([]int, len(labels))
	for i, y := range labels {
		flipped[i] = -y
	}
	driftBatches, _ := SliceBatches(texts, flipped, 10)

	var warned bool
	errors.SetWarningHandler(func(w error) {
		var dw *errors.ModelDriftWarning
		if errors.As(w, &dw) {
			warned = true
		}
	})
	defer errors.SetWarningHandler(nil)

	if err := trainer.Run(context.Background(), sendAll(driftBatches)); err != nil {
		t.Fatalf("Run (drift phase) failed: %v", err)
	}
	if !warned {
		t.Error("expected a ModelDriftWarning after labels flipped")
	}
}

func TestSliceBatches(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		size      int
		wantLens  []int
		wantError bool
	}{
		{name: "even split", n: 6, size: 3, wantLens: []int{3, 3}},
		{name: "ragged tail", n: 7, size: 3, wantLens: []int{3, 3, 1}},
		{name: "single batch", n: 2, size: 10, wantLens: []int{2}},
		{name: "empty input", n: 0, size: 3, wantLens: nil},
		{name: "zero size", n: 4, size: 0, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts := make([]string, tt.n)
			labels := make([]int, tt.n)
			batches, err := SliceBatches(texts, labels, tt.size)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("SliceBatches failed: %v", err)
			}
			if len(batches) != len(tt.wantLens) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.wantLens))
			}
			for i, want := range tt.wantLens {
				if batches[i].Len() != want {
					t.Errorf("batch %d has %d samples, want %d", i, batches[i].Len(), want)
				}
			}
		})
	}

	t.Run("length mismatch", func(t *testing.T) {
		if _, err := SliceBatches([]string{"a"}, []int{1, 2}, 1); err == nil {
			t.Fatal("expected error for mismatched slices")
		}
	})
}
