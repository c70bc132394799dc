package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hashlearn/sklearn/linear_model"
)

// vec builds a VecDense, or nil for an empty slice so error paths can be
// exercised through the same tables.
func vec(vals []float64) *mat.VecDense {
	if len(vals) == 0 {
		return nil
	}
	return mat.NewVecDense(len(vals), vals)
}

func TestAUC(t *testing.T) {
	// Scores are raw margins from a linear model, not probabilities; AUC
	// only depends on their ranking.
	tests := []struct {
		name    string
		yTrue   []float64
		scores  []float64
		want    float64
		wantErr bool
	}{
		{
			name:   "perfectly separated margins",
			yTrue:  []float64{0, 0, 0, 1, 1, 1},
			scores: []float64{-2.1, -1.4, -0.3, 0.4, 1.2, 2.5},
			want:   1.0,
		},
		{
			name:   "inverted ranking",
			yTrue:  []float64{0, 0, 0, 1, 1, 1},
			scores: []float64{2.5, 1.2, 0.4, -0.3, -1.4, -2.1},
			want:   0.0,
		},
		{
			name:   "zero-weight model scores everything 0",
			yTrue:  []float64{0, 1, 0, 1},
			scores: []float64{0, 0, 0, 0},
			want:   0.5, // All ties get the average rank
		},
		{
			name:   "tied scores averaged",
			yTrue:  []float64{0, 0, 1, 1},
			scores: []float64{-0.5, 0.2, 0.2, 0.8},
			want:   0.875,
		},
		{
			name:   "one misranked pair",
			yTrue:  []float64{0, 0, 1, 1},
			scores: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.75,
		},
		{
			name:   "only positives present",
			yTrue:  []float64{1, 1, 1, 1},
			scores: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.5, // Undefined, warns and returns 0.5
		},
		{
			name:   "only negatives present",
			yTrue:  []float64{0, 0, 0, 0},
			scores: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.5, // Undefined, warns and returns 0.5
		},
		{
			name:    "signed labels must be rebased to 0/1",
			yTrue:   []float64{-1, 1, 1},
			scores:  []float64{-0.5, 0.5, 0.9},
			wantErr: true,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []float64{0, 1},
			scores:  []float64{0.5},
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   []float64{},
			scores:  []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUC(vec(tt.yTrue), vec(tt.scores))
			if (err != nil) != tt.wantErr {
				t.Errorf("AUC() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("AUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAUCMatrix(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   mat.Matrix
		yPred   mat.Matrix
		want    float64
		wantErr bool
	}{
		{
			name:  "column vectors",
			yTrue: mat.NewDense(4, 1, []float64{0, 0, 1, 1}),
			yPred: mat.NewDense(4, 1, []float64{0.1, 0.4, 0.35, 0.8}),
			want:  0.75,
		},
		{
			name:  "wide matrix uses first column",
			yTrue: mat.NewDense(4, 2, []float64{0, 9, 0, 9, 1, 9, 1, 9}),
			yPred: mat.NewDense(4, 2, []float64{0.1, 9, 0.4, 9, 0.35, 9, 0.8, 9}),
			want:  0.75,
		},
		{
			name:    "nil matrix",
			yTrue:   nil,
			yPred:   mat.NewDense(1, 1, []float64{0.5}),
			wantErr: true,
		},
		{
			name:    "empty matrix",
			yTrue:   &mat.Dense{},
			yPred:   &mat.Dense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUCMatrix(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("AUCMatrix() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("AUCMatrix() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAUCMatrixOnDecisionFunction(t *testing.T) {
	// End-to-end ranking use: a classifier's raw DecisionFunction scores
	// feed straight into AUCMatrix.
	clf := linear_model.NewPassiveAggressiveClassifier(
		linear_model.WithPAClasses([]int{-1, 1}),
	)
	XTrain := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
	})
	yTrain := mat.NewDense(2, 1, []float64{1, -1})
	if err := clf.PartialFit(XTrain, yTrain, nil); err != nil {
		t.Fatalf("PartialFit failed: %v", err)
	}

	XTest := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0.8, 0.2, 0, 0,
		0.2, 0.8, 0, 0,
	})
	scores, err := clf.DecisionFunction(XTest)
	if err != nil {
		t.Fatalf("DecisionFunction failed: %v", err)
	}

	// AUC wants 0/1 labels; the positive class is 1.
	yTrue := mat.NewDense(4, 1, []float64{1, 0, 1, 0})
	auc, err := AUCMatrix(yTrue, scores)
	if err != nil {
		t.Fatalf("AUCMatrix() error = %v", err)
	}
	if math.Abs(auc-1.0) > 1e-6 {
		t.Errorf("AUCMatrix() = %v, want 1.0 for a separable test set", auc)
	}
}

func TestBinaryLogLoss(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "confident correct predictions",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0, 0, 1, 1},
			want:  0.0, // Clipping keeps this at a tiny epsilon
		},
		{
			name:  "moderately confident",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0.1, 0.2, 0.8, 0.9},
			want:  0.164252,
		},
		{
			name:  "confidently wrong",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0.9, 0.9, 0.1, 0.1},
			want:  2.3025851,
		},
		{
			name:  "exact 0 and 1 are clipped",
			yTrue: []float64{0, 1},
			yPred: []float64{0, 1},
			want:  0.0,
		},
		{
			name:    "non-binary labels",
			yTrue:   []float64{0, 0.5, 1},
			yPred:   []float64{0.1, 0.5, 0.9},
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryLogLoss(vec(tt.yTrue), vec(tt.yPred))
			if (err != nil) != tt.wantErr {
				t.Errorf("BinaryLogLoss() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 0.01 {
				t.Errorf("BinaryLogLoss() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccuracyAndClassificationError(t *testing.T) {
	// ClassificationError is defined as 1 - Accuracy; check both on the
	// same tables.
	tests := []struct {
		name     string
		yTrue    []float64
		yPred    []float64
		wantAcc  float64
		wantErrs bool
	}{
		{
			name:    "all sentiment labels correct",
			yTrue:   []float64{-1, 1, 1, -1, 1},
			yPred:   []float64{-1, 1, 1, -1, 1},
			wantAcc: 1.0,
		},
		{
			name:    "one of five wrong",
			yTrue:   []float64{-1, 1, 1, -1, 1},
			yPred:   []float64{-1, 1, -1, -1, 1},
			wantAcc: 0.8,
		},
		{
			name:    "multiclass labels",
			yTrue:   []float64{0, 1, 2, 1, 0},
			yPred:   []float64{0, 1, 1, 1, 0},
			wantAcc: 0.8,
		},
		{
			name:    "everything wrong",
			yTrue:   []float64{-1, -1, -1},
			yPred:   []float64{1, 1, 1},
			wantAcc: 0.0,
		},
		{
			name:     "empty vectors",
			yTrue:    []float64{},
			yPred:    []float64{},
			wantErrs: true,
		},
		{
			name:     "dimension mismatch",
			yTrue:    []float64{0, 1},
			yPred:    []float64{0},
			wantErrs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := Accuracy(vec(tt.yTrue), vec(tt.yPred))
			if (err != nil) != tt.wantErrs {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErrs)
				return
			}
			if tt.wantErrs {
				if _, err := ClassificationError(vec(tt.yTrue), vec(tt.yPred)); err == nil {
					t.Error("ClassificationError() should fail when Accuracy fails")
				}
				return
			}
			if math.Abs(acc-tt.wantAcc) > 1e-6 {
				t.Errorf("Accuracy() = %v, want %v", acc, tt.wantAcc)
			}

			ce, err := ClassificationError(vec(tt.yTrue), vec(tt.yPred))
			if err != nil {
				t.Fatalf("ClassificationError() error = %v", err)
			}
			if math.Abs(ce-(1-tt.wantAcc)) > 1e-6 {
				t.Errorf("ClassificationError() = %v, want %v", ce, 1-tt.wantAcc)
			}
		})
	}
}

func TestPredictionCounts(t *testing.T) {
	yPred := mat.NewVecDense(6, []float64{1, -1, 1, 1, -1, 1})

	counts, err := PredictionCounts(yPred)
	if err != nil {
		t.Fatalf("PredictionCounts() error = %v", err)
	}

	if counts[1] != 4 || counts[-1] != 2 {
		t.Errorf("PredictionCounts() = %v, want map[1:4 -1:2]", counts)
	}

	if _, err := PredictionCounts(nil); err == nil {
		t.Error("PredictionCounts(nil) should return an error")
	}
}

func BenchmarkAUC(b *testing.B) {
	// Margin-style scores with the sign flipped for the two halves.
	n := 1000
	yTrue := make([]float64, n)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			scores[i] = -2 + float64(i)/float64(n)
		} else {
			yTrue[i] = 1
			scores[i] = float64(i)/float64(n) - 0.3
		}
	}

	yTrueVec, scoresVec := vec(yTrue), vec(scores)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = AUC(yTrueVec, scoresVec)
	}
}

func BenchmarkBinaryLogLoss(b *testing.B) {
	n := 1000
	yTrue := make([]float64, n)
	yPred := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			yPred[i] = 0.1 + 0.3*float64(i)/float64(n)
		} else {
			yTrue[i] = 1
			yPred[i] = 0.6 + 0.3*float64(i-n/2)/float64(n/2)
		}
	}

	yTrueVec, yPredVec := vec(yTrue), vec(yPred)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BinaryLogLoss(yTrueVec, yPredVec)
	}
}
