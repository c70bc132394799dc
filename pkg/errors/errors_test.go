package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("PassiveAggressiveClassifier", "Predict")

	// 基本的なエラーメッセージの確認
	want := "hashlearn: PassiveAggressiveClassifier: this model is not fitted yet. Call Fit() or PartialFit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// NotFittedError型にキャスト可能か確認
	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("PartialFit", 16, 8, 1)

	// 基本的なエラーメッセージの確認
	want := "hashlearn: PartialFit: dimension mismatch on axis 1 (features). Expected 16, got 8"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// DimensionError型にキャスト可能か確認
	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewValidationError(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		reason  string
		value   interface{}
		wantMsg string
	}{
		{
			name:    "non-positive n_features",
			param:   "n_features",
			reason:  "must be a positive integer",
			value:   0,
			wantMsg: "hashlearn: validation failed for parameter 'n_features': must be a positive integer (got: 0)",
		},
		{
			name:    "negative C",
			param:   "C",
			reason:  "must be positive",
			value:   -1.0,
			wantMsg: "hashlearn: validation failed for parameter 'C': must be positive (got: -1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.param, tt.reason, tt.value)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// ValidationError型にキャスト可能か確認
			var valErr *ValidationError
			if !As(err, &valErr) {
				t.Error("Error should be castable to *ValidationError")
			}
		})
	}
}

func TestNewMalformedBatchError(t *testing.T) {
	err := NewMalformedBatchError("PartialFit", 3, 7, []int{-1, 1})

	want := "hashlearn: PartialFit: label 3 at batch index 7 is not in the declared class set [-1 1]. No weights were modified"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// MalformedBatchError型にキャスト可能か確認
	var mbErr *MalformedBatchError
	if !As(err, &mbErr) {
		t.Error("Error should be castable to *MalformedBatchError")
	}
	if mbErr.Label != 3 || mbErr.Index != 7 {
		t.Errorf("unexpected fields: label=%d index=%d", mbErr.Label, mbErr.Index)
	}
}

func TestNewModelDriftWarning(t *testing.T) {
	warn := NewModelDriftWarning("DDM", 3.2, 3.0, "retrain")

	want := "Model drift detected by DDM: score=3.2000 (threshold=3.0000). Recommended action: retrain"
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewUndefinedMetricWarning("auc", "only one class present", 0.5)
	Warn(w)

	if captured == nil {
		t.Fatal("Expected warning handler to be invoked")
	}
	if !strings.Contains(captured.Error(), "auc") {
		t.Errorf("Unexpected warning message: %v", captured)
	}
}

func TestWrapAndIs(t *testing.T) {
	// 元のエラー
	baseErr := ErrEmptyClasses

	// ラップ
	wrapped := Wrap(baseErr, "in PassiveAggressiveClassifier.PartialFit")

	// Is関数でチェック
	if !Is(wrapped, ErrEmptyClasses) {
		t.Error("Expected Is(wrapped, ErrEmptyClasses) to be true")
	}

	// エラーメッセージの確認
	if !strings.Contains(wrapped.Error(), "in PassiveAggressiveClassifier.PartialFit") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestWrapf(t *testing.T) {
	// 元のエラー
	baseErr := ErrEmptyData

	// フォーマット付きラップ
	wrapped := Wrapf(baseErr, "in %s: expected %d, got %d", "Transform", 10, 0)

	// Is関数でチェック
	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	// エラーメッセージの確認
	expectedMsg := "in Transform: expected 10, got 0"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}
