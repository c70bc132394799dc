// Package metrics は分類モデルの評価指標を提供する
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hashlearn/pkg/errors"
)

// Accuracy は正解率（予測がラベルと一致した割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("Accuracy", "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率（1 - 正解率）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// AUC はROC曲線の下面積を計算する
//
// yTrue は0/1の二値ラベル、yPred は任意の実数スコア（大きいほど陽性）。
// 同順位のスコアには平均ランクを割り当てる（Mann-Whitney統計量と等価）。
// 片方のクラスしか存在しない場合は未定義のため、UndefinedMetricWarningを
// 発生させて0.5を返す。
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUC", "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos := 0
	for i := 0; i < n; i++ {
		label := yTrue.AtVec(i)
		if label != 0 && label != 1 {
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
		if label == 1 {
			nPos++
		}
	}
	nNeg := n - nPos

	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("auc", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	// スコア昇順でランク付けし、同順位には平均ランクを与える
	type scored struct {
		score float64
		label float64
	}
	items := make([]scored, n)
	for i := 0; i < n; i++ {
		items[i] = scored{score: yPred.AtVec(i), label: yTrue.AtVec(i)}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].score < items[j].score })

	var sumPosRanks float64
	i := 0
	for i < n {
		j := i
		for j < n && items[j].score == items[i].score {
			j++
		}
		// ランクは1始まり、[i, j)が同順位グループ
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if items[k].label == 1 {
				sumPosRanks += avgRank
			}
		}
		i = j
	}

	auc := (sumPosRanks - float64(nPos)*float64(nPos+1)/2.0) / (float64(nPos) * float64(nNeg))
	return auc, nil
}

// AUCMatrix は行列形式の入力に対してAUCを計算する（先頭列を使用）
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yTrueVec, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(yTrueVec, yPredVec)
}

// BinaryLogLoss は二値分類の交差エントロピー損失を計算する
// log(0)を避けるため予測確率は[eps, 1-eps]にクリップされる
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("BinaryLogLoss", "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}

	const eps = 1e-15
	var sum float64
	for i := 0; i < n; i++ {
		label := yTrue.AtVec(i)
		if label != 0 && label != 1 {
			return 0, errors.NewValueError("BinaryLogLoss", "labels must be binary (0 or 1)")
		}
		p := math.Min(math.Max(yPred.AtVec(i), eps), 1-eps)
		if label == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}

// PredictionCounts はクラスラベルごとの予測数を集計する
// 表示・プロット用の補助関数であり、描画自体はスコープ外
func PredictionCounts(yPred *mat.VecDense) (map[int]int, error) {
	if yPred == nil || yPred.Len() == 0 {
		return nil, errors.NewValueError("PredictionCounts", "empty vector")
	}
	counts := make(map[int]int)
	for i := 0; i < yPred.Len(); i++ {
		counts[int(yPred.AtVec(i))]++
	}
	return counts, nil
}

// firstColumn は行列の先頭列をVecDenseとして取り出す
func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	vec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		vec.SetVec(i, m.At(i, 0))
	}
	return vec, nil
}
