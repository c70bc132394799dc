// Package linear_model provides online linear models over hashed feature spaces.
package linear_model

import (
	"context"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hashlearn/core/model"
	"github.com/YuminosukeSato/hashlearn/pkg/errors"
)

// PassiveAggressiveClassifier は受動的攻撃的分類モデル
// scikit-learnのPassiveAggressiveClassifierと互換性を持つ
//
// マージンが十分なサンプルでは重みを変更せず（passive）、
// そうでないサンプルでは有界な修正ステップを適用する（aggressive）。
// 更新はサンプル単位で逐次適用され、可換ではないため入力順序が
// 最終的な重みに影響する。重みベクトルは最初の学習呼び出しで
// 次元とクラス集合が確定した時点で一度だけ確保され、以後リセットされない。
type PassiveAggressiveClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	C       float64 // 攻撃性の上限（ステップサイズの上界）
	maxIter int     // Fitでのエポック数

	// 宣言されたクラス集合（構築時またはready遷移時に固定）
	declaredClasses []int

	// 学習パラメータ
	coef_      [][]float64 // 重み係数（バイナリ: 1 x 特徴数、多クラス: クラス数 x 特徴数）
	classes_   []int       // クラスラベル（昇順不要、宣言順を保持）
	classIdx_  map[int]int // ラベル -> classes_ のインデックス
	nClasses_  int         // クラス数
	nFeatures_ int         // 特徴数（ハッシュ空間の次元）
	t_         int64       // 総更新ステップ数

	// 内部状態
	// 更新はmuの書き込みロック下で逐次適用され、ScoreやPredictの読み取りと
	// 重ならない（更新はスコアリングから見て原子的）
	mu sync.RWMutex
}

// PassiveAggressiveOption は設定オプション
type PassiveAggressiveOption func(*PassiveAggressiveClassifier)

// WithPAC は攻撃性パラメータCを設定
func WithPAC(c float64) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) {
		pa.C = c
	}
}

// WithPAMaxIter はFitでのエポック数を設定
func WithPAMaxIter(maxIter int) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) {
		pa.maxIter = maxIter
	}
}

// WithPAClasses はクラス集合を構築時に宣言する
// PartialFitSparseのみで学習する場合に必須
func WithPAClasses(classes []int) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) {
		pa.declaredClasses = append([]int(nil), classes...)
	}
}

// NewPassiveAggressiveClassifier は新しいPassiveAggressiveClassifierを作成
func NewPassiveAggressiveClassifier(options ...PassiveAggressiveOption) *PassiveAggressiveClassifier {
	pa := &PassiveAggressiveClassifier{
		state:   model.NewStateManager(),
		C:       1.0,
		maxIter: 5,
	}

	for _, opt := range options {
		opt(pa)
	}

	return pa
}

// initialize は uninitialized -> ready の一方向遷移を行う
// 呼び出し側でmuの書き込みロックを保持すること
func (pa *PassiveAggressiveClassifier) initialize(nFeatures int, classes []int) error {
	if pa.C <= 0 {
		return errors.NewValidationError("C", "must be positive", pa.C)
	}
	if nFeatures <= 0 {
		return errors.NewValidationError("n_features", "must be a positive integer", nFeatures)
	}
	if len(classes) < 2 {
		return errors.Wrap(errors.ErrEmptyClasses, "PassiveAggressiveClassifier: at least two classes must be declared")
	}

	classIdx := make(map[int]int, len(classes))
	for i, c := range classes {
		if _, dup := classIdx[c]; dup {
			return errors.NewValidationError("classes", "duplicate class label", c)
		}
		classIdx[c] = i
	}

	pa.nFeatures_ = nFeatures
	pa.classes_ = append([]int(nil), classes...)
	pa.classIdx_ = classIdx
	pa.nClasses_ = len(classes)

	// バイナリ分類は重みベクトル1本、多クラスはone-vs-restでクラスごとに1本
	nVecs := pa.nClasses_
	if pa.nClasses_ == 2 {
		nVecs = 1
	}
	pa.coef_ = make([][]float64, nVecs)
	for i := range pa.coef_ {
		pa.coef_[i] = make([]float64, nFeatures)
	}

	pa.state.SetDimensions(nFeatures, 0)
	pa.state.SetFitted()
	return nil
}

// validateBatch はバッチ全体を重み更新前に検証する（all-or-nothing保証）
// 呼び出し側でロックを保持すること
func (pa *PassiveAggressiveClassifier) validateBatch(op string, vecs []model.SparseVector, labels []int) error {
	if len(vecs) != len(labels) {
		return errors.NewDimensionError(op, len(vecs), len(labels), 0)
	}
	for i, v := range vecs {
		if v.Dim != pa.nFeatures_ {
			return errors.NewDimensionError(op, pa.nFeatures_, v.Dim, 1)
		}
		if _, ok := pa.classIdx_[labels[i]]; !ok {
			return errors.NewMalformedBatchError(op, labels[i], i, pa.classes_)
		}
	}
	return nil
}

// updateOne は単一サンプルで重みを更新する（PA-I更新則）
//
// マージン m = y * (w・x) が1以上なら更新しない。そうでなければ
// loss = 1 - m、tau = min(C, loss / ||x||^2) として w += tau * y * x。
// ||x||^2 == 0 のサンプルはゼロ除算を避けるため更新をスキップする。
func (pa *PassiveAggressiveClassifier) updateOne(x model.SparseVector, label int) {
	normSq := x.NormSquared()
	if normSq == 0 {
		return
	}

	classIdx := pa.classIdx_[label]

	if pa.nClasses_ == 2 {
		// バイナリ: classes_[0] -> -1, classes_[1] -> +1
		y := -1.0
		if classIdx == 1 {
			y = 1.0
		}
		pa.applyPA(pa.coef_[0], x, y, normSq)
	} else {
		// one-vs-rest: 各クラスの重みベクトルを同じ規則で更新
		for c := 0; c < pa.nClasses_; c++ {
			y := -1.0
			if c == classIdx {
				y = 1.0
			}
			pa.applyPA(pa.coef_[c], x, y, normSq)
		}
	}

	pa.t_++
}

func (pa *PassiveAggressiveClassifier) applyPA(w []float64, x model.SparseVector, y, normSq float64) {
	margin := y * x.Dot(w)
	if margin >= 1 {
		return // passive
	}
	loss := 1 - margin
	tau := math.Min(pa.C, loss/normSq)
	for i, idx := range x.Indices {
		w[idx] += tau * y * x.Values[i]
	}
}

// PartialFitSparse はハッシュ済み疎サンプルのミニバッチでモデルを逐次的に学習
//
// 最初の呼び出しで ready 遷移が起こる。クラス集合はWithPAClassesで
// 宣言されている必要があり、次元は先頭サンプルのDimから確定する。
// バッチ内のサンプルは入力順に逐次適用される。
func (pa *PassiveAggressiveClassifier) PartialFitSparse(vecs []model.SparseVector, labels []int) error {
	pa.mu.Lock()
	defer pa.mu.Unlock()

	if pa.coef_ == nil {
		if len(vecs) == 0 {
			return errors.Wrap(errors.ErrEmptyData, "PartialFitSparse")
		}
		if err := pa.initialize(vecs[0].Dim, pa.declaredClasses); err != nil {
			return err
		}
	}

	if err := pa.validateBatch("PartialFitSparse", vecs, labels); err != nil {
		return err
	}

	for i, v := range vecs {
		pa.updateOne(v, labels[i])
	}
	pa.state.AddSamples(len(vecs))

	return nil
}

// PartialFit はミニバッチでモデルを逐次的に学習（scikit-learn互換の密行列API）
// classes は最初の呼び出し時のみ必須
func (pa *PassiveAggressiveClassifier) PartialFit(X, y mat.Matrix, classes []int) error {
	vecs, labels, err := denseToSparse(X, y)
	if err != nil {
		return err
	}

	pa.mu.Lock()
	defer pa.mu.Unlock()

	if pa.coef_ == nil {
		declared := classes
		if declared == nil {
			declared = pa.declaredClasses
		}
		_, cols := X.Dims()
		if err := pa.initialize(cols, declared); err != nil {
			return err
		}
	}

	if err := pa.validateBatch("PartialFit", vecs, labels); err != nil {
		return err
	}

	for i, v := range vecs {
		pa.updateOne(v, labels[i])
	}
	pa.state.AddSamples(len(vecs))

	return nil
}

// Fit はバッチ学習でモデルを訓練する
// データ全体に対してmaxIterエポックの逐次更新を適用する
func (pa *PassiveAggressiveClassifier) Fit(X, y mat.Matrix) error {
	vecs, labels, err := denseToSparse(X, y)
	if err != nil {
		return err
	}

	pa.mu.Lock()
	defer pa.mu.Unlock()

	if pa.coef_ == nil {
		declared := pa.declaredClasses
		if declared == nil {
			declared = extractClasses(labels)
		}
		_, cols := X.Dims()
		if err := pa.initialize(cols, declared); err != nil {
			return err
		}
	}

	if err := pa.validateBatch("Fit", vecs, labels); err != nil {
		return err
	}

	for iter := 0; iter < pa.maxIter; iter++ {
		for i, v := range vecs {
			pa.updateOne(v, labels[i])
		}
	}
	pa.state.AddSamples(len(vecs))

	return nil
}

// DecisionFunctionSparse は1サンプルの生スコアを返す
// バイナリの場合は長さ1（正なら classes_[1] 側）、多クラスの場合はクラスごとのスコア
func (pa *PassiveAggressiveClassifier) DecisionFunctionSparse(v model.SparseVector) ([]float64, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "DecisionFunctionSparse"); err != nil {
		return nil, err
	}
	if v.Dim != pa.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionFunctionSparse", pa.nFeatures_, v.Dim, 1)
	}

	scores := make([]float64, len(pa.coef_))
	for c, w := range pa.coef_ {
		scores[c] = v.Dot(w)
	}
	return scores, nil
}

// PredictSparse は1サンプルの予測ラベルを返す
// スコアがちょうど0の場合は最初に宣言されたクラス（バイナリでは負クラス）を返す
func (pa *PassiveAggressiveClassifier) PredictSparse(v model.SparseVector) (int, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "PredictSparse"); err != nil {
		return 0, err
	}
	if v.Dim != pa.nFeatures_ {
		return 0, errors.NewDimensionError("PredictSparse", pa.nFeatures_, v.Dim, 1)
	}

	return pa.predictLocked(v), nil
}

// predictLocked は読み取りロック保持下で予測を行う
func (pa *PassiveAggressiveClassifier) predictLocked(v model.SparseVector) int {
	if pa.nClasses_ == 2 {
		if v.Dot(pa.coef_[0]) > 0 {
			return pa.classes_[1]
		}
		return pa.classes_[0]
	}

	best := 0
	bestScore := v.Dot(pa.coef_[0])
	for c := 1; c < pa.nClasses_; c++ {
		if score := v.Dot(pa.coef_[c]); score > bestScore {
			bestScore = score
			best = c
		}
	}
	return pa.classes_[best]
}

// Predict は入力データに対する予測を行う（scikit-learn互換の密行列API）
func (pa *PassiveAggressiveClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "Predict"); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if cols != pa.nFeatures_ {
		return nil, errors.NewDimensionError("Predict", pa.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		v := rowToSparse(X, i, cols)
		predictions.Set(i, 0, float64(pa.predictLocked(v)))
	}
	return predictions, nil
}

// DecisionFunction は生スコア行列を返す（バイナリ: n x 1、多クラス: n x クラス数）
// ランキングやROC曲線の計算に使用できる
func (pa *PassiveAggressiveClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "DecisionFunction"); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if cols != pa.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionFunction", pa.nFeatures_, cols, 1)
	}

	scores := mat.NewDense(rows, len(pa.coef_), nil)
	for i := 0; i < rows; i++ {
		v := rowToSparse(X, i, cols)
		for c, w := range pa.coef_ {
			scores.Set(i, c, v.Dot(w))
		}
	}
	return scores, nil
}

// ScoreSparse は疎サンプル群に対する正解率を返す
// 内部状態を変更しない純粋な評価
func (pa *PassiveAggressiveClassifier) ScoreSparse(vecs []model.SparseVector, labels []int) (float64, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "ScoreSparse"); err != nil {
		return 0, err
	}
	if len(vecs) != len(labels) {
		return 0, errors.NewDimensionError("ScoreSparse", len(vecs), len(labels), 0)
	}
	if len(vecs) == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "ScoreSparse")
	}

	correct := 0
	for i, v := range vecs {
		if v.Dim != pa.nFeatures_ {
			return 0, errors.NewDimensionError("ScoreSparse", pa.nFeatures_, v.Dim, 1)
		}
		if pa.predictLocked(v) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(vecs)), nil
}

// Score はXに対する予測のyとの正解率を返す（scikit-learn互換の密行列API）
func (pa *PassiveAggressiveClassifier) Score(X, y mat.Matrix) (float64, error) {
	vecs, labels, err := denseToSparse(X, y)
	if err != nil {
		return 0, err
	}
	return pa.ScoreSparse(vecs, labels)
}

// FitStream はデータストリームからモデルを学習する
// コンテキストのキャンセルはバッチ境界で観測されるため、
// 中断後も重みベクトルは破損なく有効なまま残る
func (pa *PassiveAggressiveClassifier) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if err := pa.PartialFit(batch.X, batch.Y, nil); err != nil {
				return err
			}
		}
	}
}

// アクセサ

// IsFitted はモデルがready状態かどうかを返す
func (pa *PassiveAggressiveClassifier) IsFitted() bool {
	return pa.state.IsFitted()
}

// Classes は宣言されたクラスラベルのコピーを返す
func (pa *PassiveAggressiveClassifier) Classes() []int {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return append([]int(nil), pa.classes_...)
}

// NFeatures はハッシュ空間の次元数を返す（未初期化の場合は0）
func (pa *PassiveAggressiveClassifier) NFeatures() int {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.nFeatures_
}

// NUpdates は適用された更新ステップの総数を返す
func (pa *PassiveAggressiveClassifier) NUpdates() int64 {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.t_
}

// Coef は重み係数のディープコピーを返す
func (pa *PassiveAggressiveClassifier) Coef() [][]float64 {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	coef := make([][]float64, len(pa.coef_))
	for i, w := range pa.coef_ {
		coef[i] = append([]float64(nil), w...)
	}
	return coef
}

// 永続化

// ExportWeights は学習済みの重みをModelWeightsとしてエクスポートする
func (pa *PassiveAggressiveClassifier) ExportWeights() (*model.ModelWeights, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "ExportWeights"); err != nil {
		return nil, err
	}

	coef := make([][]float64, len(pa.coef_))
	for i, w := range pa.coef_ {
		coef[i] = append([]float64(nil), w...)
	}

	return &model.ModelWeights{
		ModelType:    "PassiveAggressiveClassifier",
		Version:      "1",
		NFeatures:    pa.nFeatures_,
		Classes:      append([]int(nil), pa.classes_...),
		Coefficients: coef,
		Hyperparameters: map[string]float64{
			"C":        pa.C,
			"max_iter": float64(pa.maxIter),
		},
		IsFitted: true,
	}, nil
}

// ImportWeights はModelWeightsから学習済み状態を復元する
func (pa *PassiveAggressiveClassifier) ImportWeights(mw *model.ModelWeights) error {
	if err := mw.Validate(); err != nil {
		return errors.Wrap(err, "ImportWeights")
	}
	if mw.ModelType != "PassiveAggressiveClassifier" {
		return errors.NewValidationError("model_type", "unexpected model type", mw.ModelType)
	}

	pa.mu.Lock()
	defer pa.mu.Unlock()

	if err := pa.initialize(mw.NFeatures, mw.Classes); err != nil {
		return err
	}
	// initializeが確保する重みベクトル数（バイナリ: 1本、多クラス: クラス数）と
	// 一致しない破損・改ざんデータはコピー前に拒否する
	if len(mw.Coefficients) != len(pa.coef_) {
		return errors.NewValidationError("coefficients", "unexpected number of weight vectors", len(mw.Coefficients))
	}
	for i, w := range mw.Coefficients {
		copy(pa.coef_[i], w)
	}
	if c, ok := mw.Hyperparameters["C"]; ok {
		pa.C = c
	}
	return nil
}

// Save は学習済みモデルをgob形式でファイルに保存する
func (pa *PassiveAggressiveClassifier) Save(path string) error {
	mw, err := pa.ExportWeights()
	if err != nil {
		return err
	}
	return model.SaveModel(mw, path)
}

// Load はgob形式のファイルから学習済みモデルを復元する
func (pa *PassiveAggressiveClassifier) Load(path string) error {
	var mw model.ModelWeights
	if err := model.LoadModel(&mw, path); err != nil {
		return err
	}
	return pa.ImportWeights(&mw)
}

// 補助関数

// denseToSparse は密行列X, yを疎サンプルとラベルに変換する
func denseToSparse(X, y mat.Matrix) ([]model.SparseVector, []int, error) {
	rows, cols := X.Dims()
	yRows, _ := y.Dims()
	if yRows != rows {
		return nil, nil, errors.NewDimensionError("denseToSparse", rows, yRows, 0)
	}

	vecs := make([]model.SparseVector, rows)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		vecs[i] = rowToSparse(X, i, cols)
		labels[i] = int(y.At(i, 0))
	}
	return vecs, labels, nil
}

// rowToSparse は行列の1行を疎ベクトルに変換する
func rowToSparse(X mat.Matrix, row, cols int) model.SparseVector {
	sv := model.SparseVector{Dim: cols}
	for j := 0; j < cols; j++ {
		if v := X.At(row, j); v != 0 {
			sv.Indices = append(sv.Indices, j)
			sv.Values = append(sv.Values, v)
		}
	}
	return sv
}

// extractClasses はラベル列から一意なクラス集合を昇順で抽出する
func extractClasses(labels []int) []int {
	seen := make(map[int]bool)
	var classes []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Ints(classes)
	return classes
}

// インターフェース実装の確認
var (
	_ model.OnlineClassifier   = (*PassiveAggressiveClassifier)(nil)
	_ model.StreamingEstimator = (*PassiveAggressiveClassifier)(nil)
	_ model.Persistable        = (*PassiveAggressiveClassifier)(nil)
)
