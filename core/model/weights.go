package model

import (
	"encoding/json"
	"fmt"
)

// ModelWeights はモデルの重みを表す構造体（シリアライゼーション用）
// ハッシュ空間の次元とクラス集合を持ち、同じ設定のハッシャーと組み合わせて
// 学習済みモデルを復元できる。
type ModelWeights struct {
	// ModelType はモデルの種類（PassiveAggressiveClassifier等）
	ModelType string `json:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version"`

	// NFeatures はハッシュ空間の次元数
	NFeatures int `json:"n_features"`

	// Classes は宣言されたクラスラベル
	Classes []int `json:"classes"`

	// Coefficients は重み係数（クラスごとに1本、バイナリの場合は1本）
	Coefficients [][]float64 `json:"coefficients"`

	// HashName は使用したハッシュ関数の名前（例: "spooky64"）
	HashName string `json:"hash_name,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ
	// gobエンコード可能にするため数値のみを保持する
	Hyperparameters map[string]float64 `json:"hyperparameters"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}

	if mw.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive")
	}

	if !mw.IsFitted && len(mw.Coefficients) > 0 {
		return fmt.Errorf("unfitted model should not have coefficients")
	}

	if mw.IsFitted && len(mw.Coefficients) == 0 {
		return fmt.Errorf("fitted model must have coefficients")
	}

	// バイナリ分類は重みベクトル1本、多クラスはクラスごとに1本
	if mw.IsFitted && len(mw.Classes) > 0 {
		expected := len(mw.Classes)
		if expected == 2 {
			expected = 1
		}
		if len(mw.Coefficients) != expected {
			return fmt.Errorf("got %d coefficient vectors for %d classes, want %d", len(mw.Coefficients), len(mw.Classes), expected)
		}
	}

	for i, coef := range mw.Coefficients {
		if len(coef) != mw.NFeatures {
			return fmt.Errorf("coefficient vector %d has %d entries, want %d", i, len(coef), mw.NFeatures)
		}
	}

	return nil
}
