// Package feature_extraction provides stateless text-to-vector transforms.
package feature_extraction

import (
	"sort"
	"strings"
	"unicode"

	spooky "github.com/dgryski/go-spooky"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hashlearn/core/model"
	"github.com/YuminosukeSato/hashlearn/core/parallel"
	"github.com/YuminosukeSato/hashlearn/pkg/errors"
)

// Tokenizer は1つのテキストをトークン列に分割する関数
type Tokenizer func(text string) []string

// HashFunc はバイト列を64bitハッシュ値に変換する関数
type HashFunc func(data []byte) uint64

// HashingVectorizer はハッシュトリックによるテキストのベクトル化器
// scikit-learnのHashingVectorizerと互換性を持つ
//
// 語彙テーブルを一切保持しないため、未知語によるエラーは発生せず、
// メモリ使用量は入力ストリームの長さによらず一定。変換は設定と入力のみの
// 純粋関数であり、複数のゴルーチンから同期なしで呼び出せる。
type HashingVectorizer struct {
	// 設定（構築時に固定、以後不変）
	nFeatures     int
	tokenizer     Tokenizer
	hash          HashFunc
	alternateSign bool
	hashName      string
}

// HashingVectorizerOption は設定オプション
type HashingVectorizerOption func(*HashingVectorizer)

// WithHVTokenizer はトークナイザを設定
func WithHVTokenizer(tokenizer Tokenizer) HashingVectorizerOption {
	return func(hv *HashingVectorizer) {
		hv.tokenizer = tokenizer
	}
}

// WithHVHashFunc はハッシュ関数を設定
func WithHVHashFunc(name string, hash HashFunc) HashingVectorizerOption {
	return func(hv *HashingVectorizer) {
		hv.hashName = name
		hv.hash = hash
	}
}

// WithHVAlternateSign は符号付きハッシュの有無を設定（デフォルト: true）
// 有効な場合、ハッシュ値の独立した1ビットから符号±1を決定し、
// 同一インデックスへ衝突した異なるトークン同士が打ち消し合う確率と
// 強め合う確率を等しくする（衝突バイアスの低減）。
func WithHVAlternateSign(alternate bool) HashingVectorizerOption {
	return func(hv *HashingVectorizer) {
		hv.alternateSign = alternate
	}
}

// NewHashingVectorizer は新しいHashingVectorizerを作成
//
// nFeatures は出力ベクトルの固定次元数（例: 1 << 20）。
// 正の整数でない場合はValidationErrorを返す。
func NewHashingVectorizer(nFeatures int, options ...HashingVectorizerOption) (*HashingVectorizer, error) {
	if nFeatures <= 0 {
		return nil, errors.NewValidationError("n_features", "must be a positive integer", nFeatures)
	}

	hv := &HashingVectorizer{
		nFeatures:     nFeatures,
		tokenizer:     DefaultTokenizer,
		hash:          spooky.Hash64,
		hashName:      "spooky64",
		alternateSign: true,
	}

	for _, opt := range options {
		opt(hv)
	}

	return hv, nil
}

// NFeatures は出力ベクトルの固定次元数を返す
func (hv *HashingVectorizer) NFeatures() int {
	return hv.nFeatures
}

// HashName は使用中のハッシュ関数の名前を返す
func (hv *HashingVectorizer) HashName() string {
	return hv.hashName
}

// TransformOne は1つのテキストを固定次元の疎ベクトルに変換する
//
// 各トークン t について h = hash(t) を計算し、インデックス h mod nFeatures に
// 符号付きカウントを加算する。同一トークンの重複は加算される（上書きしない）。
// 空テキストは正しい次元の全ゼロベクトルを返す（エラーにはならない）。
func (hv *HashingVectorizer) TransformOne(text string) model.SparseVector {
	tokens := hv.tokenizer(text)
	if len(tokens) == 0 {
		return model.NewSparseVector(hv.nFeatures)
	}

	counts := make(map[int]float64, len(tokens))
	for _, t := range tokens {
		h := hv.hash([]byte(t))
		idx := int(h % uint64(hv.nFeatures))
		sign := 1.0
		// インデックス計算と独立なビットから符号を決定
		if hv.alternateSign && (h>>63)&1 == 1 {
			sign = -1.0
		}
		counts[idx] += sign
	}

	sv := model.SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
		Dim:     hv.nFeatures,
	}
	for idx := range counts {
		sv.Indices = append(sv.Indices, idx)
	}
	sort.Ints(sv.Indices)
	for _, idx := range sv.Indices {
		sv.Values = append(sv.Values, counts[idx])
	}
	return sv
}

// Transform は複数のテキストをまとめて変換する
// 変換は共有状態を持たないため、サンプル単位でCPUコア数に応じて並列化される
func (hv *HashingVectorizer) Transform(texts []string) []model.SparseVector {
	out := make([]model.SparseVector, len(texts))
	parallel.ParallelizeWithThreshold(len(texts), 64, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = hv.TransformOne(texts[i])
		}
	})
	return out
}

// TransformMatrix はscikit-learn互換API用に密行列（サンプル数 x nFeatures）を返す
// 大きなnFeaturesでは疎なTransformの使用を推奨
func (hv *HashingVectorizer) TransformMatrix(texts []string) (*mat.Dense, error) {
	if len(texts) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "TransformMatrix")
	}

	vecs := hv.Transform(texts)
	dense := mat.NewDense(len(texts), hv.nFeatures, nil)
	for i, sv := range vecs {
		for j, idx := range sv.Indices {
			dense.Set(i, idx, sv.Values[j])
		}
	}
	return dense, nil
}

// DefaultTokenizer は小文字化した上で英数字以外の境界で分割し、
// 空トークンを除去するデフォルトのトークナイザ
func DefaultTokenizer(text string) []string {
	var tokens []string
	tokenStart := -1
	for idx, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if tokenStart == -1 {
				tokenStart = idx
			}
			continue
		}
		if tokenStart != -1 {
			tokens = append(tokens, strings.ToLower(text[tokenStart:idx]))
			tokenStart = -1
		}
	}
	if tokenStart != -1 {
		tokens = append(tokens, strings.ToLower(text[tokenStart:]))
	}
	return tokens
}

// インターフェース実装の確認
var _ model.TextVectorizer = (*HashingVectorizer)(nil)
