package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は投稿テキストのサニタイズ機能のインターフェースを定義する。
// アイデア本文の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は投稿テキストをプレーンテキストに正規化して返す。
	// HTMLタグはすべて除去され、エンティティはデコードされる。
	// アイデア本文は短い平文であり、マークアップを許可する理由がない。
	// 前後の空白は除去される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去し、テキストのみを残す。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は投稿テキストをプレーンテキストに正規化して返す。
// StrictPolicyの出力はHTMLエスケープされたままなので、
// 保存用の平文に戻すためエンティティをデコードする。
func (s *contentSanitizer) Sanitize(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
