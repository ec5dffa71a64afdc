// Package moderation は投稿されたアイデアの自動審査機能を提供する。
// ルールベースのローカル審査と、外部LLM APIを使ったリモート審査を含む。
package moderation

import "context"

// Verdict は審査の結果を表す。
type Verdict struct {
	Approved bool
	Reason   string // 却下時の理由。承認時は空でもよい。
}

// Reviewer はアイデア審査のインターフェースを定義する。
// 実装はルールベース（RuleReviewer）とリモートAPI（RemoteReviewer）の2種類。
// エラーを返した場合、呼び出し元は却下として扱う（審査失敗は承認にしない）。
type Reviewer interface {
	Review(ctx context.Context, content string) (*Verdict, error)
}
