package moderation

import (
	"context"
	"regexp"
	"time"
)

// アイデア本文の文字数制限。
const (
	MinContentLength = 60
	MaxContentLength = 120
)

var (
	// urlPattern はURLらしき文字列を検出する。
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	// emailPattern はメールアドレスらしき文字列を検出する。
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

// RuleReviewer はルールベースのローカル審査器。
// APIキーが設定されていない環境でのデフォルト審査として使用される。
// 実際の審査APIの応答時間を模すため、設定された遅延の後に判定を返す。
type RuleReviewer struct {
	latency time.Duration
}

// NewRuleReviewer はRuleReviewerを生成する。
// latencyには審査1件あたりの擬似応答時間を指定する（0で即時）。
func NewRuleReviewer(latency time.Duration) *RuleReviewer {
	return &RuleReviewer{latency: latency}
}

var _ Reviewer = (*RuleReviewer)(nil)

// Review はアイデア本文をルールで判定する。
// 文字数制限、URL、メールアドレスのチェックを行う。
// これらに該当しない本文は必ず承認される。
// コンテキストのキャンセルは遅延待機中のみ反映される。
func (r *RuleReviewer) Review(ctx context.Context, content string) (*Verdict, error) {
	if r.latency > 0 {
		select {
		case <-time.After(r.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	runes := []rune(content)
	if len(runes) < MinContentLength {
		return &Verdict{Approved: false, Reason: "Idea is too short to be meaningful."}, nil
	}
	if len(runes) > MaxContentLength {
		return &Verdict{Approved: false, Reason: "Idea exceeds the maximum length."}, nil
	}
	if urlPattern.MatchString(content) {
		return &Verdict{Approved: false, Reason: "Ideas must not contain URLs."}, nil
	}
	if emailPattern.MatchString(content) {
		return &Verdict{Approved: false, Reason: "Ideas must not contain personal contact information."}, nil
	}

	return &Verdict{Approved: true}, nil
}
