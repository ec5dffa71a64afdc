// Package model はドメインモデルを定義する。
package model

import "time"

// IdeaStatus はアイデアの審査状態を表す。
type IdeaStatus string

const (
	// IdeaStatusPending は審査待ち状態。投稿直後の初期状態。
	IdeaStatusPending IdeaStatus = "pending"
	// IdeaStatusApproved は審査承認済み状態。フィードに表示される。
	IdeaStatusApproved IdeaStatus = "approved"
	// IdeaStatusRejected は審査却下状態。理由がRejectionReasonに設定される。
	IdeaStatusRejected IdeaStatus = "rejected"
)

// Idea はユーザーが投稿したスタートアップアイデアを表す。
// 投稿時はpendingで作成され、審査結果によりapprovedまたはrejectedへ
// ちょうど1回だけ遷移する。
// LikesとDislikesは累積カウンター（減算されない。台帳から再計算もされない）。
type Idea struct {
	ID              string
	AuthorID        string
	Content         string
	Status          IdeaStatus
	CreatedAt       time.Time
	Likes           int
	Dislikes        int
	RejectionReason string
}

// VoteType は投票の種別を表す。
type VoteType string

const (
	// VoteTypeLike は高評価。
	VoteTypeLike VoteType = "like"
	// VoteTypeDislike は低評価。
	VoteTypeDislike VoteType = "dislike"
)

// IsValid はVoteTypeが定義済みの値かを返す。
func (t VoteType) IsValid() bool {
	return t == VoteTypeLike || t == VoteTypeDislike
}

// Interaction はユーザーの1アイデアへの投票を表す。
// (UserID, IdeaID)の組につき最大1件。再投票は既存レコードを置き換える。
type Interaction struct {
	UserID    string
	IdeaID    string
	Type      VoteType
	Timestamp time.Time
}
