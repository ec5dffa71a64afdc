// Package repository はデータ永続化のインターフェースを定義する。
// 各コレクション（users, ideas, interactions, sessions, settings）に対して
// 読み取り・書き込みの能力を提供し、サービス層へ注入される。
// 本番はPostgreSQL実装、テストはインメモリ実装を使用する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーを作成日時昇順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// DeleteByID は指定IDのユーザー行のみを削除する。
	// 投稿済みアイデアと投票は削除されない（カスケードなし）。
	// 対象が存在しない場合はエラーなしで何もしない。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// IdeaRepository はアイデアデータの永続化インターフェース。
type IdeaRepository interface {
	// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Idea, error)

	// Create はアイデアを作成する。
	Create(ctx context.Context, idea *model.Idea) error

	// UpdateStatus は審査待ちアイデアの状態を審査結果へ遷移させる。
	// 現在の状態がpendingの場合のみ更新する（冪等）。
	// 遷移した場合はtrueを返す。対象が存在しない場合は(false, nil)。
	UpdateStatus(ctx context.Context, ideaID string, status model.IdeaStatus, reason string) (bool, error)

	// IncrementCounter は指定アイデアのlikeまたはdislikeカウンターを1増やす。
	// カウンターは累積であり、減算されることはない。
	// 対象が存在しない場合はエラーなしで何もしない。
	IncrementCounter(ctx context.Context, ideaID string, voteType model.VoteType) error

	// ListByAuthor は指定ユーザーの投稿一覧を作成日時降順で返す。
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Idea, error)

	// ListByStatus は指定状態のアイデア一覧を挿入順（作成日時昇順）で返す。
	ListByStatus(ctx context.Context, status model.IdeaStatus) ([]*model.Idea, error)

	// CountActiveByAuthor は指定ユーザーの却下以外のアイデア数を返す。
	CountActiveByAuthor(ctx context.Context, authorID string) (int, error)

	// HasPendingByAuthor は指定ユーザーに審査待ちアイデアがあるかを返す。
	HasPendingByAuthor(ctx context.Context, authorID string) (bool, error)

	// CountAll は全アイデア数と累積like/dislike合計を返す（管理ダッシュボード用）。
	CountAll(ctx context.Context) (ideas, likes, dislikes int, err error)

	// DeleteByID は指定IDのアイデアを削除する。
	// 参照する投票は削除されない（カスケードなし）。
	// 対象が存在しない場合はエラーなしで何もしない。
	DeleteByID(ctx context.Context, id string) error
}

// InteractionRepository は投票データの永続化インターフェース。
type InteractionRepository interface {
	// FindByUserAndIdea は(userID, ideaID)の投票を取得する。見つからない場合はnilを返す。
	FindByUserAndIdea(ctx context.Context, userID, ideaID string) (*model.Interaction, error)

	// Upsert は(userID, ideaID)の既存投票を置き換えて保存する。
	// 組につき最大1件の不変条件をここで保証する。
	Upsert(ctx context.Context, interaction *model.Interaction) error

	// ListByUser は指定ユーザーの投票一覧を投票日時降順で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Interaction, error)
}

// SettingsRepository は実行時設定（AppConfig）の永続化インターフェース。
type SettingsRepository interface {
	// Get は現在のAppConfigを返す。未保存の場合はデフォルト値を返す。
	Get(ctx context.Context) (model.AppConfig, error)

	// Save はAppConfigを保存する。
	Save(ctx context.Context, cfg model.AppConfig) error
}
