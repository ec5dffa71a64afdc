package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// このファイルは全コレクションのインメモリ実装を提供する。
// テストおよびDBなしのローカル起動で使用する。
// 元実装のlocalStorageと同じく挿入順を保持するため、各コレクションはスライスで持つ。
// 単一書き込み手前提だが、ハンドラテストからの並行アクセスに備えてミューテックスで保護する。

// MemoryUserRepo はインメモリのユーザーリポジトリ。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users []*model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを検索する。
func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// Create はユーザーを追加する。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users = append(r.users, &copied)
	return nil
}

// List は全ユーザーを作成日時昇順で返す。
func (r *MemoryUserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// DeleteByID は指定IDのユーザーを削除する。存在しない場合は何もしない。
func (r *MemoryUserRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ UserRepository = (*MemoryUserRepo)(nil)

// MemorySessionRepo はインメモリのセッションリポジトリ。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]*model.Session)}
}

// Create はセッションを追加する。
func (r *MemorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *MemorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *MemorySessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *MemorySessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (r *MemorySessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, s := range r.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

var _ SessionRepository = (*MemorySessionRepo)(nil)

// MemoryIdeaRepo はインメモリのアイデアリポジトリ。挿入順を保持する。
type MemoryIdeaRepo struct {
	mu    sync.RWMutex
	ideas []*model.Idea
}

// NewMemoryIdeaRepo はMemoryIdeaRepoを生成する。
func NewMemoryIdeaRepo() *MemoryIdeaRepo {
	return &MemoryIdeaRepo{}
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
func (r *MemoryIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, idea := range r.ideas {
		if idea.ID == id {
			copied := *idea
			return &copied, nil
		}
	}
	return nil, nil
}

// Create はアイデアを末尾に追加する。
func (r *MemoryIdeaRepo) Create(ctx context.Context, idea *model.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *idea
	r.ideas = append(r.ideas, &copied)
	return nil
}

// UpdateStatus は審査待ちアイデアを審査結果へ遷移させる（冪等）。
func (r *MemoryIdeaRepo) UpdateStatus(ctx context.Context, ideaID string, status model.IdeaStatus, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, idea := range r.ideas {
		if idea.ID == ideaID {
			if idea.Status != model.IdeaStatusPending {
				return false, nil
			}
			idea.Status = status
			idea.RejectionReason = reason
			return true, nil
		}
	}
	return false, nil
}

// IncrementCounter は指定アイデアのカウンターを1増やす。存在しない場合は何もしない。
func (r *MemoryIdeaRepo) IncrementCounter(ctx context.Context, ideaID string, voteType model.VoteType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, idea := range r.ideas {
		if idea.ID == ideaID {
			if voteType == model.VoteTypeDislike {
				idea.Dislikes++
			} else {
				idea.Likes++
			}
			return nil
		}
	}
	return nil
}

// ListByAuthor は指定ユーザーの投稿一覧を作成日時降順で返す。
func (r *MemoryIdeaRepo) ListByAuthor(ctx context.Context, authorID string) ([]*model.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ideas []*model.Idea
	for _, idea := range r.ideas {
		if idea.AuthorID == authorID {
			copied := *idea
			ideas = append(ideas, &copied)
		}
	}
	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
	})
	return ideas, nil
}

// ListByStatus は指定状態のアイデア一覧を挿入順で返す。
func (r *MemoryIdeaRepo) ListByStatus(ctx context.Context, status model.IdeaStatus) ([]*model.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ideas []*model.Idea
	for _, idea := range r.ideas {
		if idea.Status == status {
			copied := *idea
			ideas = append(ideas, &copied)
		}
	}
	return ideas, nil
}

// CountActiveByAuthor は指定ユーザーの却下以外のアイデア数を返す。
func (r *MemoryIdeaRepo) CountActiveByAuthor(ctx context.Context, authorID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, idea := range r.ideas {
		if idea.AuthorID == authorID && idea.Status != model.IdeaStatusRejected {
			count++
		}
	}
	return count, nil
}

// HasPendingByAuthor は指定ユーザーに審査待ちアイデアがあるかを返す。
func (r *MemoryIdeaRepo) HasPendingByAuthor(ctx context.Context, authorID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, idea := range r.ideas {
		if idea.AuthorID == authorID && idea.Status == model.IdeaStatusPending {
			return true, nil
		}
	}
	return false, nil
}

// CountAll は全アイデア数と累積like/dislike合計を返す。
func (r *MemoryIdeaRepo) CountAll(ctx context.Context) (int, int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	likes, dislikes := 0, 0
	for _, idea := range r.ideas {
		likes += idea.Likes
		dislikes += idea.Dislikes
	}
	return len(r.ideas), likes, dislikes, nil
}

// DeleteByID は指定IDのアイデアを削除する。存在しない場合は何もしない。
func (r *MemoryIdeaRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, idea := range r.ideas {
		if idea.ID == id {
			r.ideas = append(r.ideas[:i], r.ideas[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ IdeaRepository = (*MemoryIdeaRepo)(nil)

// MemoryInteractionRepo はインメモリの投票リポジトリ。
type MemoryInteractionRepo struct {
	mu           sync.RWMutex
	interactions []*model.Interaction
}

// NewMemoryInteractionRepo はMemoryInteractionRepoを生成する。
func NewMemoryInteractionRepo() *MemoryInteractionRepo {
	return &MemoryInteractionRepo{}
}

// FindByUserAndIdea は(userID, ideaID)の投票を取得する。見つからない場合はnilを返す。
func (r *MemoryInteractionRepo) FindByUserAndIdea(ctx context.Context, userID, ideaID string) (*model.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, in := range r.interactions {
		if in.UserID == userID && in.IdeaID == ideaID {
			copied := *in
			return &copied, nil
		}
	}
	return nil, nil
}

// Upsert は(userID, ideaID)の既存投票を置き換えて保存する。
func (r *MemoryInteractionRepo) Upsert(ctx context.Context, interaction *model.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, in := range r.interactions {
		if in.UserID == interaction.UserID && in.IdeaID == interaction.IdeaID {
			r.interactions = append(r.interactions[:i], r.interactions[i+1:]...)
			break
		}
	}
	copied := *interaction
	r.interactions = append(r.interactions, &copied)
	return nil
}

// ListByUser は指定ユーザーの投票一覧を投票日時降順で返す。
func (r *MemoryInteractionRepo) ListByUser(ctx context.Context, userID string) ([]*model.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var interactions []*model.Interaction
	for _, in := range r.interactions {
		if in.UserID == userID {
			copied := *in
			interactions = append(interactions, &copied)
		}
	}
	sort.SliceStable(interactions, func(i, j int) bool {
		return interactions[i].Timestamp.After(interactions[j].Timestamp)
	})
	return interactions, nil
}

var _ InteractionRepository = (*MemoryInteractionRepo)(nil)

// MemorySettingsRepo はインメモリの実行時設定リポジトリ。
type MemorySettingsRepo struct {
	mu    sync.RWMutex
	cfg   model.AppConfig
	saved bool
}

// NewMemorySettingsRepo はMemorySettingsRepoを生成する。
func NewMemorySettingsRepo() *MemorySettingsRepo {
	return &MemorySettingsRepo{}
}

// Get は現在のAppConfigを返す。未保存の場合はデフォルト値を返す。
func (r *MemorySettingsRepo) Get(ctx context.Context) (model.AppConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.saved {
		return model.DefaultAppConfig(), nil
	}
	return r.cfg, nil
}

// Save はAppConfigを保存する。
func (r *MemorySettingsRepo) Save(ctx context.Context, cfg model.AppConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.saved = true
	return nil
}

var _ SettingsRepository = (*MemorySettingsRepo)(nil)
