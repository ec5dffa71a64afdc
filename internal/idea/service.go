// Package idea はアイデア投稿のライフサイクル管理を提供する。
// 投稿は審査待ち（pending）で作成され、審査の結果ちょうど1回だけ
// 承認（approved）または却下（rejected）に遷移する。
package idea

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/moderation"
	"github.com/hitoshi/ideaswipe/internal/repository"
	"github.com/hitoshi/ideaswipe/internal/security"
)

// ReviewDispatcher は審査ジョブの投入先インターフェース。
// 実装はワーカーパッケージが提供する。
type ReviewDispatcher interface {
	// Enqueue はアイデアIDを審査キューへ投入する。
	// キューが満杯の場合は投入を諦めてもよい（定期スイープで拾われる）。
	Enqueue(ideaID string)
}

// Service はアイデア投稿のビジネスロジックを提供する。
type Service struct {
	ideaRepo     repository.IdeaRepository
	settingsRepo repository.SettingsRepository
	sanitizer    security.ContentSanitizerService
	dispatcher   ReviewDispatcher
}

// NewService はServiceを生成する。
// dispatcherはnilでもよい（その場合は投入をスキップし、スイープに委ねる）。
func NewService(
	ideaRepo repository.IdeaRepository,
	settingsRepo repository.SettingsRepository,
	sanitizer security.ContentSanitizerService,
	dispatcher ReviewDispatcher,
) *Service {
	return &Service{
		ideaRepo:     ideaRepo,
		settingsRepo: settingsRepo,
		sanitizer:    sanitizer,
		dispatcher:   dispatcher,
	}
}

// SetDispatcher は審査ジョブの投入先を設定する。
// ディスパッチャは審査結果の反映先としてこのServiceを参照するため、
// 構築順序の都合で後から注入する。
func (s *Service) SetDispatcher(dispatcher ReviewDispatcher) {
	s.dispatcher = dispatcher
}

// Submit は新しいアイデアを審査待ちとして登録する。
// 検証の順序: 本文の文字数 → 同時投稿数の上限 → 審査待ちの有無。
// 却下済みのアイデアは上限のカウントに含めない。
func (s *Service) Submit(ctx context.Context, authorID, content string) (*model.Idea, error) {
	content = s.sanitizer.Sanitize(content)

	length := len([]rune(content))
	if length < moderation.MinContentLength || length > moderation.MaxContentLength {
		return nil, model.NewValidationError(fmt.Sprintf(
			"アイデアは%d〜%d文字で入力してください（現在%d文字）",
			moderation.MinContentLength, moderation.MaxContentLength, length,
		))
	}

	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("アプリ設定の取得に失敗しました: %w", err)
	}

	active, err := s.ideaRepo.CountActiveByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("投稿数の取得に失敗しました: %w", err)
	}
	if active >= cfg.MaxIdeasPerUser {
		return nil, model.NewLimitExceededError(cfg.MaxIdeasPerUser)
	}

	pending, err := s.ideaRepo.HasPendingByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("審査待ちアイデアの確認に失敗しました: %w", err)
	}
	if pending {
		return nil, model.NewPendingExistsError()
	}

	idea := &model.Idea{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Content:   content,
		Status:    model.IdeaStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.ideaRepo.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("アイデアの登録に失敗しました: %w", err)
	}

	slog.Info("idea submitted",
		slog.String("idea_id", idea.ID),
		slog.String("author_id", authorID),
	)

	if s.dispatcher != nil {
		s.dispatcher.Enqueue(idea.ID)
	}

	return idea, nil
}

// ApplyReview は審査結果をアイデアに反映する。
// ステータス遷移はpendingからのみ許可され、2回目以降の適用は無視される（冪等）。
// 適用された場合はtrueを返す。
func (s *Service) ApplyReview(ctx context.Context, ideaID string, verdict *moderation.Verdict) (bool, error) {
	status := model.IdeaStatusRejected
	reason := verdict.Reason
	if verdict.Approved {
		status = model.IdeaStatusApproved
		reason = ""
	}

	applied, err := s.ideaRepo.UpdateStatus(ctx, ideaID, status, reason)
	if err != nil {
		return false, fmt.Errorf("審査結果の反映に失敗しました: %w", err)
	}
	if !applied {
		slog.Info("review result ignored (idea not pending)",
			slog.String("idea_id", ideaID),
		)
		return false, nil
	}

	slog.Info("review applied",
		slog.String("idea_id", ideaID),
		slog.String("status", string(status)),
	)
	return true, nil
}

// Withdraw は自分のアイデアを取り下げる。
// 他ユーザーのアイデアは取り下げられない。
// 参照している投票履歴はそのまま残る（カスケード削除しない）。
func (s *Service) Withdraw(ctx context.Context, userID, ideaID string) error {
	idea, err := s.ideaRepo.FindByID(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}
	if idea == nil {
		return model.NewIdeaNotFoundError(ideaID)
	}
	if idea.AuthorID != userID {
		return model.NewNotOwnerError()
	}

	if err := s.ideaRepo.DeleteByID(ctx, ideaID); err != nil {
		return fmt.Errorf("アイデアの削除に失敗しました: %w", err)
	}

	slog.Info("idea withdrawn",
		slog.String("idea_id", ideaID),
		slog.String("user_id", userID),
	)
	return nil
}

// ListByAuthor はユーザー自身の投稿一覧を新しい順で返す。
// 却下されたアイデアも却下理由付きで含まれる。
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]*model.Idea, error) {
	ideas, err := s.ideaRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return ideas, nil
}
