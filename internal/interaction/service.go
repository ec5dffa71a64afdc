// Package interaction はユーザーとアイデア間の投票台帳を管理する。
package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

// Service は投票の記録と履歴参照を提供する。
type Service struct {
	interactionRepo repository.InteractionRepository
	ideaRepo        repository.IdeaRepository
}

// NewService はServiceを生成する。
func NewService(
	interactionRepo repository.InteractionRepository,
	ideaRepo repository.IdeaRepository,
) *Service {
	return &Service{
		interactionRepo: interactionRepo,
		ideaRepo:        ideaRepo,
	}
}

// Record は投票を台帳に記録し、アイデアの集計カウンタを加算する。
// 台帳は(ユーザー, アイデア)につき1行で、再投票は古い行を上書きする。
// カウンタは累積値であり、投票の変更で以前の集計を減算することはない。
// アイデアが既に削除されている場合、カウンタ加算は黙ってスキップされる
// （台帳の記録自体は残る）。
func (s *Service) Record(ctx context.Context, userID, ideaID string, voteType model.VoteType) error {
	if !voteType.IsValid() {
		return model.NewValidationError(fmt.Sprintf("不正な投票種別です: %s", voteType))
	}

	entry := &model.Interaction{
		UserID:    userID,
		IdeaID:    ideaID,
		Type:      voteType,
		Timestamp: time.Now(),
	}
	if err := s.interactionRepo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("投票の記録に失敗しました: %w", err)
	}

	idea, err := s.ideaRepo.FindByID(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}
	if idea == nil {
		slog.Info("vote recorded for deleted idea, counter skipped",
			slog.String("idea_id", ideaID),
			slog.String("user_id", userID),
		)
		return nil
	}

	if err := s.ideaRepo.IncrementCounter(ctx, ideaID, voteType); err != nil {
		return fmt.Errorf("カウンタの加算に失敗しました: %w", err)
	}

	return nil
}

// HistoryFor はユーザーの投票履歴を新しい順で返す。
// 削除済みアイデアへの投票も履歴には残る。
func (s *Service) HistoryFor(ctx context.Context, userID string) ([]*model.Interaction, error) {
	entries, err := s.interactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("投票履歴の取得に失敗しました: %w", err)
	}
	return entries, nil
}
