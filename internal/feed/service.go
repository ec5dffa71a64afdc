package feed

import (
	"context"
	"fmt"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

// Service はフィードの組み立てと投票の受付を提供する。
type Service struct {
	ideaRepo        repository.IdeaRepository
	interactionRepo repository.InteractionRepository
	recorder        VoteRecorder
}

// NewService はServiceを生成する。
func NewService(
	ideaRepo repository.IdeaRepository,
	interactionRepo repository.InteractionRepository,
	recorder VoteRecorder,
) *Service {
	return &Service{
		ideaRepo:        ideaRepo,
		interactionRepo: interactionRepo,
		recorder:        recorder,
	}
}

// Load は閲覧者のフィードセッションを組み立てる。
// 対象は承認済みかつ他ユーザーの投稿で、格納順に並ぶ。
// 各アイデアの投票状態は台帳から導出する（UIの一時状態には依存しない）。
func (s *Service) Load(ctx context.Context, viewerID string) (*Session, error) {
	approved, err := s.ideaRepo.ListByStatus(ctx, model.IdeaStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("承認済みアイデアの取得に失敗しました: %w", err)
	}

	history, err := s.interactionRepo.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("投票履歴の取得に失敗しました: %w", err)
	}
	votes := make(map[string]model.VoteType, len(history))
	for _, in := range history {
		votes[in.IdeaID] = in.Type
	}

	var entries []*Entry
	for _, idea := range approved {
		if idea.AuthorID == viewerID {
			continue
		}
		entry := &Entry{Idea: idea}
		if voteType, ok := votes[idea.ID]; ok {
			entry.Voted = true
			entry.Vote = voteType
		}
		entries = append(entries, entry)
	}

	return newSession(viewerID, entries, s.recorder), nil
}

// Vote は閲覧者の指定アイデアへの投票を受け付ける。
// フィード対象外のアイデア（未承認、自分の投稿、存在しない）は見つからない扱い。
// 投票済みの場合は黙って何もせず、現在のアイデアを返す。
func (s *Service) Vote(ctx context.Context, viewerID, ideaID string, voteType model.VoteType) (*model.Idea, error) {
	if !voteType.IsValid() {
		return nil, model.NewValidationError("不正な投票種別です")
	}

	idea, err := s.ideaRepo.FindByID(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}
	if idea == nil || idea.Status != model.IdeaStatusApproved || idea.AuthorID == viewerID {
		return nil, model.NewIdeaNotFoundError(ideaID)
	}

	existing, err := s.interactionRepo.FindByUserAndIdea(ctx, viewerID, ideaID)
	if err != nil {
		return nil, fmt.Errorf("投票状態の確認に失敗しました: %w", err)
	}
	if existing != nil {
		return idea, nil
	}

	if err := s.recorder.Record(ctx, viewerID, ideaID, voteType); err != nil {
		return nil, err
	}

	updated, err := s.ideaRepo.FindByID(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("アイデアの再取得に失敗しました: %w", err)
	}
	if updated == nil {
		return idea, nil
	}
	return updated, nil
}
