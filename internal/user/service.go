// Package user は管理者向けのユーザー管理ロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

// Stats はアプリ全体の集計値。管理画面のダッシュボードで使用する。
type Stats struct {
	TotalUsers    int
	TotalIdeas    int
	TotalLikes    int
	TotalDislikes int
}

// Service は管理者向けのユーザー管理サービス層。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	ideaRepo    repository.IdeaRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	ideaRepo repository.IdeaRepository,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		ideaRepo:    ideaRepo,
	}
}

// List は全ユーザーを登録順で返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Delete はユーザーを削除する。
// 削除対象: ユーザー本体とセッションのみ。
// そのユーザーが投稿したアイデアと投票履歴は削除しない（カスケードなし）。
// 残ったアイデアは他のユーザーのフィードに引き続き表示される。
func (s *Service) Delete(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	// 1. セッションを削除
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	// 2. ユーザー本体を削除
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("user deleted by admin",
		slog.String("user_id", userID),
		slog.String("email", user.Email),
	)
	return nil
}

// CollectStats はアプリ全体の集計値を返す。
func (s *Service) CollectStats(ctx context.Context) (*Stats, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	ideas, likes, dislikes, err := s.ideaRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("アイデア集計の取得に失敗しました: %w", err)
	}

	return &Stats{
		TotalUsers:    len(users),
		TotalIdeas:    ideas,
		TotalLikes:    likes,
		TotalDislikes: dislikes,
	}, nil
}
