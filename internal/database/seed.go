package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

// 初回起動時に作成される固定の管理者アカウント。
const (
	seedAdminID       = "admin-1"
	seedAdminName     = "Super Admin"
	seedAdminEmail    = "admin@ideaswipe.com"
	seedAdminPassword = "password123"
)

// Seed は初回起動時の初期データを投入する。
// 管理者アカウントが存在しなければ作成し、アイデアが1件もなければ
// サンプルの承認済みアイデアを2件投入する。何度実行しても安全（冪等）。
func Seed(ctx context.Context, userRepo repository.UserRepository, ideaRepo repository.IdeaRepository) error {
	admin, err := userRepo.FindByEmail(ctx, seedAdminEmail)
	if err != nil {
		return fmt.Errorf("管理者アカウントの確認に失敗しました: %w", err)
	}

	adminID := seedAdminID
	if admin == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("管理者パスワードのハッシュ化に失敗しました: %w", err)
		}
		if err := userRepo.Create(ctx, &model.User{
			ID:           seedAdminID,
			Name:         seedAdminName,
			Email:        seedAdminEmail,
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
			CreatedAt:    time.Now(),
		}); err != nil {
			return fmt.Errorf("管理者アカウントの作成に失敗しました: %w", err)
		}
		slog.Info("管理者アカウントを作成しました", slog.String("email", seedAdminEmail))
	} else {
		adminID = admin.ID
	}

	ideas, _, _, err := ideaRepo.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("アイデア件数の確認に失敗しました: %w", err)
	}
	if ideas > 0 {
		return nil
	}

	now := time.Now()
	samples := []*model.Idea{
		{
			ID:        "idea-1",
			AuthorID:  adminID,
			Content:   "Uber but for dog walking specifically for senior citizens who need help.",
			Status:    model.IdeaStatusApproved,
			CreatedAt: now.Add(-100 * time.Second),
			Likes:     12,
			Dislikes:  2,
		},
		{
			ID:        "idea-2",
			AuthorID:  adminID,
			Content:   "A marketplace for leftover construction materials to reduce waste.",
			Status:    model.IdeaStatusApproved,
			CreatedAt: now.Add(-50 * time.Second),
			Likes:     45,
			Dislikes:  1,
		},
	}
	for _, idea := range samples {
		if err := ideaRepo.Create(ctx, idea); err != nil {
			return fmt.Errorf("サンプルアイデアの投入に失敗しました: %w", err)
		}
	}
	slog.Info("サンプルアイデアを投入しました", slog.Int("count", len(samples)))

	return nil
}
