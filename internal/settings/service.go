// Package settings は管理者が変更できる実行時設定を提供する。
package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

// Service は実行時設定の取得と更新を提供する。
// 設定は審査のたびに読み直されるため、更新は再起動なしで反映される。
type Service struct {
	settingsRepo repository.SettingsRepository
}

// NewService はServiceを生成する。
func NewService(settingsRepo repository.SettingsRepository) *Service {
	return &Service{settingsRepo: settingsRepo}
}

// Get は現在のアプリ設定を返す。未保存の場合はデフォルト値を返す。
func (s *Service) Get(ctx context.Context) (model.AppConfig, error) {
	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("アプリ設定の取得に失敗しました: %w", err)
	}
	return cfg, nil
}

// Update はアプリ設定を更新する。
// 投稿上限は1以上でなければならない。APIキーは空文字で無効化できる
// （無効化するとルールベースの審査に切り替わる）。
func (s *Service) Update(ctx context.Context, cfg model.AppConfig) (model.AppConfig, error) {
	if cfg.MaxIdeasPerUser < 1 {
		return model.AppConfig{}, model.NewValidationError("投稿上限は1以上を指定してください")
	}

	if err := s.settingsRepo.Save(ctx, cfg); err != nil {
		return model.AppConfig{}, fmt.Errorf("アプリ設定の保存に失敗しました: %w", err)
	}

	slog.Info("app settings updated",
		slog.Int("max_ideas_per_user", cfg.MaxIdeasPerUser),
		slog.Bool("moderation_key_set", cfg.ModerationAPIKey != ""),
	)
	return cfg, nil
}
