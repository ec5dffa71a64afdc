package moderation

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// FactoryConfig はFactoryの設定。
type FactoryConfig struct {
	Endpoint    string        // リモート審査APIのエンドポイント
	Model       string        // 使用するモデル名
	RuleLatency time.Duration // ルール審査の擬似応答時間
}

// Factory は審査実行時に使用するReviewerを選択する。
// APIキーは管理者が実行中に変更できるため、選択は審査のたびに行う。
type Factory struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     FactoryConfig
}

// NewFactory はFactoryを生成する。
// httpClientにはSSRF防止機能付きのクライアントを渡すこと。
func NewFactory(httpClient *http.Client, logger *slog.Logger, config FactoryConfig) *Factory {
	return &Factory{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}
}

// ReviewerFor は現在のアプリ設定に応じたReviewerを返す。
// APIキーが設定されていればリモート審査、なければルール審査を使う。
func (f *Factory) ReviewerFor(cfg model.AppConfig) Reviewer {
	if cfg.ModerationAPIKey != "" {
		return NewRemoteReviewer(f.httpClient, f.logger, f.config.Endpoint, f.config.Model, cfg.ModerationAPIKey)
	}
	return NewRuleReviewer(f.config.RuleLatency)
}
