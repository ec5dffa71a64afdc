package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// settingsRowID はsettingsテーブルのシングルトン行ID。
// AppConfigはプロセス全体で1件のみ。
const settingsRowID = 1

// PostgresSettingsRepo はPostgreSQLを使用した実行時設定リポジトリ。
type PostgresSettingsRepo struct {
	db *sql.DB
}

// NewPostgresSettingsRepo はPostgresSettingsRepoを生成する。
func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

// Get は現在のAppConfigを返す。行が存在しない場合はデフォルト値を返す。
func (r *PostgresSettingsRepo) Get(ctx context.Context) (model.AppConfig, error) {
	cfg := model.AppConfig{}
	err := r.db.QueryRowContext(ctx,
		`SELECT moderation_api_key, max_ideas_per_user FROM settings WHERE id = $1`,
		settingsRowID,
	).Scan(&cfg.ModerationAPIKey, &cfg.MaxIdeasPerUser)

	if err == sql.ErrNoRows {
		return model.DefaultAppConfig(), nil
	}
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return cfg, nil
}

// Save はAppConfigをシングルトン行へUPSERTする。
func (r *PostgresSettingsRepo) Save(ctx context.Context, cfg model.AppConfig) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, moderation_api_key, max_ideas_per_user)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id)
		 DO UPDATE SET moderation_api_key = EXCLUDED.moderation_api_key,
		               max_ideas_per_user = EXCLUDED.max_ideas_per_user`,
		settingsRowID, cfg.ModerationAPIKey, cfg.MaxIdeasPerUser,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SettingsRepository = (*PostgresSettingsRepo)(nil)
