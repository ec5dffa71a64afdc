package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// PostgresInteractionRepo はPostgreSQLを使用した投票リポジトリ。
type PostgresInteractionRepo struct {
	db *sql.DB
}

// NewPostgresInteractionRepo はPostgresInteractionRepoを生成する。
func NewPostgresInteractionRepo(db *sql.DB) *PostgresInteractionRepo {
	return &PostgresInteractionRepo{db: db}
}

// FindByUserAndIdea は(userID, ideaID)の投票を取得する。見つからない場合はnilを返す。
func (r *PostgresInteractionRepo) FindByUserAndIdea(ctx context.Context, userID, ideaID string) (*model.Interaction, error) {
	interaction := &model.Interaction{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, idea_id, vote_type, voted_at FROM interactions
		 WHERE user_id = $1 AND idea_id = $2`,
		userID, ideaID,
	).Scan(&interaction.UserID, &interaction.IdeaID, &interaction.Type, &interaction.Timestamp)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find interaction: %w", err)
	}

	return interaction, nil
}

// Upsert は(userID, ideaID)の投票を置き換えて保存する。
// 複合主キーのON CONFLICTにより、組につき最大1件の不変条件をDB側で保証する。
func (r *PostgresInteractionRepo) Upsert(ctx context.Context, interaction *model.Interaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interactions (user_id, idea_id, vote_type, voted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, idea_id)
		 DO UPDATE SET vote_type = EXCLUDED.vote_type, voted_at = EXCLUDED.voted_at`,
		interaction.UserID, interaction.IdeaID, interaction.Type, interaction.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert interaction: %w", err)
	}
	return nil
}

// ListByUser は指定ユーザーの投票一覧を投票日時降順（新しい順）で返す。
func (r *PostgresInteractionRepo) ListByUser(ctx context.Context, userID string) ([]*model.Interaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, idea_id, vote_type, voted_at FROM interactions
		 WHERE user_id = $1 ORDER BY voted_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*model.Interaction
	for rows.Next() {
		in := &model.Interaction{}
		if err := rows.Scan(&in.UserID, &in.IdeaID, &in.Type, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction row: %w", err)
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interaction rows: %w", err)
	}

	return interactions, nil
}

// compile-time interface check
var _ InteractionRepository = (*PostgresInteractionRepo)(nil)
