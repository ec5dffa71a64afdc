package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// PostgresIdeaRepo はPostgreSQLを使用したアイデアリポジトリ。
type PostgresIdeaRepo struct {
	db *sql.DB
}

// NewPostgresIdeaRepo はPostgresIdeaRepoを生成する。
func NewPostgresIdeaRepo(db *sql.DB) *PostgresIdeaRepo {
	return &PostgresIdeaRepo{db: db}
}

const ideaColumns = `id, author_id, content, status, created_at, likes, dislikes, rejection_reason`

// scanIdea は1行をmodel.Ideaへ読み取る。
func scanIdea(row interface{ Scan(...any) error }) (*model.Idea, error) {
	idea := &model.Idea{}
	err := row.Scan(
		&idea.ID, &idea.AuthorID, &idea.Content, &idea.Status,
		&idea.CreatedAt, &idea.Likes, &idea.Dislikes, &idea.RejectionReason,
	)
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
func (r *PostgresIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = $1`,
		id,
	)
	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find idea by ID: %w", err)
	}
	return idea, nil
}

// Create はアイデアを作成する。
func (r *PostgresIdeaRepo) Create(ctx context.Context, idea *model.Idea) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ideas (id, author_id, content, status, created_at, likes, dislikes, rejection_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		idea.ID, idea.AuthorID, idea.Content, idea.Status,
		idea.CreatedAt, idea.Likes, idea.Dislikes, idea.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert idea: %w", err)
	}
	return nil
}

// UpdateStatus は審査待ちアイデアを審査結果へ遷移させる。
// WHERE status = 'pending' により、pending → approved/rejected の
// ちょうど1回の遷移を保証する（冪等）。遷移した場合はtrueを返す。
func (r *PostgresIdeaRepo) UpdateStatus(ctx context.Context, ideaID string, status model.IdeaStatus, reason string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ideas SET status = $1, rejection_reason = $2
		 WHERE id = $3 AND status = $4`,
		status, reason, ideaID, model.IdeaStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update idea status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// IncrementCounter は指定アイデアのカウンターを1増やす。
// 対象が存在しない場合は何もしない（仕様: NotFoundはサイレントに無視）。
func (r *PostgresIdeaRepo) IncrementCounter(ctx context.Context, ideaID string, voteType model.VoteType) error {
	column := "likes"
	if voteType == model.VoteTypeDislike {
		column = "dislikes"
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE ideas SET `+column+` = `+column+` + 1 WHERE id = $1`,
		ideaID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment %s counter: %w", column, err)
	}
	return nil
}

// ListByAuthor は指定ユーザーの投稿一覧を作成日時降順（新しい順）で返す。
func (r *PostgresIdeaRepo) ListByAuthor(ctx context.Context, authorID string) ([]*model.Idea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE author_id = $1 ORDER BY created_at DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas by author: %w", err)
	}
	defer rows.Close()

	return collectIdeas(rows)
}

// ListByStatus は指定状態のアイデア一覧を挿入順（作成日時昇順）で返す。
// フィードの自然順はこの挿入順に一致する。
func (r *PostgresIdeaRepo) ListByStatus(ctx context.Context, status model.IdeaStatus) ([]*model.Idea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE status = $1 ORDER BY created_at ASC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas by status: %w", err)
	}
	defer rows.Close()

	return collectIdeas(rows)
}

// CountActiveByAuthor は指定ユーザーの却下以外のアイデア数を返す。
// 却下済みは投稿上限にカウントされない。
func (r *PostgresIdeaRepo) CountActiveByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ideas WHERE author_id = $1 AND status <> $2`,
		authorID, model.IdeaStatusRejected,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active ideas: %w", err)
	}
	return count, nil
}

// HasPendingByAuthor は指定ユーザーに審査待ちアイデアがあるかを返す。
func (r *PostgresIdeaRepo) HasPendingByAuthor(ctx context.Context, authorID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM ideas WHERE author_id = $1 AND status = $2)`,
		authorID, model.IdeaStatusPending,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending idea: %w", err)
	}
	return exists, nil
}

// CountAll は全アイデア数と累積like/dislike合計を返す。
func (r *PostgresIdeaRepo) CountAll(ctx context.Context) (int, int, int, error) {
	var ideas, likes, dislikes int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(likes), 0), COALESCE(SUM(dislikes), 0) FROM ideas`,
	).Scan(&ideas, &likes, &dislikes)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count ideas: %w", err)
	}
	return ideas, likes, dislikes, nil
}

// DeleteByID は指定IDのアイデアを削除する。
// 参照する投票は残る（仕様: カスケードなし）。対象が存在しなくてもエラーにしない。
func (r *PostgresIdeaRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM ideas WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	return nil
}

// collectIdeas は結果セットの全行をmodel.Ideaスライスへ読み取る。
func collectIdeas(rows *sql.Rows) ([]*model.Idea, error) {
	var ideas []*model.Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea row: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate idea rows: %w", err)
	}
	return ideas, nil
}

// compile-time interface check
var _ IdeaRepository = (*PostgresIdeaRepo)(nil)
