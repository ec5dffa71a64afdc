// Package review は審査待ちアイデアのバックグラウンド審査処理を提供する。
// 投稿直後のキュー投入と、取りこぼしを拾う定期スイープを含む。
package review

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/ideaswipe/internal/metrics"
	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/moderation"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

// ReviewerFactory は審査実行時に使用するReviewerを選択するインターフェース。
type ReviewerFactory interface {
	ReviewerFor(cfg model.AppConfig) moderation.Reviewer
}

// ReviewApplier は審査結果の反映先インターフェース。
// 実装はideaパッケージが提供する。
type ReviewApplier interface {
	ApplyReview(ctx context.Context, ideaID string, verdict *moderation.Verdict) (bool, error)
}

// failureReason は審査呼び出しが失敗した場合に記録される却下理由。
// 審査の失敗は承認にも保留の継続にもせず、却下へ縮退させる（再試行しない）。
const failureReason = "Automated review could not be completed. Please try submitting again."

// Dispatcher は審査ジョブのキューイングと並列制御を行う。
// 投稿時にEnqueueで投入されたアイデアを処理するほか、定期スイープで
// 審査待ちのまま残ったアイデア（プロセス再起動等での取りこぼし）を拾う。
type Dispatcher struct {
	ideaRepo       repository.IdeaRepository
	settingsRepo   repository.SettingsRepository
	factory        ReviewerFactory
	applier        ReviewApplier
	collector      metrics.MetricsCollector
	logger         *slog.Logger
	reviewTimeout  time.Duration
	maxConcurrency int

	queue chan string
	wg    sync.WaitGroup
}

// NewDispatcher はDispatcherの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4を使用する。
func NewDispatcher(
	ideaRepo repository.IdeaRepository,
	settingsRepo repository.SettingsRepository,
	factory ReviewerFactory,
	applier ReviewApplier,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	reviewTimeout time.Duration,
	maxConcurrency int,
) *Dispatcher {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Dispatcher{
		ideaRepo:       ideaRepo,
		settingsRepo:   settingsRepo,
		factory:        factory,
		applier:        applier,
		collector:      collector,
		logger:         logger,
		reviewTimeout:  reviewTimeout,
		maxConcurrency: maxConcurrency,
		queue:          make(chan string, 256),
	}
}

// Enqueue はアイデアIDを審査キューへ投入する。
// キューが満杯の場合は投入を諦める（定期スイープで拾われる）。
func (d *Dispatcher) Enqueue(ideaID string) {
	select {
	case d.queue <- ideaID:
	default:
		d.logger.Warn("審査キューが満杯のため投入をスキップしました",
			slog.String("idea_id", ideaID),
		)
	}
}

// Start は審査ディスパッチャを起動する。
// 起動直後に1回スイープを実行し、以後はキュー投入と定期スイープで処理する。
// コンテキストがキャンセルされるまで実行を継続し、処理中のジョブの完了を待つ。
func (d *Dispatcher) Start(ctx context.Context, sweepInterval time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	d.logger.Info("審査ディスパッチャを開始しました",
		slog.Duration("sweep_interval", sweepInterval),
		slog.Int("max_concurrency", d.maxConcurrency),
	)

	sem := make(chan struct{}, d.maxConcurrency)

	// 起動直後に1回スイープ（前回のプロセスが残した審査待ちを拾う）
	if err := d.sweep(ctx, sem); err != nil {
		d.logger.Error("審査スイープの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			d.wg.Wait()
			d.logger.Info("審査ディスパッチャを停止しました")
			return
		case ideaID := <-d.queue:
			d.dispatch(ctx, sem, ideaID)
		case <-ticker.C:
			if err := d.sweep(ctx, sem); err != nil {
				d.logger.Error("審査スイープの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// sweep は審査待ちのアイデアを全件取得し、並列で審査を実行する。
func (d *Dispatcher) sweep(ctx context.Context, sem chan struct{}) error {
	pending, err := d.ideaRepo.ListByStatus(ctx, model.IdeaStatusPending)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	d.logger.Info("審査スイープを開始します",
		slog.Int("pending_count", len(pending)),
	)
	for _, idea := range pending {
		d.dispatch(ctx, sem, idea.ID)
	}
	return nil
}

// dispatch はsemaphoreで並列数を制御しながら審査を実行する。
func (d *Dispatcher) dispatch(ctx context.Context, sem chan struct{}, ideaID string) {
	d.wg.Add(1)
	sem <- struct{}{} // semaphore取得（ブロック）

	go func() {
		defer d.wg.Done()
		defer func() { <-sem }() // semaphore解放
		d.Process(ctx, ideaID)
	}()
}

// Process は1件のアイデアを審査し、結果を反映する。
// 審査待ち以外のステータスのアイデアは何もしない（冪等）。
// 審査呼び出しの失敗は却下として反映される。
func (d *Dispatcher) Process(ctx context.Context, ideaID string) {
	idea, err := d.ideaRepo.FindByID(ctx, ideaID)
	if err != nil {
		d.logger.Error("審査対象アイデアの取得に失敗しました",
			slog.String("idea_id", ideaID),
			slog.String("error", err.Error()),
		)
		return
	}
	if idea == nil || idea.Status != model.IdeaStatusPending {
		return
	}

	cfg, err := d.settingsRepo.Get(ctx)
	if err != nil {
		d.logger.Error("アプリ設定の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return
	}
	reviewer := d.factory.ReviewerFor(cfg)

	reviewCtx, cancel := context.WithTimeout(ctx, d.reviewTimeout)
	defer cancel()

	start := time.Now()
	verdict, err := reviewer.Review(reviewCtx, idea.Content)
	d.collector.RecordReviewLatency(time.Since(start))

	if err != nil {
		// 審査失敗は却下へ縮退する。承認はしないが、投稿を審査待ちのまま
		// 放置もしない（ユーザーは再投稿できる）。
		d.logger.Error("審査の実行に失敗しました。却下として扱います",
			slog.String("idea_id", ideaID),
			slog.String("error", err.Error()),
		)
		d.collector.RecordReviewFailure()
		verdict = &moderation.Verdict{Approved: false, Reason: failureReason}
	}

	applied, err := d.applier.ApplyReview(ctx, ideaID, verdict)
	if err != nil {
		d.logger.Error("審査結果の反映に失敗しました",
			slog.String("idea_id", ideaID),
			slog.String("error", err.Error()),
		)
		return
	}
	if !applied {
		return
	}

	outcome := metrics.OutcomeRejected
	if verdict.Approved {
		outcome = metrics.OutcomeApproved
	}
	d.collector.RecordReviewOutcome(outcome)
}
