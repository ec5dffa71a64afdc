// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordSubmission()
	RecordReviewOutcome(outcome string)
	RecordReviewFailure()
	RecordReviewLatency(duration time.Duration)
	RecordVote(voteType string)
}

// 審査結果のラベル値。
const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
)

// コンパイル時のインターフェース実装チェック
var _ MetricsCollector = (*Collector)(nil)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	submissions   prometheus.Counter
	reviewOutcome *prometheus.CounterVec
	reviewFail    prometheus.Counter
	reviewLatency prometheus.Histogram
	votes         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ideaswipe_submissions_total",
			Help: "投稿されたアイデアの合計数",
		}),
		reviewOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideaswipe_reviews_total",
			Help: "審査結果別の完了数",
		}, []string{"outcome"}),
		reviewFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ideaswipe_review_fail_total",
			Help: "審査呼び出し失敗の合計数",
		}),
		reviewLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideaswipe_review_latency_seconds",
			Help:    "審査のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideaswipe_votes_total",
			Help: "投票種別ごとの合計数",
		}, []string{"vote_type"}),
	}

	reg.MustRegister(
		c.submissions,
		c.reviewOutcome,
		c.reviewFail,
		c.reviewLatency,
		c.votes,
	)

	return c
}

// RecordSubmission はアイデアの投稿を記録する。
func (c *Collector) RecordSubmission() {
	c.submissions.Inc()
}

// RecordReviewOutcome は審査の完了を結果別に記録する。
func (c *Collector) RecordReviewOutcome(outcome string) {
	c.reviewOutcome.WithLabelValues(outcome).Inc()
}

// RecordReviewFailure は審査呼び出しの失敗を記録する。
func (c *Collector) RecordReviewFailure() {
	c.reviewFail.Inc()
}

// RecordReviewLatency は審査のレイテンシを記録する。
func (c *Collector) RecordReviewLatency(duration time.Duration) {
	c.reviewLatency.Observe(duration.Seconds())
}

// RecordVote は投票を種別ごとに記録する。
func (c *Collector) RecordVote(voteType string) {
	c.votes.WithLabelValues(voteType).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
