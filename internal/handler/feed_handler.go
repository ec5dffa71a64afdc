package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/ideaswipe/internal/feed"
	"github.com/hitoshi/ideaswipe/internal/metrics"
	"github.com/hitoshi/ideaswipe/internal/middleware"
	"github.com/hitoshi/ideaswipe/internal/model"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	Load(ctx context.Context, viewerID string) (*feed.Session, error)
	Vote(ctx context.Context, viewerID, ideaID string, voteType model.VoteType) (*model.Idea, error)
}

// FeedHandler はフィード関連のHTTPハンドラー。
type FeedHandler struct {
	service   FeedServiceInterface
	collector metrics.MetricsCollector
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface, collector metrics.MetricsCollector) *FeedHandler {
	return &FeedHandler{
		service:   service,
		collector: collector,
	}
}

// feedEntryResponse はフィード内の1件のレスポンス型。
// 未投票のアイデアには集計値を含めない（投票後に開示される）。
type feedEntryResponse struct {
	Idea     feedIdeaResponse `json:"idea"`
	Voted    bool             `json:"voted"`
	VoteType string           `json:"vote_type,omitempty"`
	Likes    *int             `json:"likes,omitempty"`
	Dislikes *int             `json:"dislikes,omitempty"`
}

// feedIdeaResponse はフィード表示用のアイデア情報。
type feedIdeaResponse struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// feedResponse はフィード全体のレスポンス型。
type feedResponse struct {
	Entries []feedEntryResponse `json:"entries"`
	Cursor  int                 `json:"cursor"`
}

func toFeedEntryResponse(e *feed.Entry) feedEntryResponse {
	resp := feedEntryResponse{
		Idea: feedIdeaResponse{
			ID:        e.Idea.ID,
			AuthorID:  e.Idea.AuthorID,
			Content:   e.Idea.Content,
			CreatedAt: e.Idea.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		Voted: e.Voted,
	}
	// 集計値は投票済みのエントリにのみ開示する
	if e.Voted {
		resp.VoteType = string(e.Vote)
		likes, dislikes := e.Idea.Likes, e.Idea.Dislikes
		resp.Likes = &likes
		resp.Dislikes = &dislikes
	}
	return resp
}

// GetFeed は閲覧者のフィードを組み立てて返す。
// GET /api/feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := h.service.Load(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]feedEntryResponse, 0, len(session.Entries()))
	for _, e := range session.Entries() {
		entries = append(entries, toFeedEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, feedResponse{
		Entries: entries,
		Cursor:  session.Cursor(),
	})
}

// voteRequest は投票のリクエストボディ。
type voteRequest struct {
	IdeaID   string `json:"idea_id"`
	VoteType string `json:"vote_type"`
}

// voteResponse は投票後のレスポンス型。投票により開示された集計値を含む。
type voteResponse struct {
	IdeaID   string `json:"idea_id"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
}

// Vote は指定アイデアへの投票を受け付ける。
// POST /api/feed/vote
func (h *FeedHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの形式が正しくありません"))
		return
	}

	idea, err := h.service.Vote(r.Context(), userID, req.IdeaID, model.VoteType(req.VoteType))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordVote(req.VoteType)
	writeJSON(w, http.StatusOK, voteResponse{
		IdeaID:   idea.ID,
		Likes:    idea.Likes,
		Dislikes: idea.Dislikes,
	})
}
