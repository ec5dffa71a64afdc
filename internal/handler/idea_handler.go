package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ideaswipe/internal/metrics"
	"github.com/hitoshi/ideaswipe/internal/middleware"
	"github.com/hitoshi/ideaswipe/internal/model"
)

// IdeaServiceInterface はアイデアハンドラーが必要とするサービスインターフェース。
type IdeaServiceInterface interface {
	Submit(ctx context.Context, authorID, content string) (*model.Idea, error)
	Withdraw(ctx context.Context, userID, ideaID string) error
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Idea, error)
}

// IdeaHandler はアイデア投稿関連のHTTPハンドラー。
type IdeaHandler struct {
	service   IdeaServiceInterface
	collector metrics.MetricsCollector
}

// NewIdeaHandler はIdeaHandlerを生成する。
func NewIdeaHandler(service IdeaServiceInterface, collector metrics.MetricsCollector) *IdeaHandler {
	return &IdeaHandler{
		service:   service,
		collector: collector,
	}
}

// ideaResponse はアイデアのレスポンス型。
type ideaResponse struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"author_id"`
	Content         string    `json:"content"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	Likes           int       `json:"likes"`
	Dislikes        int       `json:"dislikes"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

func toIdeaResponse(idea *model.Idea) ideaResponse {
	return ideaResponse{
		ID:              idea.ID,
		AuthorID:        idea.AuthorID,
		Content:         idea.Content,
		Status:          string(idea.Status),
		CreatedAt:       idea.CreatedAt,
		Likes:           idea.Likes,
		Dislikes:        idea.Dislikes,
		RejectionReason: idea.RejectionReason,
	}
}

// submitRequest はアイデア投稿のリクエストボディ。
type submitRequest struct {
	Content string `json:"content"`
}

// Submit は新しいアイデアを投稿する。
// POST /api/ideas
func (h *IdeaHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの形式が正しくありません"))
		return
	}

	idea, err := h.service.Submit(r.Context(), userID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordSubmission()
	writeJSON(w, http.StatusCreated, toIdeaResponse(idea))
}

// ListMine は自分の投稿一覧を新しい順で返す。
// GET /api/ideas/mine
func (h *IdeaHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ideas, err := h.service.ListByAuthor(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]ideaResponse, len(ideas))
	for i, idea := range ideas {
		results[i] = toIdeaResponse(idea)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ideas": results})
}

// Withdraw は自分のアイデアを取り下げる。
// DELETE /api/ideas/{id}
func (h *IdeaHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ideaID := chi.URLParam(r, "id")
	if err := h.service.Withdraw(r.Context(), userID, ideaID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
