package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/user"
)

// UserServiceInterface は管理ハンドラーが必要とするユーザー管理インターフェース。
type UserServiceInterface interface {
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, userID string) error
	CollectStats(ctx context.Context) (*user.Stats, error)
}

// SettingsServiceInterface は管理ハンドラーが必要とする設定管理インターフェース。
type SettingsServiceInterface interface {
	Get(ctx context.Context) (model.AppConfig, error)
	Update(ctx context.Context, cfg model.AppConfig) (model.AppConfig, error)
}

// AdminHandler は管理者向けのHTTPハンドラー。
// 管理者ミドルウェアの背後に配置される。
type AdminHandler struct {
	userService     UserServiceInterface
	settingsService SettingsServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(userService UserServiceInterface, settingsService SettingsServiceInterface) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		settingsService: settingsService,
	}
}

// ListUsers は全ユーザーの一覧を返す。
// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]userResponse, len(users))
	for i, u := range users {
		results[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": results})
}

// DeleteUser はユーザーを削除する。
// そのユーザーの投稿と投票履歴は残る。
// DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := h.userService.Delete(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// settingsResponse はアプリ設定のレスポンス型。
// APIキーの値そのものは返さず、設定の有無のみを開示する。
type settingsResponse struct {
	ModerationKeySet bool `json:"moderation_key_set"`
	MaxIdeasPerUser  int  `json:"max_ideas_per_user"`
}

// GetSettings は現在のアプリ設定を返す。
// GET /api/admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settingsService.Get(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		ModerationKeySet: cfg.ModerationAPIKey != "",
		MaxIdeasPerUser:  cfg.MaxIdeasPerUser,
	})
}

// updateSettingsRequest はアプリ設定更新のリクエストボディ。
type updateSettingsRequest struct {
	ModerationAPIKey string `json:"moderation_api_key"`
	MaxIdeasPerUser  int    `json:"max_ideas_per_user"`
}

// UpdateSettings はアプリ設定を更新する。再起動なしで反映される。
// PUT /api/admin/settings
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの形式が正しくありません"))
		return
	}

	updated, err := h.settingsService.Update(r.Context(), model.AppConfig{
		ModerationAPIKey: req.ModerationAPIKey,
		MaxIdeasPerUser:  req.MaxIdeasPerUser,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		ModerationKeySet: updated.ModerationAPIKey != "",
		MaxIdeasPerUser:  updated.MaxIdeasPerUser,
	})
}

// statsResponse はアプリ全体の集計レスポンス型。
type statsResponse struct {
	TotalUsers    int `json:"total_users"`
	TotalIdeas    int `json:"total_ideas"`
	TotalLikes    int `json:"total_likes"`
	TotalDislikes int `json:"total_dislikes"`
}

// GetStats はアプリ全体の集計値を返す。
// GET /api/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userService.CollectStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalUsers:    stats.TotalUsers,
		TotalIdeas:    stats.TotalIdeas,
		TotalLikes:    stats.TotalLikes,
		TotalDislikes: stats.TotalDislikes,
	})
}
