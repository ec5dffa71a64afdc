package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// systemPrompt は審査モデルへ渡す指示文。
// 応答はJSONのみを要求し、それ以外の形式はパースエラーとして扱う。
const systemPrompt = `You are a content moderator for a startup idea sharing platform. ` +
	`Review the submitted idea and decide whether to approve it. ` +
	`Reject ideas that contain personal information (names, emails, phone numbers), ` +
	`contain URLs or links, or are not actually startup ideas. ` +
	`Respond with JSON only, in the form {"approved": true/false, "reason": "..."}.`

// RemoteReviewer はOpenAI互換のチャット補完APIを使ったリモート審査器。
// 設定でAPIキーが与えられている場合に使用される。
type RemoteReviewer struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	model      string
	apiKey     string
}

// NewRemoteReviewer はRemoteReviewerを生成する。
// httpClientにはSSRF防止機能付きのクライアントを渡すこと
// （エンドポイントは設定で差し替え可能なため）。
func NewRemoteReviewer(httpClient *http.Client, logger *slog.Logger, endpoint, model, apiKey string) *RemoteReviewer {
	return &RemoteReviewer{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
	}
}

var _ Reviewer = (*RemoteReviewer)(nil)

// chatRequest はチャット補完APIのリクエストボディ。
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse はチャット補完APIのレスポンスボディ。
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Review はアイデア本文をリモートAPIで審査する。
// APIの呼び出し失敗はそのままエラーとして返し、承認/却下の判断は呼び出し元に委ねる。
func (r *RemoteReviewer) Review(ctx context.Context, content string) (*Verdict, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: content},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストボディの構築に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error("審査APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("審査APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("審査APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("審査APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		r.logger.Error("審査APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("審査APIのレスポンスにchoicesが含まれていません")
	}

	verdict, err := parseVerdict(chatResp.Choices[0].Message.Content)
	if err != nil {
		r.logger.Error("審査結果のパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return verdict, nil
}

// parseVerdict はモデルの応答テキストから審査結果を取り出す。
// モデルがコードフェンスでJSONを囲むことがあるため、その場合は中身を取り出す。
func parseVerdict(content string) (*Verdict, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	var verdict struct {
		Approved bool   `json:"approved"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("審査結果のJSONパースに失敗しました: %w", err)
	}

	return &Verdict{Approved: verdict.Approved, Reason: verdict.Reason}, nil
}
