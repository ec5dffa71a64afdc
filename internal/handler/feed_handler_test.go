package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/ideaswipe/internal/feed"
	"github.com/hitoshi/ideaswipe/internal/interaction"
	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

// --- モック定義 ---

// mockFeedService はFeedServiceInterfaceのモック実装。
type mockFeedService struct {
	loadFn func(ctx context.Context, viewerID string) (*feed.Session, error)
	voteFn func(ctx context.Context, viewerID, ideaID string, voteType model.VoteType) (*model.Idea, error)
}

func (m *mockFeedService) Load(ctx context.Context, viewerID string) (*feed.Session, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, viewerID)
	}
	return nil, nil
}

func (m *mockFeedService) Vote(ctx context.Context, viewerID, ideaID string, voteType model.VoteType) (*model.Idea, error) {
	if m.voteFn != nil {
		return m.voteFn(ctx, viewerID, ideaID, voteType)
	}
	return nil, nil
}

// newFeedSessionForTest はメモリリポジトリ上の実サービスでセッションを組み立てる。
// ideasは承認済みとして格納し、votedには閲覧者が投票済みのアイデアIDを渡す。
func newFeedSessionForTest(t *testing.T, viewerID string, ideas []*model.Idea, voted map[string]model.VoteType) *feed.Session {
	t.Helper()
	ctx := context.Background()

	ideaRepo := repository.NewMemoryIdeaRepo()
	interactionRepo := repository.NewMemoryInteractionRepo()
	recorder := interaction.NewService(interactionRepo, ideaRepo)

	for _, idea := range ideas {
		if err := ideaRepo.Create(ctx, idea); err != nil {
			t.Fatalf("failed to create idea: %v", err)
		}
	}
	for ideaID, voteType := range voted {
		if err := recorder.Record(ctx, viewerID, ideaID, voteType); err != nil {
			t.Fatalf("failed to record vote: %v", err)
		}
	}

	svc := feed.NewService(ideaRepo, interactionRepo, recorder)
	session, err := svc.Load(ctx, viewerID)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return session
}

func approvedIdea(id, authorID string, likes, dislikes int) *model.Idea {
	return &model.Idea{
		ID:       id,
		AuthorID: authorID,
		Content:  validContent,
		Status:   model.IdeaStatusApproved,
		Likes:    likes,
		Dislikes: dislikes,
	}
}

// --- GET /api/feed テスト ---

func TestFeedHandler_GetFeed_Success(t *testing.T) {
	session := newFeedSessionForTest(t, "viewer-1",
		[]*model.Idea{
			approvedIdea("idea-a", "author-1", 5, 2),
			approvedIdea("idea-b", "author-2", 0, 0),
		},
		nil,
	)
	svc := &mockFeedService{
		loadFn: func(ctx context.Context, viewerID string) (*feed.Session, error) {
			if viewerID != "viewer-1" {
				t.Errorf("viewerID = %q, want %q", viewerID, "viewer-1")
			}
			return session, nil
		},
	}
	h := NewFeedHandler(svc, newMockCollector())

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req = withUserID(req, "viewer-1")
	w := httptest.NewRecorder()

	h.GetFeed(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got.Entries))
	}
	if got.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", got.Cursor)
	}
	if got.Entries[0].Idea.ID != "idea-a" {
		t.Errorf("entries[0].idea.id = %q, want %q", got.Entries[0].Idea.ID, "idea-a")
	}
}

// 未投票のアイデアには集計値を含めないことを確認する。
func TestFeedHandler_GetFeed_HidesCountsUntilVoted(t *testing.T) {
	session := newFeedSessionForTest(t, "viewer-1",
		[]*model.Idea{
			approvedIdea("idea-voted", "author-1", 5, 2),
			approvedIdea("idea-unvoted", "author-2", 9, 9),
		},
		map[string]model.VoteType{"idea-voted": model.VoteTypeLike},
	)
	svc := &mockFeedService{
		loadFn: func(ctx context.Context, viewerID string) (*feed.Session, error) {
			return session, nil
		},
	}
	h := NewFeedHandler(svc, newMockCollector())

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req = withUserID(req, "viewer-1")
	w := httptest.NewRecorder()

	h.GetFeed(w, req)

	var got feedResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got.Entries))
	}

	votedEntry := got.Entries[0]
	if !votedEntry.Voted {
		t.Fatal("expected entries[0] to be voted")
	}
	if votedEntry.Likes == nil || *votedEntry.Likes != 6 {
		t.Errorf("voted entry likes = %v, want 6", votedEntry.Likes)
	}
	if votedEntry.VoteType != string(model.VoteTypeLike) {
		t.Errorf("vote_type = %q, want %q", votedEntry.VoteType, model.VoteTypeLike)
	}

	unvotedEntry := got.Entries[1]
	if unvotedEntry.Voted {
		t.Fatal("expected entries[1] to be unvoted")
	}
	if unvotedEntry.Likes != nil || unvotedEntry.Dislikes != nil {
		t.Error("unvoted entry must not expose vote counts")
	}

	// 未投票カーソルは投票済みをスキップする
	if got.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", got.Cursor)
	}
}

func TestFeedHandler_GetFeed_Empty(t *testing.T) {
	session := newFeedSessionForTest(t, "viewer-1", nil, nil)
	svc := &mockFeedService{
		loadFn: func(ctx context.Context, viewerID string) (*feed.Session, error) {
			return session, nil
		},
	}
	h := NewFeedHandler(svc, newMockCollector())

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req = withUserID(req, "viewer-1")
	w := httptest.NewRecorder()

	h.GetFeed(w, req)

	var got feedResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(got.Entries))
	}
	if got.Cursor != -1 {
		t.Errorf("cursor = %d, want -1", got.Cursor)
	}
}

func TestFeedHandler_GetFeed_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewFeedHandler(&mockFeedService{}, newMockCollector())

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	w := httptest.NewRecorder()

	h.GetFeed(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

// --- POST /api/feed/vote テスト ---

func TestFeedHandler_Vote_Success(t *testing.T) {
	svc := &mockFeedService{
		voteFn: func(ctx context.Context, viewerID, ideaID string, voteType model.VoteType) (*model.Idea, error) {
			if viewerID != "viewer-1" {
				t.Errorf("viewerID = %q, want %q", viewerID, "viewer-1")
			}
			if ideaID != "idea-a" {
				t.Errorf("ideaID = %q, want %q", ideaID, "idea-a")
			}
			if voteType != model.VoteTypeLike {
				t.Errorf("voteType = %q, want %q", voteType, model.VoteTypeLike)
			}
			return &model.Idea{ID: ideaID, Likes: 6, Dislikes: 2}, nil
		},
	}
	collector := newMockCollector()
	h := NewFeedHandler(svc, collector)

	body := `{"idea_id":"idea-a","vote_type":"like"}`
	req := httptest.NewRequest(http.MethodPost, "/api/feed/vote", strings.NewReader(body))
	req = withUserID(req, "viewer-1")
	w := httptest.NewRecorder()

	h.Vote(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got voteResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Likes != 6 {
		t.Errorf("likes = %d, want 6", got.Likes)
	}
	if got.Dislikes != 2 {
		t.Errorf("dislikes = %d, want 2", got.Dislikes)
	}

	if collector.votes["like"] != 1 {
		t.Errorf("votes[like] = %d, want 1", collector.votes["like"])
	}
}

func TestFeedHandler_Vote_InvalidType_ReturnsBadRequest(t *testing.T) {
	svc := &mockFeedService{
		voteFn: func(ctx context.Context, viewerID, ideaID string, voteType model.VoteType) (*model.Idea, error) {
			return nil, model.NewValidationError("不正な投票種別です")
		},
	}
	collector := newMockCollector()
	h := NewFeedHandler(svc, collector)

	body := `{"idea_id":"idea-a","vote_type":"meh"}`
	req := httptest.NewRequest(http.MethodPost, "/api/feed/vote", strings.NewReader(body))
	req = withUserID(req, "viewer-1")
	w := httptest.NewRecorder()

	h.Vote(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	// 失敗した投票はメトリクスに計上しない
	if len(collector.votes) != 0 {
		t.Errorf("votes = %v, want empty", collector.votes)
	}
}

func TestFeedHandler_Vote_IneligibleIdea_ReturnsNotFound(t *testing.T) {
	svc := &mockFeedService{
		voteFn: func(ctx context.Context, viewerID, ideaID string, voteType model.VoteType) (*model.Idea, error) {
			return nil, model.NewIdeaNotFoundError(ideaID)
		},
	}
	h := NewFeedHandler(svc, newMockCollector())

	body := `{"idea_id":"idea-own","vote_type":"like"}`
	req := httptest.NewRequest(http.MethodPost, "/api/feed/vote", strings.NewReader(body))
	req = withUserID(req, "viewer-1")
	w := httptest.NewRecorder()

	h.Vote(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestFeedHandler_Vote_InvalidBody_ReturnsBadRequest(t *testing.T) {
	h := NewFeedHandler(&mockFeedService{}, newMockCollector())

	req := httptest.NewRequest(http.MethodPost, "/api/feed/vote", strings.NewReader("not json"))
	req = withUserID(req, "viewer-1")
	w := httptest.NewRecorder()

	h.Vote(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
