package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

func newTestService(t *testing.T) (*Service, *repository.MemoryUserRepo, *repository.MemorySessionRepo, *repository.MemoryIdeaRepo) {
	t.Helper()
	userRepo := repository.NewMemoryUserRepo()
	sessionRepo := repository.NewMemorySessionRepo()
	ideaRepo := repository.NewMemoryIdeaRepo()
	return NewService(userRepo, sessionRepo, ideaRepo), userRepo, sessionRepo, ideaRepo
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, sessionRepo, ideaRepo := newTestService(t)

	target := &model.User{ID: "user-1", Name: "Alice", Email: "alice@example.com", Role: model.RoleUser}
	if err := userRepo.Create(ctx, target); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	session := &model.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	if err := sessionRepo.Create(ctx, session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	idea := &model.Idea{ID: "idea-1", AuthorID: "user-1", Status: model.IdeaStatusApproved}
	if err := ideaRepo.Create(ctx, idea); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if u, _ := userRepo.FindByID(ctx, "user-1"); u != nil {
		t.Error("user should be deleted")
	}
	if s, _ := sessionRepo.FindByID(ctx, "sess-1"); s != nil {
		t.Error("sessions should be deleted with the user")
	}
	// アイデアはカスケード削除されず、フィードに残り続ける
	if i, _ := ideaRepo.FindByID(ctx, "idea-1"); i == nil {
		t.Error("authored ideas should survive user deletion")
	}
}

func TestDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	err := svc.Delete(ctx, "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Delete error = %v, want USER_NOT_FOUND", err)
	}
}

func TestCollectStats(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, ideaRepo := newTestService(t)

	users := []*model.User{
		{ID: "u1", Name: "Alice", Email: "a@example.com"},
		{ID: "u2", Name: "Bob", Email: "b@example.com"},
	}
	for _, u := range users {
		if err := userRepo.Create(ctx, u); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	ideas := []*model.Idea{
		{ID: "i1", AuthorID: "u1", Status: model.IdeaStatusApproved, Likes: 3, Dislikes: 1},
		{ID: "i2", AuthorID: "u2", Status: model.IdeaStatusRejected, Likes: 0, Dislikes: 2},
	}
	for _, i := range ideas {
		if err := ideaRepo.Create(ctx, i); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	stats, err := svc.CollectStats(ctx)
	if err != nil {
		t.Fatalf("CollectStats returned error: %v", err)
	}
	want := Stats{TotalUsers: 2, TotalIdeas: 2, TotalLikes: 3, TotalDislikes: 3}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}
