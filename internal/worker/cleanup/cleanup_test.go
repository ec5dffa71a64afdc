package cleanup

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	sessionRepo := repository.NewMemorySessionRepo()
	job := NewSessionCleanupJob(sessionRepo, testLogger())

	sessions := []*model.Session{
		{ID: "expired-1", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)},
		{ID: "expired-2", UserID: "u2", ExpiresAt: time.Now().Add(-time.Minute)},
		{ID: "alive", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
	}
	for _, s := range sessions {
		if err := sessionRepo.Create(ctx, s); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// 有効なセッションだけが残る
	if alive, _ := sessionRepo.FindByID(ctx, "alive"); alive == nil {
		t.Error("valid session should survive cleanup")
	}
	deleted, err := sessionRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired returned error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("second cleanup deleted %d sessions, want 0", deleted)
	}
}

// 削除対象がなくてもエラーにならない（冪等）
func TestRun_Empty(t *testing.T) {
	job := NewSessionCleanupJob(repository.NewMemorySessionRepo(), testLogger())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	job := NewSessionCleanupJob(repository.NewMemorySessionRepo(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not stop after context cancel")
	}
}
