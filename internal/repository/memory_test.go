package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// MemoryIdeaRepoのUpdateStatusがpendingからの1回限りの遷移であることを検証
func TestMemoryIdeaRepo_UpdateStatus_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIdeaRepo()

	idea := &model.Idea{ID: "idea-1", AuthorID: "user-1", Status: model.IdeaStatusPending, CreatedAt: time.Now()}
	if err := repo.Create(ctx, idea); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	applied, err := repo.UpdateStatus(ctx, "idea-1", model.IdeaStatusApproved, "")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if !applied {
		t.Error("first transition should apply")
	}

	// 2回目の遷移は適用されない
	applied, err = repo.UpdateStatus(ctx, "idea-1", model.IdeaStatusRejected, "遅延した審査結果")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if applied {
		t.Error("second transition should not apply")
	}

	got, _ := repo.FindByID(ctx, "idea-1")
	if got.Status != model.IdeaStatusApproved {
		t.Errorf("Status = %q, want approved", got.Status)
	}
	if got.RejectionReason != "" {
		t.Errorf("RejectionReason = %q, want empty", got.RejectionReason)
	}
}

// 存在しないアイデアへのUpdateStatus/IncrementCounter/DeleteByIDがエラーにならないことを検証
func TestMemoryIdeaRepo_MissingIDIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIdeaRepo()

	applied, err := repo.UpdateStatus(ctx, "nope", model.IdeaStatusApproved, "")
	if err != nil || applied {
		t.Errorf("UpdateStatus = (%v, %v), want (false, nil)", applied, err)
	}
	if err := repo.IncrementCounter(ctx, "nope", model.VoteTypeLike); err != nil {
		t.Errorf("IncrementCounter returned error: %v", err)
	}
	if err := repo.DeleteByID(ctx, "nope"); err != nil {
		t.Errorf("DeleteByID returned error: %v", err)
	}
}

// ListByStatusが挿入順を保持することを検証
func TestMemoryIdeaRepo_ListByStatus_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIdeaRepo()

	// CreatedAtが逆順でも挿入順で返る
	now := time.Now()
	for i, id := range []string{"idea-a", "idea-b", "idea-c"} {
		idea := &model.Idea{
			ID:        id,
			AuthorID:  "user-1",
			Status:    model.IdeaStatusApproved,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, idea); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	ideas, err := repo.ListByStatus(ctx, model.IdeaStatusApproved)
	if err != nil {
		t.Fatalf("ListByStatus returned error: %v", err)
	}
	want := []string{"idea-a", "idea-b", "idea-c"}
	if len(ideas) != len(want) {
		t.Fatalf("len = %d, want %d", len(ideas), len(want))
	}
	for i, idea := range ideas {
		if idea.ID != want[i] {
			t.Errorf("ideas[%d].ID = %q, want %q", i, idea.ID, want[i])
		}
	}
}

// ListByAuthorが新しい順で返すことを検証
func TestMemoryIdeaRepo_ListByAuthor_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIdeaRepo()

	base := time.Now()
	repo.Create(ctx, &model.Idea{ID: "old", AuthorID: "user-1", Status: model.IdeaStatusApproved, CreatedAt: base.Add(-time.Hour)})
	repo.Create(ctx, &model.Idea{ID: "new", AuthorID: "user-1", Status: model.IdeaStatusApproved, CreatedAt: base})
	repo.Create(ctx, &model.Idea{ID: "other", AuthorID: "user-2", Status: model.IdeaStatusApproved, CreatedAt: base})

	ideas, err := repo.ListByAuthor(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByAuthor returned error: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("len = %d, want 2", len(ideas))
	}
	if ideas[0].ID != "new" || ideas[1].ID != "old" {
		t.Errorf("order = [%s, %s], want [new, old]", ideas[0].ID, ideas[1].ID)
	}
}

// CountActiveByAuthorが却下済みを除外することを検証
func TestMemoryIdeaRepo_CountActiveByAuthor_ExcludesRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIdeaRepo()

	now := time.Now()
	repo.Create(ctx, &model.Idea{ID: "i1", AuthorID: "user-1", Status: model.IdeaStatusApproved, CreatedAt: now})
	repo.Create(ctx, &model.Idea{ID: "i2", AuthorID: "user-1", Status: model.IdeaStatusPending, CreatedAt: now})
	repo.Create(ctx, &model.Idea{ID: "i3", AuthorID: "user-1", Status: model.IdeaStatusRejected, CreatedAt: now})

	count, err := repo.CountActiveByAuthor(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountActiveByAuthor returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (rejected excluded)", count)
	}
}

// MemoryInteractionRepoのUpsertが(user, idea)につき1件を保証することを検証
func TestMemoryInteractionRepo_Upsert_Supersedes(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInteractionRepo()

	first := &model.Interaction{UserID: "user-1", IdeaID: "idea-1", Type: model.VoteTypeLike, Timestamp: time.Now()}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	second := &model.Interaction{UserID: "user-1", IdeaID: "idea-1", Type: model.VoteTypeDislike, Timestamp: time.Now().Add(time.Second)}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	got, err := repo.FindByUserAndIdea(ctx, "user-1", "idea-1")
	if err != nil {
		t.Fatalf("FindByUserAndIdea returned error: %v", err)
	}
	if got == nil || got.Type != model.VoteTypeDislike {
		t.Errorf("interaction = %+v, want dislike", got)
	}

	all, _ := repo.ListByUser(ctx, "user-1")
	if len(all) != 1 {
		t.Errorf("len = %d, want exactly 1 interaction per (user, idea)", len(all))
	}
}

// ListByUserが新しい投票順で返すことを検証
func TestMemoryInteractionRepo_ListByUser_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInteractionRepo()

	base := time.Now()
	repo.Upsert(ctx, &model.Interaction{UserID: "u", IdeaID: "first", Type: model.VoteTypeLike, Timestamp: base.Add(-time.Minute)})
	repo.Upsert(ctx, &model.Interaction{UserID: "u", IdeaID: "second", Type: model.VoteTypeLike, Timestamp: base})

	got, err := repo.ListByUser(ctx, "u")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(got) != 2 || got[0].IdeaID != "second" {
		t.Errorf("order wrong: %+v", got)
	}
}

// MemorySessionRepoが期限切れセッションを返さないことを検証
func TestMemorySessionRepo_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo()

	repo.Create(ctx, &model.Session{ID: "expired", UserID: "u", ExpiresAt: time.Now().Add(-time.Hour)})
	repo.Create(ctx, &model.Session{ID: "valid", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)})

	if s, _ := repo.FindByID(ctx, "expired"); s != nil {
		t.Error("expired session should not be returned")
	}
	if s, _ := repo.FindByID(ctx, "valid"); s == nil {
		t.Error("valid session should be returned")
	}

	deleted, err := repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired returned error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

// MemoryUserRepoのFindByEmailが大文字小文字を区別しないことを検証
func TestMemoryUserRepo_FindByEmail_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	repo.Create(ctx, &model.User{ID: "u1", Email: "Taro@Example.com", CreatedAt: time.Now()})

	got, err := repo.FindByEmail(ctx, "taro@example.COM")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if got == nil || got.ID != "u1" {
		t.Errorf("got = %+v, want user u1", got)
	}
}

// ユーザー削除後もアイデアと投票が残ることを検証（カスケードなし）
func TestMemoryRepos_UserDeleteLeavesOrphans(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMemoryUserRepo()
	ideaRepo := NewMemoryIdeaRepo()
	interactionRepo := NewMemoryInteractionRepo()

	userRepo.Create(ctx, &model.User{ID: "author", Email: "a@example.com", CreatedAt: time.Now()})
	ideaRepo.Create(ctx, &model.Idea{ID: "idea-1", AuthorID: "author", Status: model.IdeaStatusApproved, CreatedAt: time.Now()})
	interactionRepo.Upsert(ctx, &model.Interaction{UserID: "author", IdeaID: "x", Type: model.VoteTypeLike, Timestamp: time.Now()})

	if err := userRepo.DeleteByID(ctx, "author"); err != nil {
		t.Fatalf("DeleteByID returned error: %v", err)
	}

	if idea, _ := ideaRepo.FindByID(ctx, "idea-1"); idea == nil {
		t.Error("authored idea should survive user deletion")
	}
	if ins, _ := interactionRepo.ListByUser(ctx, "author"); len(ins) != 1 {
		t.Error("interactions should survive user deletion")
	}
}

// MemorySettingsRepoが未保存時にデフォルトを返すことを検証
func TestMemorySettingsRepo_DefaultThenSave(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySettingsRepo()

	cfg, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if cfg.MaxIdeasPerUser != model.DefaultMaxIdeasPerUser || cfg.ModerationAPIKey != "" {
		t.Errorf("default config = %+v", cfg)
	}

	cfg.ModerationAPIKey = "sk-or-test"
	cfg.MaxIdeasPerUser = 5
	if err := repo.Save(ctx, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, _ := repo.Get(ctx)
	if got.ModerationAPIKey != "sk-or-test" || got.MaxIdeasPerUser != 5 {
		t.Errorf("saved config = %+v", got)
	}
}
