package recognition

import (
	"context"
	"errors"
	"testing"

	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
)

func TestCreateFeedbackDefaultsAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)

	fb, err := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{RecipientID: "bob", Message: "keep it up", Public: true})
	if err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}
	if fb.Type != FeedbackGeneral {
		t.Fatalf("type=%s, want GENERAL default", fb.Type)
	}
	if fb.Status != FeedbackPending {
		t.Fatalf("status=%s, want PENDING", fb.Status)
	}
	n := f.lastNotification(t, "bob")
	if n.Type != feed.TypeFeedback {
		t.Fatalf("notification type=%s, want %s", n.Type, feed.TypeFeedback)
	}
}

func TestCreateFeedbackWithoutRecipient(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", directory.RoleUser)

	fb, err := f.svc.CreateFeedback(context.Background(), alice, CreateFeedbackInput{Message: "the office coffee is cold", Type: FeedbackConstructive})
	if err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}
	if fb.RecipientID != "" {
		t.Fatalf("recipient=%q, want empty", fb.RecipientID)
	}
}

func TestCreateFeedbackValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)

	if _, err := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{Message: ""}); !errors.Is(err, ErrMessageLength) {
		t.Fatalf("blank err=%v, want ErrMessageLength", err)
	}
	if _, err := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{Message: "ok", Type: "SHOUTY"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad type err=%v, want ErrInvalidInput", err)
	}
	if _, err := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{RecipientID: "ghost", Message: "ok"}); !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("missing recipient err=%v, want directory.ErrNotFound", err)
	}
}

func TestAnonymousFeedbackMasksSender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	bob := f.addUser(t, "bob", directory.RoleUser)
	manager := f.addUser(t, "boss", directory.RoleManager)

	fb, err := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{RecipientID: "bob", Message: "anon note", Anonymous: true})
	if err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	got, err := f.svc.GetFeedback(ctx, bob, fb.ID)
	if err != nil {
		t.Fatalf("GetFeedback as recipient: %v", err)
	}
	if got.SenderID != "" {
		t.Fatalf("recipient sees sender %q, want masked", got.SenderID)
	}

	// автор и staff видят отправителя
	got, _ = f.svc.GetFeedback(ctx, alice, fb.ID)
	if got.SenderID != "alice" {
		t.Fatalf("author sees sender %q, want alice", got.SenderID)
	}
	got, _ = f.svc.GetFeedback(ctx, manager, fb.ID)
	if got.SenderID != "alice" {
		t.Fatalf("staff sees sender %q, want alice", got.SenderID)
	}

	items, _, err := f.svc.ListFeedback(ctx, bob, FeedbackFilter{RecipientID: "bob"})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(items) != 1 || items[0].SenderID != "" {
		t.Fatalf("list did not mask anonymous sender: %+v", items)
	}
}

func TestFeedbackVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)
	carol := f.addUser(t, "carol", directory.RoleUser)

	private, _ := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{RecipientID: "bob", Message: "private"})
	if _, err := f.svc.GetFeedback(ctx, carol, private.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger get err=%v, want ErrNotFound", err)
	}
	items, total, err := f.svc.ListFeedback(ctx, carol, FeedbackFilter{})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("stranger sees %d private entries", total)
	}
}

func TestReviewFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	manager := f.addUser(t, "boss", directory.RoleManager)

	fb, _ := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{Message: "complaint", Public: true})

	if _, err := f.svc.ReviewFeedback(ctx, alice, fb.ID, FeedbackReviewed, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-staff review err=%v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.ReviewFeedback(ctx, manager, fb.ID, FeedbackPending, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("review to PENDING err=%v, want ErrInvalidInput", err)
	}
	got, err := f.svc.ReviewFeedback(ctx, manager, fb.ID, FeedbackFlagged, "needs HR")
	if err != nil {
		t.Fatalf("ReviewFeedback: %v", err)
	}
	if got.Status != FeedbackFlagged || got.ReviewNote != "needs HR" {
		t.Fatalf("got %s/%q, want FLAGGED/needs HR", got.Status, got.ReviewNote)
	}
}

func TestDeleteFeedbackAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	bob := f.addUser(t, "bob", directory.RoleUser)
	admin := f.addUser(t, "admin", directory.RoleAdmin)

	fb, _ := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{RecipientID: "bob", Message: "note", Public: true})
	if err := f.svc.DeleteFeedback(ctx, bob, fb.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("recipient delete err=%v, want ErrUnauthorized", err)
	}
	if err := f.svc.DeleteFeedback(ctx, admin, fb.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := f.svc.GetFeedback(ctx, alice, fb.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted err=%v, want ErrNotFound", err)
	}
}

func TestCommentParentExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)

	k, _ := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "nice", Public: true})
	fb, _ := f.svc.CreateFeedback(ctx, alice, CreateFeedbackInput{RecipientID: "bob", Message: "note", Public: true})

	if _, err := f.svc.CreateComment(ctx, alice, CreateCommentInput{Message: "orphan"}); !errors.Is(err, ErrCommentParent) {
		t.Fatalf("no parent err=%v, want ErrCommentParent", err)
	}
	if _, err := f.svc.CreateComment(ctx, alice, CreateCommentInput{KudosID: k.ID, FeedbackID: fb.ID, Message: "greedy"}); !errors.Is(err, ErrCommentParent) {
		t.Fatalf("two parents err=%v, want ErrCommentParent", err)
	}
	if _, err := f.svc.CreateComment(ctx, alice, CreateCommentInput{KudosID: k.ID, Message: "ok"}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
}

func TestCommentOnPrivateParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	bob := f.addUser(t, "bob", directory.RoleUser)
	carol := f.addUser(t, "carol", directory.RoleUser)
	manager := f.addUser(t, "boss", directory.RoleManager)

	k, _ := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "secret"})

	if _, err := f.svc.CreateComment(ctx, carol, CreateCommentInput{KudosID: k.ID, Message: "nosy"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger comment err=%v, want ErrUnauthorized", err)
	}
	for _, actor := range []directory.Actor{alice, bob, manager} {
		if _, err := f.svc.CreateComment(ctx, actor, CreateCommentInput{KudosID: k.ID, Message: "ok"}); err != nil {
			t.Fatalf("comment as %s: %v", actor.ID, err)
		}
	}
}

func TestCommentNotifiesParentAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	bob := f.addUser(t, "bob", directory.RoleUser)

	k, _ := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "nice", Public: true})
	if _, err := f.svc.CreateComment(ctx, bob, CreateCommentInput{KudosID: k.ID, Message: "thanks!"}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	n := f.lastNotification(t, "alice")
	if n.Type != feed.TypeComment {
		t.Fatalf("notification type=%s, want %s", n.Type, feed.TypeComment)
	}

	// собственный комментарий не уведомляет автора
	before, _, _ := f.feed.Notifications(ctx, "alice", 0, 100)
	if _, err := f.svc.CreateComment(ctx, alice, CreateCommentInput{KudosID: k.ID, Message: "you're welcome"}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	after, _, _ := f.feed.Notifications(ctx, "alice", 0, 100)
	if len(after) != len(before) {
		t.Fatalf("self comment produced a notification")
	}
}

func TestCommentListAndEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	bob := f.addUser(t, "bob", directory.RoleUser)

	k, _ := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "nice", Public: true})
	c1, _ := f.svc.CreateComment(ctx, alice, CreateCommentInput{KudosID: k.ID, Message: "first"})
	c2, _ := f.svc.CreateComment(ctx, bob, CreateCommentInput{KudosID: k.ID, Message: "second"})

	items, total, err := f.svc.ListComments(ctx, k.ID, "", 0, 10)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if total != 2 || items[0].ID != c1.ID || items[1].ID != c2.ID {
		t.Fatalf("comments out of order: total=%d", total)
	}
	if _, _, err := f.svc.ListComments(ctx, "", "", 0, 10); !errors.Is(err, ErrCommentParent) {
		t.Fatalf("no parent list err=%v, want ErrCommentParent", err)
	}

	if _, err := f.svc.UpdateComment(ctx, alice, c2.ID, "hijack"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("edit someone else's comment err=%v, want ErrUnauthorized", err)
	}
	if err := f.svc.DeleteComment(ctx, bob, c2.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if _, total, _ := f.svc.ListComments(ctx, k.ID, "", 0, 10); total != 1 {
		t.Fatalf("total=%d after delete, want 1", total)
	}
}

func TestDeleteKudosCascadesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)

	k, _ := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "nice", Public: true})
	c, _ := f.svc.CreateComment(ctx, alice, CreateCommentInput{KudosID: k.ID, Message: "note"})

	if err := f.svc.DeleteKudos(ctx, alice, k.ID); err != nil {
		t.Fatalf("DeleteKudos: %v", err)
	}
	if _, err := f.svc.UpdateComment(ctx, alice, c.ID, "still here?"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("comment survived cascade: err=%v", err)
	}
}
