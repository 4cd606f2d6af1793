package recognition

import (
	"context"
	"errors"
	"testing"
	"time"

	"teampulse.org/internal/budget"
	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
)

type fixture struct {
	users       *directory.InMemoryUsers
	budgetStore *budget.InMemory
	budgets     *budget.Service
	notes       *feed.InMemoryNotifications
	feed        *feed.Service
	svc         *Service
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	users := directory.NewInMemoryUsers()
	bstore := budget.NewInMemory()
	budgets := budget.NewService(bstore,
		budget.WithClock(clock),
		budget.WithDefaults(50000, 10000),
	)
	notes := feed.NewInMemoryNotifications()
	fd := feed.NewService(notes, feed.NewInMemoryActivities(), nil)
	svc := NewService(NewInMemory(), users, budgets, fd, WithClock(clock))
	return &fixture{users: users, budgetStore: bstore, budgets: budgets, notes: notes, feed: fd, svc: svc, now: now}
}

func (f *fixture) addUser(t *testing.T, id string, role directory.Role) directory.Actor {
	t.Helper()
	u := &directory.User{
		ID:     id,
		Email:  id + "@teampulse.test",
		Name:   id,
		Role:   role,
		Active: true,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return directory.Actor{ID: id, Role: role}
}

func (f *fixture) fund(t *testing.T, userID string, total, monthly int64) {
	t.Helper()
	err := f.budgetStore.Create(context.Background(), &budget.Budget{
		UserID:    userID,
		Total:     total,
		Monthly:   monthly,
		ResetDate: f.now,
	})
	if err != nil {
		t.Fatalf("fund %s: %v", userID, err)
	}
}

func (f *fixture) user(t *testing.T, id string) *directory.User {
	t.Helper()
	u, err := f.users.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("find user %s: %v", id, err)
	}
	return u
}

func (f *fixture) lastNotification(t *testing.T, userID string) *feed.Notification {
	t.Helper()
	items, _, err := f.feed.Notifications(context.Background(), userID, 0, 1)
	if err != nil {
		t.Fatalf("notifications for %s: %v", userID, err)
	}
	if len(items) == 0 {
		t.Fatalf("no notifications for %s", userID)
	}
	return items[0]
}

func TestRequiresApprovalMatrix(t *testing.T) {
	cases := []struct {
		sender, recipient directory.Role
		want              bool
	}{
		{directory.RoleAdmin, directory.RoleUser, true},
		{directory.RoleAdmin, directory.RoleManager, false},
		{directory.RoleAdmin, directory.RoleAdmin, false},
		{directory.RoleManager, directory.RoleUser, false},
		{directory.RoleUser, directory.RoleUser, false},
		{directory.RoleUser, directory.RoleAdmin, false},
	}
	for _, c := range cases {
		if got := RequiresApproval(c.sender, c.recipient); got != c.want {
			t.Fatalf("RequiresApproval(%s, %s)=%v, want %v", c.sender, c.recipient, got, c.want)
		}
	}
}

func TestCreateKudosAdminToUserPendsAndDeducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", directory.RoleAdmin)
	f.addUser(t, "alice", directory.RoleUser)
	f.fund(t, "admin", 50000, 10000)

	k, err := f.svc.CreateKudos(ctx, admin, CreateKudosInput{
		RecipientID: "alice",
		Message:     "great launch",
		Amount:      5000,
		Public:      true,
	})
	if err != nil {
		t.Fatalf("CreateKudos: %v", err)
	}
	if k.Status != StatusPending {
		t.Fatalf("status=%s, want PENDING", k.Status)
	}
	if k.Currency != "USD" {
		t.Fatalf("currency=%s, want USD", k.Currency)
	}

	b, err := f.budgets.Get(ctx, "admin")
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	if b.Used != 5000 {
		t.Fatalf("used=%d, want 5000", b.Used)
	}

	// счётчики трогаем только после одобрения
	if got := f.user(t, "admin").TotalKudosSent; got != 0 {
		t.Fatalf("sender counter=%d, want 0", got)
	}
	if got := f.user(t, "alice").TotalKudosReceived; got != 0 {
		t.Fatalf("recipient counter=%d, want 0", got)
	}

	n := f.lastNotification(t, "alice")
	if n.Type != feed.TypeKudosPending {
		t.Fatalf("notification type=%s, want %s", n.Type, feed.TypeKudosPending)
	}
}

func TestApproveKudos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", directory.RoleAdmin)
	f.addUser(t, "alice", directory.RoleUser)
	manager := f.addUser(t, "boss", directory.RoleManager)
	f.fund(t, "admin", 50000, 10000)

	k, err := f.svc.CreateKudos(ctx, admin, CreateKudosInput{RecipientID: "alice", Message: "great launch", Amount: 5000})
	if err != nil {
		t.Fatalf("CreateKudos: %v", err)
	}

	approved, err := f.svc.ApproveKudos(ctx, manager, k.ID, "verified")
	if err != nil {
		t.Fatalf("ApproveKudos: %v", err)
	}
	if approved.Status != StatusApproved || approved.StatusReason != "verified" {
		t.Fatalf("got %s/%q, want APPROVED/verified", approved.Status, approved.StatusReason)
	}
	if got := f.user(t, "admin").TotalKudosSent; got != 1 {
		t.Fatalf("sender counter=%d, want 1", got)
	}
	if got := f.user(t, "alice").TotalKudosReceived; got != 1 {
		t.Fatalf("recipient counter=%d, want 1", got)
	}
	n := f.lastNotification(t, "alice")
	if n.Title != "Kudos Approved!" {
		t.Fatalf("notification title=%q", n.Title)
	}

	// терминальное состояние
	if _, err := f.svc.ApproveKudos(ctx, manager, k.ID, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second approve err=%v, want ErrNotPending", err)
	}
}

func TestRejectKudosLeavesCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", directory.RoleAdmin)
	f.addUser(t, "alice", directory.RoleUser)
	manager := f.addUser(t, "boss", directory.RoleManager)
	f.fund(t, "admin", 50000, 10000)

	k, _ := f.svc.CreateKudos(ctx, admin, CreateKudosInput{RecipientID: "alice", Message: "hm", Amount: 1000})
	rejected, err := f.svc.RejectKudos(ctx, manager, k.ID, "policy")
	if err != nil {
		t.Fatalf("RejectKudos: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("status=%s, want REJECTED", rejected.Status)
	}
	if got := f.user(t, "alice").TotalKudosReceived; got != 0 {
		t.Fatalf("recipient counter=%d, want 0", got)
	}
	n := f.lastNotification(t, "admin")
	if n.Severity != feed.SeverityWarning {
		t.Fatalf("severity=%s, want warning", n.Severity)
	}
	if _, err := f.svc.ApproveKudos(ctx, manager, k.ID, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("approve after reject err=%v, want ErrNotPending", err)
	}
}

func TestCreateKudosMonthlyCapExceeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)
	f.fund(t, "alice", 10000, 2000)

	_, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "big spender", Amount: 3000})
	if !errors.Is(err, budget.ErrInsufficientMonthly) {
		t.Fatalf("err=%v, want ErrInsufficientMonthly", err)
	}
	b, _ := f.budgets.Get(ctx, "alice")
	if b.Used != 0 {
		t.Fatalf("used=%d, want 0 after failed create", b.Used)
	}
	if _, _, err := f.svc.ListKudos(ctx, alice, KudosFilter{SenderID: "alice"}); err != nil {
		t.Fatalf("ListKudos: %v", err)
	}
}

func TestCreateKudosNoBudget(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)

	_, err := f.svc.CreateKudos(context.Background(), alice, CreateKudosInput{RecipientID: "bob", Message: "thanks", Amount: 100})
	if !errors.Is(err, budget.ErrNoBudget) {
		t.Fatalf("err=%v, want ErrNoBudget", err)
	}
}

func TestCreateKudosZeroAmountSkipsBudget(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)

	k, err := f.svc.CreateKudos(context.Background(), alice, CreateKudosInput{RecipientID: "bob", Message: "thanks"})
	if err != nil {
		t.Fatalf("CreateKudos: %v", err)
	}
	if k.Status != StatusApproved {
		t.Fatalf("status=%s, want APPROVED", k.Status)
	}
	if got := f.user(t, "bob").TotalKudosReceived; got != 1 {
		t.Fatalf("recipient counter=%d, want 1", got)
	}
}

func TestSelfKudosAllowed(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.fund(t, "alice", 10000, 5000)

	k, err := f.svc.CreateKudos(context.Background(), alice, CreateKudosInput{RecipientID: "alice", Message: "treat yourself", Amount: 500})
	if err != nil {
		t.Fatalf("self kudos: %v", err)
	}
	if k.Status != StatusApproved {
		t.Fatalf("status=%s, want APPROVED", k.Status)
	}
	u := f.user(t, "alice")
	if u.TotalKudosSent != 1 || u.TotalKudosReceived != 1 {
		t.Fatalf("counters sent=%d received=%d, want 1/1", u.TotalKudosSent, u.TotalKudosReceived)
	}
}

func TestCreateKudosValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)

	if _, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "  "}); !errors.Is(err, ErrMessageLength) {
		t.Fatalf("blank message err=%v, want ErrMessageLength", err)
	}
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: string(long)}); !errors.Is(err, ErrMessageLength) {
		t.Fatalf("long message err=%v, want ErrMessageLength", err)
	}
	if _, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "ok", Amount: -5}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative amount err=%v, want ErrInvalidInput", err)
	}
	if _, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "ok", TagIDs: []string{"tag-nope"}}); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("unknown tag err=%v, want ErrUnknownTag", err)
	}
	if _, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "ghost", Message: "ok"}); !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("missing recipient err=%v, want directory.ErrNotFound", err)
	}
}

func TestKudosVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	bob := f.addUser(t, "bob", directory.RoleUser)
	carol := f.addUser(t, "carol", directory.RoleUser)
	manager := f.addUser(t, "boss", directory.RoleManager)

	private, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "между нами"})
	if err != nil {
		t.Fatalf("CreateKudos: %v", err)
	}
	public, err := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "for everyone", Public: true})
	if err != nil {
		t.Fatalf("CreateKudos: %v", err)
	}

	if _, err := f.svc.GetKudos(ctx, carol, private.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger get err=%v, want ErrNotFound", err)
	}
	for _, actor := range []directory.Actor{alice, bob, manager} {
		if _, err := f.svc.GetKudos(ctx, actor, private.ID); err != nil {
			t.Fatalf("get as %s: %v", actor.ID, err)
		}
	}

	items, total, err := f.svc.ListKudos(ctx, carol, KudosFilter{})
	if err != nil {
		t.Fatalf("ListKudos: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != public.ID {
		t.Fatalf("stranger sees %d items (total %d), want only the public one", len(items), total)
	}
	if _, total, _ := f.svc.ListKudos(ctx, manager, KudosFilter{}); total != 2 {
		t.Fatalf("staff total=%d, want 2", total)
	}
}

func TestDeleteApprovedKudosReversesCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	f.addUser(t, "bob", directory.RoleUser)

	k, _ := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "nice"})
	if got := f.user(t, "bob").TotalKudosReceived; got != 1 {
		t.Fatalf("counter=%d, want 1", got)
	}
	if err := f.svc.DeleteKudos(ctx, alice, k.ID); err != nil {
		t.Fatalf("DeleteKudos: %v", err)
	}
	if got := f.user(t, "bob").TotalKudosReceived; got != 0 {
		t.Fatalf("counter=%d after delete, want 0", got)
	}
	if _, err := f.svc.GetKudos(ctx, alice, k.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted err=%v, want ErrNotFound", err)
	}
}

func TestUpdateKudosAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice", directory.RoleUser)
	bob := f.addUser(t, "bob", directory.RoleUser)
	admin := f.addUser(t, "admin", directory.RoleAdmin)

	k, _ := f.svc.CreateKudos(ctx, alice, CreateKudosInput{RecipientID: "bob", Message: "v1"})
	msg := "v2"
	if _, err := f.svc.UpdateKudos(ctx, bob, k.ID, UpdateKudosInput{Message: &msg}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("recipient edit err=%v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.UpdateKudos(ctx, admin, k.ID, UpdateKudosInput{Message: &msg}); err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	got, _ := f.svc.GetKudos(ctx, alice, k.ID)
	if got.Message != "v2" {
		t.Fatalf("message=%q, want v2", got.Message)
	}
}

func TestTagsCatalog(t *testing.T) {
	f := newFixture(t)
	tags, err := f.svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) == 0 {
		t.Fatal("empty tag catalog")
	}
	for _, tag := range tags {
		if tag.ID == "" || tag.Name == "" {
			t.Fatalf("malformed tag %+v", tag)
		}
	}
}
