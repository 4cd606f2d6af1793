package directory

import (
	"context"
	"errors"
	"testing"
)

func newService(t *testing.T) (*Service, *InMemoryUsers) {
	t.Helper()
	users := NewInMemoryUsers()
	return NewService(users, NewInMemoryTeams()), users
}

func register(t *testing.T, s *Service, email, name string) *User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{
		Email:    email,
		Name:     name,
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func TestRegisterNormalizesEmail(t *testing.T) {
	s, _ := newService(t)
	u, err := s.Register(context.Background(), RegisterInput{
		Email:    "  Alice@Corp.Test ",
		Name:     " Alice ",
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "alice@corp.test" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Name != "Alice" {
		t.Errorf("name not trimmed: %q", u.Name)
	}
	if u.Role != RoleUser || !u.Active {
		t.Errorf("new account must be an active USER, got %s active=%v", u.Role, u.Active)
	}
	if u.PasswordHash == "correct horse battery staple" {
		t.Error("password stored in clear")
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newService(t)
	for _, in := range []RegisterInput{
		{Email: "", Name: "X", Password: "p4ssw0rd-p4ssw0rd"},
		{Email: "not-an-email", Name: "X", Password: "p4ssw0rd-p4ssw0rd"},
		{Email: "x@y.z", Name: "  ", Password: "p4ssw0rd-p4ssw0rd"},
	} {
		if _, err := s.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}

	register(t, s, "taken@corp.test", "First")
	_, err := s.Register(context.Background(), RegisterInput{
		Email: "TAKEN@corp.test", Name: "Second", Password: "p4ssw0rd-p4ssw0rd",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticateCollapsesFailures(t *testing.T) {
	s, users := newService(t)
	u := register(t, s, "alice@corp.test", "Alice")

	if _, err := s.Authenticate(context.Background(), "alice@corp.test", "correct horse battery staple"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}

	// неверный пароль, неизвестный email и выключенный аккаунт выглядят одинаково
	if _, err := s.Authenticate(context.Background(), "alice@corp.test", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := s.Authenticate(context.Background(), "ghost@corp.test", "whatever"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown email: got %v", err)
	}
	if err := users.SetActive(context.Background(), u.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := s.Authenticate(context.Background(), "alice@corp.test", "correct horse battery staple"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("inactive account: got %v", err)
	}
}

func TestUpdateAuthorization(t *testing.T) {
	s, _ := newService(t)
	alice := register(t, s, "alice@corp.test", "Alice")
	bob := register(t, s, "bob@corp.test", "Bob")

	name := "Alice Cooper"
	if _, err := s.Update(context.Background(), Actor{ID: alice.ID, Role: RoleUser}, alice.ID, ProfileUpdate{Name: &name}); err != nil {
		t.Fatalf("self update: %v", err)
	}

	// чужой профиль обычному пользователю недоступен
	if _, err := s.Update(context.Background(), Actor{ID: bob.ID, Role: RoleUser}, alice.ID, ProfileUpdate{Name: &name}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("foreign update: got %v", err)
	}

	// роль меняет только админ
	role := RoleManager
	if _, err := s.Update(context.Background(), Actor{ID: alice.ID, Role: RoleUser}, alice.ID, ProfileUpdate{Role: &role}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("self role change: got %v", err)
	}
	admin := register(t, s, "admin@corp.test", "Admin")
	u, err := s.Update(context.Background(), Actor{ID: admin.ID, Role: RoleAdmin}, alice.ID, ProfileUpdate{Role: &role})
	if err != nil {
		t.Fatalf("admin role change: %v", err)
	}
	if u.Role != RoleManager {
		t.Errorf("role = %s, want MANAGER", u.Role)
	}

	bad := Role("OVERLORD")
	if _, err := s.Update(context.Background(), Actor{ID: admin.ID, Role: RoleAdmin}, alice.ID, ProfileUpdate{Role: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("invalid role: got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	s, _ := newService(t)
	u := register(t, s, "alice@corp.test", "Alice")

	if err := s.ChangePassword(context.Background(), u.ID, "wrong", "new-password-123"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong current password: got %v", err)
	}
	if err := s.ChangePassword(context.Background(), u.ID, "correct horse battery staple", "new-password-123"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := s.Authenticate(context.Background(), "alice@corp.test", "new-password-123"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, err := s.Authenticate(context.Background(), "alice@corp.test", "correct horse battery staple"); !errors.Is(err, ErrUnauthorized) {
		t.Fatal("old password still accepted")
	}
}

func TestListHidesInactiveFromNonStaff(t *testing.T) {
	s, users := newService(t)
	register(t, s, "alice@corp.test", "Alice")
	bob := register(t, s, "bob@corp.test", "Bob")
	if err := users.SetActive(context.Background(), bob.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, total, err := s.List(context.Background(), Actor{ID: "x", Role: RoleUser}, UserFilter{IncludeInactive: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Errorf("non-staff sees %d users, want 1", total)
	}

	_, total, err = s.List(context.Background(), Actor{ID: "x", Role: RoleManager}, UserFilter{IncludeInactive: true})
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if total != 2 {
		t.Errorf("staff sees %d users, want 2", total)
	}
}

func TestLeaderboardOrdersByReceived(t *testing.T) {
	s, users := newService(t)
	sender := register(t, s, "sender@corp.test", "Sender")
	a := register(t, s, "a@corp.test", "A")
	b := register(t, s, "b@corp.test", "B")
	c := register(t, s, "c@corp.test", "C")

	for id, received := range map[string]int{a.ID: 2, b.ID: 5, c.ID: 1} {
		for i := 0; i < received; i++ {
			if err := users.AdjustKudosCounters(context.Background(), sender.ID, id, 1); err != nil {
				t.Fatalf("bump %s: %v", id, err)
			}
		}
	}

	top, err := s.Leaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].ID != b.ID || top[1].ID != a.ID {
		t.Fatalf("unexpected leaderboard order: %v", top)
	}
}

func TestTeamLifecycle(t *testing.T) {
	s, _ := newService(t)
	manager := register(t, s, "mgr@corp.test", "Manager")
	bob := register(t, s, "bob@corp.test", "Bob")
	mgr := Actor{ID: manager.ID, Role: RoleManager}

	if _, err := s.CreateTeam(context.Background(), Actor{ID: bob.ID, Role: RoleUser}, "Platform", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("user create team: got %v", err)
	}

	team, err := s.CreateTeam(context.Background(), mgr, "Platform", "keeps the lights on")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	// создатель автоматически становится лидером
	members, err := s.TeamMembers(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != manager.ID || members[0].Role != TeamRoleLeader {
		t.Fatalf("creator not a leader: %v", members)
	}

	if err := s.AddTeamMember(context.Background(), mgr, team.ID, bob.ID, ""); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := s.AddTeamMember(context.Background(), mgr, team.ID, bob.ID, TeamRoleMember); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("duplicate member: got %v", err)
	}
	if err := s.AddTeamMember(context.Background(), mgr, team.ID, "ghost", TeamRoleMember); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ghost member: got %v", err)
	}

	if err := s.RemoveTeamMember(context.Background(), mgr, team.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	members, _ = s.TeamMembers(context.Background(), team.ID)
	if len(members) != 1 {
		t.Fatalf("expected 1 member after removal, got %d", len(members))
	}

	// удаление команды: только админ
	if err := s.DeleteTeam(context.Background(), mgr, team.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("manager delete team: got %v", err)
	}
	admin := register(t, s, "admin@corp.test", "Admin")
	if err := s.DeleteTeam(context.Background(), Actor{ID: admin.ID, Role: RoleAdmin}, team.ID); err != nil {
		t.Fatalf("admin delete team: %v", err)
	}
	if _, err := s.GetTeam(context.Background(), team.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted team still found: %v", err)
	}
}
