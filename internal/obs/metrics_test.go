package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                "/",
		"/metrics":                        "/metrics",
		"/api/kudos":                      "/api/kudos",
		"/api/kudos/01ABCDEF":             "/api/kudos/:id",
		"/api/kudos/01ABCDEF/approve":     "/api/kudos/:id/approve",
		"/api/kudos/01ABCDEF/comments":    "/api/kudos/:id/comments",
		"/api/budgets/me":                 "/api/budgets/me",
		"/api/budgets/user/01ABCDEF":      "/api/budgets/user/:id",
		"/api/vouchers/xyz/redeem":        "/api/vouchers/:id/redeem",
		"/api/notifications/xyz/read":     "/api/notifications/:id/read",
		"/api/users/leaderboard":          "/api/users/leaderboard",
		"/api/kudos?page=2&limit=50":      "/api/kudos",
		"/api/teams/01ABCDEF/members/abc": "/api/teams/:id/members/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
