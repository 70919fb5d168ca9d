package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                     "/",
		"/metrics":                             "/metrics",
		"/v1/accounts/alice":                   "/v1/accounts/:id",
		"/v1/accounts/alice/delegate":          "/v1/accounts/:id/delegate",
		"/v1/plans/01J3ZK":                     "/v1/plans/:id",
		"/v1/resources/plan/01J3ZK":            "/v1/resources/plan/:id",
		"/v1/subscriptions/abc":                "/v1/subscriptions/:id",
		"/v1/subscriptions":                    "/v1/subscriptions",
		"/v1/sys/plans/01J3ZK":                 "/v1/sys/plans/:id",
		"/v1/sys/resources/01J3ZK":             "/v1/sys/resources/:id",
		"/v1/sys/subscriptions/abc":            "/v1/sys/subscriptions/:id",
		"/v1/sys/subscriptions/abc/deactivate": "/v1/sys/subscriptions/:id/deactivate",
		"/v1/sys/roles/abc/permissions":        "/v1/sys/roles/:id/permissions",
		"/v1/auth/login?remember=1":            "/v1/auth/login",
		"/v1/plans/abc/extra/segments":         "/v1/plans/abc/extra/segments",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
