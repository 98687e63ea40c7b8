package client

import (
	"context"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"montessori/server/internal/policy"
)

// spyTransport records every request the dispatcher issues and answers with
// a fixed status and body.
type spyTransport struct {
	calls  int
	status int
	body   string
}

func (s *spyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	return &http.Response{
		StatusCode: s.status,
		Status:     http.StatusText(s.status),
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

func demoSession(role policy.Role) Session {
	return Session{
		UserID:      "demo-admin",
		Email:       "admin@montessori.edu",
		Name:        "School Administrator",
		Role:        role,
		AccessToken: "demo-token-demo-admin",
	}
}

func TestDemoModeNeverTouchesNetwork(t *testing.T) {
	spy := &spyTransport{status: http.StatusOK, body: `{}`}
	c := New("http://backend.local", &http.Client{Transport: spy}, demoSession(policy.RoleAdmin))

	paths := []string{
		"/study-materials",
		"/teachers",
		"/announcements",
		"/gallery",
		"/parent/child-info",
		"/user/role",
		"/time-tracking/clock-in",
	}
	for _, path := range paths {
		if _, err := c.Do(context.Background(), http.MethodGet, path, nil); err != nil {
			t.Fatalf("demo call %s failed: %v", path, err)
		}
	}
	if spy.calls != 0 {
		t.Fatalf("demo mode issued %d network calls", spy.calls)
	}
}

func TestDemoPayloadCollectionKeys(t *testing.T) {
	c := New("http://backend.local", nil, demoSession(policy.RoleAdmin))
	cases := map[string]string{
		"/study-materials": "materials",
		"/teachers":        "teachers",
		"/announcements":   "announcements",
		"/gallery":         "photos",
		"/user/role":       "role",
	}
	for path, key := range cases {
		payload, err := c.Do(context.Background(), http.MethodGet, path, nil)
		if err != nil {
			t.Fatalf("demo call %s failed: %v", path, err)
		}
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected payload for %s to carry key %q, got %v", path, key, payload)
		}
	}
}

func TestDemoModeUnknownPathAcknowledges(t *testing.T) {
	c := New("http://backend.local", nil, demoSession(policy.RoleLeadTeacher))
	payload, err := c.Do(context.Background(), http.MethodPost, "/time-tracking/clock-in", nil)
	if err != nil {
		t.Fatalf("demo call failed: %v", err)
	}
	if payload["success"] != true {
		t.Fatalf("expected optimistic acknowledgement, got %v", payload)
	}
}

func TestRealModeErrorCarriesStatusText(t *testing.T) {
	spy := &spyTransport{status: http.StatusInternalServerError, body: `{"error":"server_error"}`}
	session := Session{UserID: "user-1", AccessToken: "real-token"}
	c := New("http://backend.local", &http.Client{Transport: spy}, session)

	_, err := c.Do(context.Background(), http.MethodGet, "/gallery", nil)
	if err == nil {
		t.Fatalf("expected non-2xx status to error")
	}
	if !strings.Contains(err.Error(), http.StatusText(http.StatusInternalServerError)) {
		t.Fatalf("expected error to carry status text, got %q", err)
	}
	if spy.calls != 1 {
		t.Fatalf("expected exactly one network call, got %d", spy.calls)
	}
}

func TestRealModeSetsBearerHeader(t *testing.T) {
	var seen *http.Request
	spy := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"photos":[]}`)),
		}, nil
	})
	session := Session{UserID: "user-1", AccessToken: "real-token"}
	c := New("http://backend.local", &http.Client{Transport: spy}, session)

	if _, err := c.Fetch(context.Background(), ResourceGallery); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if seen == nil {
		t.Fatalf("expected a network call")
	}
	if got := seen.Header.Get("Authorization"); got != "Bearer real-token" {
		t.Fatalf("unexpected auth header %q", got)
	}
	if seen.URL.String() != "http://backend.local/gallery" {
		t.Fatalf("unexpected URL %s", seen.URL)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestClassifyPath(t *testing.T) {
	cases := map[string]Resource{
		"/study-materials":              ResourceStudyMaterials,
		"/functions/v1/server/teachers": ResourceTeachers,
		"/teachers/42":                  ResourceTeachers,
		"/announcements":                ResourceAnnouncements,
		"/gallery/upload":               ResourceGallery,
		"/parent/child-info":            ResourceChildInfo,
		"/user/role":                    ResourceUserRole,
		"/time-tracking/clock-out":      ResourceUnknown,
		"/health":                       ResourceUnknown,
	}
	for path, expect := range cases {
		if got := ClassifyPath(path); got != expect {
			t.Fatalf("ClassifyPath(%q) = %q, want %q", path, got, expect)
		}
	}
}

func TestDemoDataIdempotent(t *testing.T) {
	session := demoSession(policy.RoleAdmin)
	for _, resource := range []Resource{
		ResourceStudyMaterials, ResourceTeachers, ResourceAnnouncements,
		ResourceGallery, ResourceChildInfo, ResourceUserRole,
	} {
		first := DemoData(resource, session)
		second := DemoData(resource, session)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("DemoData(%q) not idempotent", resource)
		}
	}
	if DemoData(ResourceUnknown, session) != nil {
		t.Fatalf("expected nil payload for unknown resource")
	}
}

func TestResolveRoleDemoSentinels(t *testing.T) {
	spy := &spyTransport{status: http.StatusOK, body: `{"role":"admin"}`}
	httpClient := &http.Client{Transport: spy}

	cases := map[string]policy.Role{
		"demo-token-demo-admin":   policy.RoleAdmin,
		"demo-token-demo-teacher": policy.RoleLeadTeacher,
		"demo-token-demo-parent":  policy.RoleParent,
		// Unmapped sentinel falls back to least privilege, never to the
		// role named in the suffix.
		"demo-token-admin": policy.RoleParent,
		"demo-token-x":     policy.RoleParent,
	}
	for credential, expect := range cases {
		got := ResolveRole(context.Background(), "http://backend.local", httpClient, credential)
		if got != expect {
			t.Fatalf("ResolveRole(%q) = %s, want %s", credential, got, expect)
		}
	}
	if spy.calls != 0 {
		t.Fatalf("sentinel resolution issued %d network calls", spy.calls)
	}
}

func TestResolveRoleRealMode(t *testing.T) {
	ok := &spyTransport{status: http.StatusOK, body: `{"role":"lead_teacher"}`}
	got := ResolveRole(context.Background(), "http://backend.local", &http.Client{Transport: ok}, "real-token")
	if got != policy.RoleLeadTeacher {
		t.Fatalf("expected lead_teacher, got %s", got)
	}
	if ok.calls != 1 {
		t.Fatalf("expected one role lookup, got %d", ok.calls)
	}

	failures := []*spyTransport{
		{status: http.StatusUnauthorized, body: `{"error":"invalid_token"}`},
		{status: http.StatusInternalServerError, body: `{"error":"server_error"}`},
		{status: http.StatusOK, body: `not json`},
		{status: http.StatusOK, body: `{"role":""}`},
	}
	for _, spy := range failures {
		got := ResolveRole(context.Background(), "http://backend.local", &http.Client{Transport: spy}, "real-token")
		if got != policy.RoleParent {
			t.Fatalf("expected parent fallback for status %d body %q, got %s", spy.status, spy.body, got)
		}
	}
}
