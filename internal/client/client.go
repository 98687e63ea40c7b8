// Package client is the in-process counterpart of the backend function: a
// single dispatcher every data operation passes through, with a demo mode
// that fabricates responses instead of touching the network.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"montessori/server/internal/policy"
)

// Session is the resolved identity a Client operates under. It is created at
// login, passed explicitly wherever it is needed, and dropped at logout;
// there is no package-level current session.
type Session struct {
	UserID      string
	Email       string
	Name        string
	Role        policy.Role
	AccessToken string
}

const demoTokenPrefix = "demo-token-"

// IsDemoToken reports whether credential is the sentinel marking simulated
// mode. Sentinel credentials must never reach the real backend.
func IsDemoToken(credential string) bool {
	return strings.HasPrefix(credential, demoTokenPrefix)
}

// Resource is the structured request intent. Call sites that know what they
// are fetching pass a Resource directly; ClassifyPath covers callers holding
// only a raw URL path.
type Resource string

const (
	ResourceStudyMaterials Resource = "study-materials"
	ResourceTeachers       Resource = "teachers"
	ResourceAnnouncements  Resource = "announcements"
	ResourceGallery        Resource = "gallery"
	ResourceChildInfo      Resource = "child-info"
	ResourceUserRole       Resource = "user/role"
	ResourceUnknown        Resource = ""
)

var resourcePaths = map[Resource]string{
	ResourceStudyMaterials: "/study-materials",
	ResourceTeachers:       "/teachers",
	ResourceAnnouncements:  "/announcements",
	ResourceGallery:        "/gallery",
	ResourceChildInfo:      "/parent/child-info",
	ResourceUserRole:       "/user/role",
}

// ClassifyPath maps a URL path to a Resource by substring match. Checks run
// in a fixed order; a path matching none of the keywords is ResourceUnknown.
func ClassifyPath(path string) Resource {
	switch {
	case strings.Contains(path, "study-materials"):
		return ResourceStudyMaterials
	case strings.Contains(path, "teachers"):
		return ResourceTeachers
	case strings.Contains(path, "announcements"):
		return ResourceAnnouncements
	case strings.Contains(path, "gallery"):
		return ResourceGallery
	case strings.Contains(path, "child-info"):
		return ResourceChildInfo
	case strings.Contains(path, "user/role"):
		return ResourceUserRole
	default:
		return ResourceUnknown
	}
}

// Client dispatches every backend call for one session. With a sentinel
// credential it never issues a network request; otherwise it performs the
// real call and surfaces failures to the caller unchanged. There is no retry
// and no dispatcher-owned timeout; the injected http.Client governs both.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
}

func New(baseURL string, httpClient *http.Client, session Session) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    session,
	}
}

func (c *Client) Session() Session {
	return c.session
}

// Fetch performs a GET for a structured resource intent.
func (c *Client) Fetch(ctx context.Context, resource Resource) (map[string]any, error) {
	path, ok := resourcePaths[resource]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", resource)
	}
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Do dispatches an arbitrary call. In simulated mode the path is classified
// by keyword and answered from the fabricator; writes against unknown paths
// are optimistically acknowledged without persistence.
func (c *Client) Do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	if IsDemoToken(c.session.AccessToken) {
		if payload := DemoData(ClassifyPath(path), c.session); payload != nil {
			return payload, nil
		}
		return map[string]any{"success": true, "message": "Demo mode - operation simulated"}, nil
	}
	return c.roundTrip(ctx, method, path, body)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("api call failed: %s", http.StatusText(resp.StatusCode))
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}
