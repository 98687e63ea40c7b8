package client

import (
	"context"
	"encoding/json"
	"net/http"

	"montessori/server/internal/policy"
)

// demoSessions maps the exact sentinel credentials issued by the demo login
// screen to their roles. Only full credentials are mapped; an arbitrary
// "demo-token-*" string is not trusted to name a role.
var demoSessions = map[string]policy.Role{
	demoTokenPrefix + "demo-admin":   policy.RoleAdmin,
	demoTokenPrefix + "demo-teacher": policy.RoleLeadTeacher,
	demoTokenPrefix + "demo-parent":  policy.RoleParent,
}

// ResolveRole exchanges a credential for a role. Sentinel credentials are
// answered locally with no network access; anything the local mapping does
// not cover, and every failure on the real path (network, status, parse),
// resolves to the least-privilege role rather than an error.
func ResolveRole(ctx context.Context, baseURL string, httpClient *http.Client, credential string) policy.Role {
	if IsDemoToken(credential) {
		if role, ok := demoSessions[credential]; ok {
			return role
		}
		return policy.RoleParent
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/user/role", nil)
	if err != nil {
		return policy.RoleParent
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := httpClient.Do(req)
	if err != nil {
		return policy.RoleParent
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return policy.RoleParent
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return policy.RoleParent
	}
	return policy.ParseRole(payload.Role)
}
