//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/karthiBP/aegis-incidents/internal/testutil"
	"github.com/stretchr/testify/require"
)

// signUp registers and logs in a fresh user, returning the client.
// Each test gets its own user so per-user wizard state and generation
// cooldowns cannot leak between tests.
func signUp(t *testing.T, prefix string) *testutil.Client {
	t.Helper()
	client := newTestClient(t)
	client.RegisterAndLogin(t, testutil.RandomEmail(prefix), "password123")
	return client
}

// signUpAdmin registers a fresh user, promotes it to admin directly in the
// database, and logs in again so the token carries the admin role claim.
func signUpAdmin(t *testing.T, prefix string) *testutil.Client {
	t.Helper()

	email := testutil.RandomEmail(prefix)
	client := newTestClient(t)
	client.RegisterAndLogin(t, email, "password123")

	_, err := testDB.Exec(context.Background(), `UPDATE users SET role = 'admin' WHERE email = $1`, email)
	require.NoError(t, err)

	client.LoginAs(t, email, "password123")
	return client
}

// validForm returns a wizard form payload that passes validation.
func validForm(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":         title,
		"incident_type": "OUTAGE",
		"severity":      "HIGH",
		"start_time":    "2026-08-28T10:00",
		"end_time":      "2026-08-28T11:30",
		"timeline": []map[string]interface{}{
			{"id": "e1", "timestamp": "10:00", "description": "Alerts fired for elevated error rates"},
			{"id": "e2", "timestamp": "10:15", "description": "Rolled back the suspect deploy"},
		},
		"root_cause": "Connection pool exhausted under load",
		"impact":     "Checkout unavailable for 90 minutes",
		"resolution": "Increased pool size and added alerting",
	}
}

// fillWizard drives the user's wizard session to a generatable state.
func fillWizard(t *testing.T, client *testutil.Client, title string) {
	t.Helper()

	resp, err := client.PATCH("/api/v1/wizard", map[string]interface{}{
		"title":         title,
		"incident_type": "OUTAGE",
		"severity":      "HIGH",
		"start_time":    "2026-08-28T10:00",
		"root_cause":    "Connection pool exhausted under load",
		"impact":        "Checkout unavailable for 90 minutes",
		"resolution":    "Increased pool size and added alerting",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	for i, desc := range []string{
		"Alerts fired for elevated error rates",
		"Rolled back the suspect deploy",
	} {
		resp, err := client.POST("/api/v1/wizard/timeline", map[string]string{
			"timestamp":   fmt.Sprintf("10:%02d", i*15),
			"description": desc,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

// createIncident creates a committed draft incident and returns its id.
func createIncident(t *testing.T, client *testutil.Client, title string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents", validForm(title))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.ID)
	return result.Data.ID
}
