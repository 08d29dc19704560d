//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/karthiBP/aegis-incidents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type incidentResult struct {
	Data struct {
		ID             string `json:"id"`
		Title          string `json:"title"`
		Status         string `json:"status"`
		ReportMarkdown string `json:"report_markdown"`
		SharedCount    int    `json:"shared_count"`
		FinalizedAt    string `json:"finalized_at"`
		ActionItems    []struct {
			ID       string `json:"id"`
			Action   string `json:"action"`
			Owner    string `json:"owner"`
			Priority string `json:"priority"`
		} `json:"action_items"`
	} `json:"data"`
}

type errorResult struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func TestIncidents_CreateDraft(t *testing.T) {
	client := signUp(t, "inc-create")

	resp, err := client.POST("/api/v1/incidents", validForm("Database outage"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result incidentResult
	testutil.DecodeJSON(t, resp, &result)
	assert.NotEmpty(t, result.Data.ID)
	assert.Equal(t, "Database outage", result.Data.Title)
	assert.Equal(t, "DRAFT", result.Data.Status)
	assert.Empty(t, result.Data.ReportMarkdown)
	assert.Empty(t, result.Data.ActionItems)
}

func TestIncidents_CreateValidation(t *testing.T) {
	client := signUp(t, "inc-validate")
	raw := client.WithoutValidation()

	cases := []struct {
		name    string
		mutate  func(map[string]interface{})
		message string
	}{
		{
			name:    "missing title",
			mutate:  func(f map[string]interface{}) { f["title"] = "" },
			message: "Title is required",
		},
		{
			name:    "title too long",
			mutate:  func(f map[string]interface{}) { f["title"] = strings.Repeat("x", 201) },
			message: "Title must be less than 200 characters",
		},
		{
			name:    "invalid incident type",
			mutate:  func(f map[string]interface{}) { f["incident_type"] = "EXPLOSION" },
			message: "Invalid incident type",
		},
		{
			name:    "invalid severity",
			mutate:  func(f map[string]interface{}) { f["severity"] = "APOCALYPTIC" },
			message: "Invalid severity",
		},
		{
			name:    "missing start time",
			mutate:  func(f map[string]interface{}) { f["start_time"] = "" },
			message: "Start time is required",
		},
		{
			name:    "empty timeline",
			mutate:  func(f map[string]interface{}) { f["timeline"] = []map[string]interface{}{} },
			message: "At least one timeline entry is required",
		},
		{
			name: "root cause too long",
			mutate: func(f map[string]interface{}) {
				f["root_cause"] = strings.Repeat("x", 2001)
			},
			message: "Root cause must be less than 2000 characters",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm("Validation case")
			tc.mutate(form)

			resp, err := raw.POST("/api/v1/incidents", form)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var result errorResult
			testutil.DecodeJSON(t, resp, &result)
			assert.Equal(t, tc.message, result.Error.Message)
		})
	}
}

func TestIncidents_GenerateConfirmFlow(t *testing.T) {
	client := signUp(t, "inc-generate")
	fillWizard(t, client, "Checkout latency spike")

	// Generate a preview
	resp, err := client.POST("/api/v1/incidents/generate", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview struct {
		Data struct {
			ActionItems    []map[string]interface{} `json:"action_items"`
			ReportMarkdown string                   `json:"report_markdown"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &preview)
	assert.NotEmpty(t, preview.Data.ActionItems)
	assert.Contains(t, preview.Data.ReportMarkdown, "Checkout latency spike")

	// Preview is retrievable and the state reports previewing
	resp, err = client.GET("/api/v1/incidents/preview")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.GET("/api/v1/incidents/generation")
	require.NoError(t, err)
	var status struct {
		Data struct {
			State string `json:"state"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &status)
	assert.Equal(t, "previewing", status.Data.State)

	// Commit
	resp, err = client.POST("/api/v1/incidents/confirm", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var incident incidentResult
	testutil.DecodeJSON(t, resp, &incident)
	assert.Equal(t, "GENERATED", incident.Data.Status)
	assert.Equal(t, "Checkout latency spike", incident.Data.Title)
	assert.NotEmpty(t, incident.Data.ReportMarkdown)
	assert.NotEmpty(t, incident.Data.ActionItems)

	// The wizard was reset, so a second commit fails validation
	resp, err = client.WithoutValidation().POST("/api/v1/incidents/confirm", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	// And reset the wizard
	resp, err = client.GET("/api/v1/wizard")
	require.NoError(t, err)
	var session wizardSessionResult
	testutil.DecodeJSON(t, resp, &session)
	assert.Empty(t, session.Data.Form.Title)
	assert.Empty(t, session.Data.Form.Timeline)
}

func TestIncidents_GenerateRateLimited(t *testing.T) {
	client := signUp(t, "inc-ratelimit")
	fillWizard(t, client, "Repeated generation")

	resp, err := client.POST("/api/v1/incidents/generate", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// A second generate inside the cooldown window is rejected
	resp, err = client.POST("/api/v1/incidents/generate", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var result errorResult
	testutil.DecodeJSON(t, resp, &result)
	assert.Contains(t, result.Error.Message, "Please wait")
	assert.Contains(t, result.Error.Message, "before regenerating")
}

func TestIncidents_GenerateWithEmptySession(t *testing.T) {
	client := signUp(t, "inc-emptygen")

	// Mock generation succeeds even on an unfilled form; validation
	// gates the commit, not the preview.
	resp, err := client.POST("/api/v1/incidents/generate", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.WithoutValidation().POST("/api/v1/incidents/confirm", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result errorResult
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "Title is required", result.Error.Message)
}

func TestIncidents_DiscardPreview(t *testing.T) {
	client := signUp(t, "inc-discard")
	fillWizard(t, client, "Discarded incident")

	resp, err := client.POST("/api/v1/incidents/generate", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.DELETE("/api/v1/incidents/preview")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.GET("/api/v1/incidents/preview")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// The wizard is still valid but there is nothing to commit
	resp, err = client.WithoutValidation().POST("/api/v1/incidents/confirm", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestIncidents_ListAndGet(t *testing.T) {
	client := signUp(t, "inc-list")

	first := createIncident(t, client, "First incident")
	second := createIncident(t, client, "Second incident")

	resp, err := client.GET("/api/v1/incidents")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list.Data, 2)
	// Newest first
	assert.Equal(t, second, list.Data[0].ID)
	assert.Equal(t, first, list.Data[1].ID)

	resp, err = client.GET("/api/v1/incidents/" + first)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var incident incidentResult
	testutil.DecodeJSON(t, resp, &incident)
	assert.Equal(t, "First incident", incident.Data.Title)
}

func TestIncidents_OwnershipScoping(t *testing.T) {
	alice := signUp(t, "inc-owner-alice")
	bob := signUp(t, "inc-owner-bob")

	id := createIncident(t, alice, "Alice incident")

	resp, err := bob.WithoutValidation().GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = bob.GET("/api/v1/incidents")
	require.NoError(t, err)
	var list struct {
		Data []struct{} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	assert.Empty(t, list.Data)
}

func TestIncidents_Update(t *testing.T) {
	client := signUp(t, "inc-update")
	id := createIncident(t, client, "Editable incident")

	resp, err := client.PATCH("/api/v1/incidents/"+id, map[string]string{
		"root_cause": "Revised root cause after review",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	var incident struct {
		Data struct {
			RootCause string `json:"root_cause"`
			Title     string `json:"title"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &incident)
	assert.Equal(t, "Revised root cause after review", incident.Data.RootCause)
	assert.Equal(t, "Editable incident", incident.Data.Title)
}

func TestIncidents_FinalizeLocksEditing(t *testing.T) {
	client := signUp(t, "inc-finalize")
	id := createIncident(t, client, "Finalized incident")

	resp, err := client.POST("/api/v1/incidents/"+id+"/finalize", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var incident incidentResult
	testutil.DecodeJSON(t, resp, &incident)
	assert.Equal(t, "FINAL", incident.Data.Status)
	assert.NotEmpty(t, incident.Data.FinalizedAt)

	// Finalizing again is a no-op success
	resp, err = client.POST("/api/v1/incidents/"+id+"/finalize", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Edits are rejected
	resp, err = client.WithoutValidation().PATCH("/api/v1/incidents/"+id, map[string]string{
		"title": "Too late",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestIncidents_ShareAndPublicAccess(t *testing.T) {
	client := signUp(t, "inc-share")
	id := createIncident(t, client, "Shared incident")

	resp, err := client.POST("/api/v1/incidents/"+id+"/share", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var share struct {
		Data struct {
			ShareURL    string `json:"share_url"`
			SharedCount int    `json:"shared_count"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &share)
	assert.Equal(t, 1, share.Data.SharedCount)
	assert.Contains(t, share.Data.ShareURL, "/public/incident/"+id)

	resp, err = client.POST("/api/v1/incidents/"+id+"/share", nil)
	require.NoError(t, err)
	testutil.DecodeJSON(t, resp, &share)
	assert.Equal(t, 2, share.Data.SharedCount)

	// The public endpoint works without a token
	anonymous := newTestClient(t)
	resp, err = anonymous.GET("/api/v1/public/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var incident incidentResult
	testutil.DecodeJSON(t, resp, &incident)
	assert.Equal(t, "Shared incident", incident.Data.Title)
}

func TestIncidents_DeleteIdempotent(t *testing.T) {
	client := signUp(t, "inc-delete")
	id := createIncident(t, client, "Disposable incident")

	resp, err := client.DELETE("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	// Deleting again still returns 204
	resp, err = client.DELETE("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.WithoutValidation().GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestIncidents_MalformedID(t *testing.T) {
	client := signUp(t, "inc-badid")
	raw := client.WithoutValidation()

	// Ids that cannot parse as UUIDs are answered like unknown ids, not
	// handed to the database driver.
	resp, err := raw.GET("/api/v1/incidents/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = raw.PATCH("/api/v1/incidents/abc", map[string]string{"title": "New title"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = raw.POST("/api/v1/incidents/abc/finalize", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = raw.POST("/api/v1/incidents/abc/share", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// Delete stays idempotent for malformed ids too
	resp, err = raw.DELETE("/api/v1/incidents/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	anonymous := newTestClient(t).WithoutValidation()
	resp, err = anonymous.GET("/api/v1/public/incidents/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestIncidents_ListAllRequiresAdmin(t *testing.T) {
	client := signUp(t, "inc-admin")

	resp, err := client.WithoutValidation().GET("/api/v1/incidents/all")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	admin := signUpAdmin(t, "inc-admin-ok")
	resp, err = admin.GET("/api/v1/incidents/all")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestIncidents_AdminDeletesAnyIncident(t *testing.T) {
	owner := signUp(t, "inc-owner")
	id := createIncident(t, owner, "Someone else's incident")

	// A plain user cannot touch it: the scoped delete is a silent no-op
	stranger := signUp(t, "inc-stranger")
	resp, err := stranger.DELETE("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = owner.GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	admin := signUpAdmin(t, "inc-del-admin")
	resp, err = admin.DELETE("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = owner.WithoutValidation().GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
