package navigation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerverse/backend/models"
)

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestVisible_ByRole(t *testing.T) {
	menu := Default()

	candidate := names(menu.Visible(models.RoleCandidate, false))
	assert.Equal(t, []string{"Home", "Market Insights", "Job Listings", "Resume Builder", "Resume Matcher"}, candidate)
	assert.NotContains(t, candidate, "Requisitions")

	recruiter := names(menu.Visible(models.RoleRecruiter, false))
	assert.Equal(t, []string{"Home", "Market Insights", "Requisitions", "Candidates", "Screening", "Applications"}, recruiter)
	assert.NotContains(t, recruiter, "Settings")

	admin := names(menu.Visible(models.RoleAdmin, false))
	assert.Contains(t, admin, "Settings")
	assert.NotContains(t, admin, "Job Listings")
}

func TestVisible_EmptyWhileLoadingOrNoRole(t *testing.T) {
	menu := Default()
	assert.Empty(t, menu.Visible(models.RoleAdmin, true))
	assert.Empty(t, menu.Visible(models.RoleNone, false))
	assert.NotNil(t, menu.Visible(models.RoleNone, false))
}

func TestAllows(t *testing.T) {
	menu := Default()
	assert.True(t, menu.Allows(models.RoleCandidate, "/jobs"))
	assert.False(t, menu.Allows(models.RoleCandidate, "/requisitions"))
	assert.True(t, menu.Allows(models.RoleAdmin, "/settings"))
	assert.True(t, menu.Allows(models.RoleCandidate, "/profile"))
	assert.False(t, menu.Allows(models.RoleNone, "/profile"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - name: Only\n    path: /only\n    roles: [admin]\n"), 0o644))

	menu, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, names(menu.Visible(models.RoleAdmin, false)))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("items:\n  - name: X\n    path: /x\n    roles: [pirate]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("items:\n  - name: X\n    path: x\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("items:\n  - {name: A, path: /a}\n  - {name: B, path: /a}\n"))
	assert.Error(t, err)
}
