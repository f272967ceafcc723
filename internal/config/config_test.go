package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("TRELLO_API_KEY", "key")
	t.Setenv("TRELLO_API_TOKEN", "token")
	t.Setenv("TRELLO_BOARD_ID", "board")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setCredentials(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "key", cfg.Trello.APIKey)
	assert.Equal(t, "board", cfg.Trello.BoardID)
	assert.Equal(t, uint(10), cfg.Trello.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Trello.RetryDelay)
	assert.Equal(t, "https://api.trello.com/1/", cfg.Trello.BaseURL)
	assert.Equal(t, 31, cfg.Report.MovementWindowDays)
	assert.Equal(t, 1, cfg.Report.MinContentLines)
	assert.Equal(t, "out.txt", cfg.Output.AggregateFile)
	assert.Equal(t, "_summary.txt", cfg.Output.MemberSuffix)
	assert.Empty(t, cfg.Report.ActiveLists)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.Google.DriveEnabled())
}

func TestLoad_File(t *testing.T) {
	setCredentials(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[trello]
retry_delay = "250ms"
max_attempts = 3

[report]
title = "NCCoHo Maintenance Report"
active_lists = ["Inbox", "In-house labor - in progress", "Contracted labor - in progress"]
suppressed_lists = ["Complete"]
timezone = "America/Los_Angeles"

[s3]
bucket = "reports"

[google.drive]
folder_id = "folder"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Trello.RetryDelay)
	assert.Equal(t, uint(3), cfg.Trello.MaxAttempts)
	assert.Equal(t, "NCCoHo Maintenance Report", cfg.Report.Title)
	assert.Len(t, cfg.Report.ActiveLists, 3)
	assert.Equal(t, []string{"Complete"}, cfg.Report.SuppressedLists)
	assert.True(t, cfg.S3.Enabled())
	assert.True(t, cfg.Google.DriveEnabled())

	loc, err := cfg.Report.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", loc.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setCredentials(t)
	t.Setenv("OUTPUT_DIR", "/tmp/reports")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\ndir = \"here\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", cfg.Output.Dir)
}

func TestValidate_MissingCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRELLO_API_KEY", "key")
	t.Setenv("TRELLO_API_TOKEN", "")
	t.Setenv("TRELLO_BOARD_ID", "")

	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "TRELLO_API_TOKEN, TRELLO_BOARD_ID")
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestReportConfig_Location(t *testing.T) {
	loc, err := ReportConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = ReportConfig{Timezone: "Nowhere/Special"}.Location()
	assert.Error(t, err)
}
