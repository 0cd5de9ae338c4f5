package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, HoneypotCSS, cfg.Comments.Honeypot.Mode)
	assert.Equal(t, StrictnessDiscard, cfg.Comments.Akismet.Strictness)
	assert.Zero(t, cfg.Comments.Throttle)
	assert.Zero(t, cfg.Comments.RequiredReadingTime)
	assert.Empty(t, cfg.Comments.Blacklist)
	assert.Contains(t, cfg.Comments.Markdown, "blockquote")
	assert.Equal(t, "all", cfg.Comments.Capabilities.Create)
	assert.Equal(t, "admin", cfg.Comments.Capabilities.Delete)
	assert.NoError(t, cfg.validate())
}

func TestHoneypotField(t *testing.T) {
	c := CommentsConfig{Honeypot: HoneypotConfig{Mode: HoneypotCSS}}
	assert.Equal(t, "url", c.HoneypotField())

	c.Honeypot.Mode = HoneypotJS
	assert.Equal(t, "legit", c.HoneypotField())

	c.Honeypot.Field = "website_field"
	assert.Equal(t, "website_field", c.HoneypotField())
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows("all", ""))
	assert.True(t, Allows("all", "member"))
	assert.True(t, Allows("admin", "admin"))
	assert.False(t, Allows("admin", "member"))
	assert.False(t, Allows("admin", ""))
	assert.True(t, Allows("admin|editor", "editor"))
	assert.False(t, Allows("", "admin"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	// No config file in the search path: defaults apply.
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Comments.PerPage)
}

func TestLoad_FileAndValidation(t *testing.T) {
	cfg, err := loadFromDir(t, `
comments:
  throttle: 30
  honeypot:
    mode: js
  akismet:
    strictness: keep
`)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Comments.Throttle)
	assert.Equal(t, HoneypotJS, cfg.Comments.Honeypot.Mode)
	assert.Equal(t, StrictnessKeep, cfg.Comments.Akismet.Strictness)

	_, err = loadFromDir(t, "comments:\n  honeypot:\n    mode: bogus\n")
	assert.Error(t, err)

	_, err = loadFromDir(t, "comments:\n  throttle: -5\n")
	assert.Error(t, err)
}

// loadFromDir writes content as a config file in a temp dir and loads it.
func loadFromDir(t *testing.T, content string) (Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commentary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return Load(path)
}
