package mediaserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("abc123\n"), 0600))

	s := NewTokenStore([]string{filepath.Join(dir, "missing"), path}, "")
	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestTokenFromPreferencesFallback(t *testing.T) {
	dir := t.TempDir()
	pref := filepath.Join(dir, "Preferences.xml")
	xml := `<?xml version="1.0" encoding="utf-8"?>` +
		`<Preferences MachineIdentifier="m-1" AccountOnlineToken="xyz789" BindAddress="10.8.0.2"/>`
	require.NoError(t, os.WriteFile(pref, []byte(xml), 0600))

	s := NewTokenStore(nil, pref)
	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "xyz789", token)
}

func TestTokenFilePreferredOverPreferences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("filetoken"), 0600))
	pref := filepath.Join(dir, "Preferences.xml")
	require.NoError(t, os.WriteFile(pref, []byte(`<Preferences AccountOnlineToken="other"/>`), 0600))

	s := NewTokenStore([]string{path}, pref)
	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "filetoken", token)
}

func TestTokenAbsent(t *testing.T) {
	s := NewTokenStore([]string{filepath.Join(t.TempDir(), "missing")}, "")
	_, err := s.Token()
	assert.Error(t, err)
}

func TestTokenEmptyFileIsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

	s := NewTokenStore([]string{path}, "")
	_, err := s.Token()
	assert.Error(t, err)
}

func TestTokenPreferencesWithoutAttribute(t *testing.T) {
	dir := t.TempDir()
	pref := filepath.Join(dir, "Preferences.xml")
	require.NoError(t, os.WriteFile(pref, []byte(`<Preferences BindAddress="10.8.0.2"/>`), 0600))

	s := NewTokenStore(nil, pref)
	_, err := s.Token()
	assert.Error(t, err)
}
