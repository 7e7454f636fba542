package cookies

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/glorpus-work/tikgrab/pkg/errors"
)

func sampleCookies() []Cookie {
	return []Cookie{
		{Name: "sessionid", Value: "abc123", Domain: ".tiktok.com", Path: "/", Expires: 1900000000, Secure: true, HTTPOnly: true},
		{Name: "tt_csrf_token", Value: "xyz", Domain: "www.tiktok.com"},
	}
}

func TestSaveAndLoad(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.Save("main", sampleCookies()))

	loaded, err := m.Load("main")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "sessionid", loaded[0].Name)
	assert.True(t, loaded[0].Secure)
	assert.Equal(t, "www.tiktok.com", loaded[1].Domain)
}

func TestLoadMissingProfile(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Load("nope")
	assert.ErrorIs(t, err, pkgerrors.ErrCookieProfileNotFound)
}

func TestLoadRejectsNonArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"name":"x"}`), 0o644))

	m := NewManager(dir)
	_, err := m.Load("bad")
	assert.ErrorIs(t, err, pkgerrors.ErrCookieFormat)
}

func TestEmptyProfileName(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Load("")
	assert.ErrorIs(t, err, pkgerrors.ErrCookieProfileEmpty)
}

func TestProfileNameMustBeSafe(t *testing.T) {
	m := NewManager(t.TempDir())
	err := m.Save("../escape", sampleCookies())
	assert.ErrorIs(t, err, pkgerrors.ErrCookieFormat)
}

func TestListAndDelete(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Save("work", sampleCookies()))
	require.NoError(t, m.Save("alt", sampleCookies()))

	profiles, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "work"}, profiles)

	require.NoError(t, m.Delete("alt"))
	profiles, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, profiles)

	assert.ErrorIs(t, m.Delete("alt"), pkgerrors.ErrCookieProfileNotFound)
}

func TestListEmptyStore(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "never-created"))
	profiles, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestImport(t *testing.T) {
	src := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"name":"sid","value":"v"}]`), 0o644))

	m := NewManager(t.TempDir())
	require.NoError(t, m.Import("imported", src))

	loaded, err := m.Load("imported")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "sid", loaded[0].Name)
}

func TestImportRejectsBadJSON(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(src, []byte(`not json`), 0o644))

	m := NewManager(t.TempDir())
	assert.ErrorIs(t, m.Import("x", src), pkgerrors.ErrCookieFormat)
}

func TestToHTTPCookies(t *testing.T) {
	hc := ToHTTPCookies(sampleCookies())
	require.Len(t, hc, 2)
	assert.Equal(t, "sessionid", hc[0].Name)
	assert.Equal(t, "abc123", hc[0].Value)
	assert.True(t, hc[0].HttpOnly)
	assert.False(t, hc[0].Expires.IsZero())
	assert.True(t, hc[1].Expires.IsZero())
}

func TestWriteNetscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNetscape(&buf, sampleCookies()))

	out := buf.String()
	assert.Contains(t, out, "# Netscape HTTP Cookie File")
	assert.Contains(t, out, ".tiktok.com\tTRUE\t/\tTRUE\t1900000000\tsessionid\tabc123")
	assert.Contains(t, out, "www.tiktok.com\tFALSE\t/\tFALSE\t0\ttt_csrf_token\txyz")
}
