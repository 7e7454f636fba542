// Package cookies stores named cookie profiles as JSON files and converts
// them for use with HTTP clients.
package cookies

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/glorpus-work/tikgrab/pkg/errors"
	"github.com/glorpus-work/tikgrab/pkg/fsutil"
)

// Cookie is one browser cookie as exported by browser extensions: a JSON
// object with the standard cookie attributes.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expirationDate,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
}

// Manager persists cookie profiles under a directory, one JSON file per
// profile name.
type Manager struct {
	dir string
}

// NewManager creates a Manager storing profiles in dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Load reads the named profile. The file must hold a JSON array of cookie
// objects.
func (m *Manager) Load(profile string) ([]Cookie, error) {
	path, err := m.profilePath(profile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrCookieProfileNotFound, "%s", profile)
		}
		return nil, pkgerrors.Wrapf(err, "failed to read cookie profile %s", profile)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", profile, err, pkgerrors.ErrCookieFormat)
	}
	return cookies, nil
}

// Save writes cookies as the named profile, creating the profile directory if
// needed. An existing profile is replaced.
func (m *Manager) Save(profile string, cookies []Cookie) error {
	path, err := m.profilePath(profile)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(m.dir); err != nil {
		return pkgerrors.Wrap(err, "failed to create cookie dir")
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode cookie profile %s", profile)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, fsutil.FileModeSecure); err != nil {
		return pkgerrors.Wrapf(err, "failed to write cookie profile %s", profile)
	}
	if err := fsutil.Move(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return pkgerrors.Wrapf(err, "failed to write cookie profile %s", profile)
	}
	return nil
}

// Import copies the JSON cookie export at srcPath into the store under the
// given profile name, validating the format on the way.
func (m *Manager) Import(profile, srcPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read %s", srcPath)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("%s: %v: %w", srcPath, err, pkgerrors.ErrCookieFormat)
	}
	return m.Save(profile, cookies)
}

// List returns the names of all stored profiles, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "failed to list cookie profiles")
	}

	var profiles []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		profiles = append(profiles, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(profiles)
	return profiles, nil
}

// Delete removes the named profile.
func (m *Manager) Delete(profile string) error {
	path, err := m.profilePath(profile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return pkgerrors.Wrapf(pkgerrors.ErrCookieProfileNotFound, "%s", profile)
		}
		return pkgerrors.Wrapf(err, "failed to delete cookie profile %s", profile)
	}
	return nil
}

func (m *Manager) profilePath(profile string) (string, error) {
	if profile == "" {
		return "", pkgerrors.ErrCookieProfileEmpty
	}
	// Profile names become file names; keep them to one safe path segment.
	safe := fsutil.SanitizeFilename(profile)
	if safe != profile {
		return "", pkgerrors.Wrapf(pkgerrors.ErrCookieFormat, "invalid profile name %q", profile)
	}
	return filepath.Join(m.dir, profile+".json"), nil
}

// ToHTTPCookies converts stored cookies to net/http cookies.
func ToHTTPCookies(cookies []Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}

// WriteNetscape writes cookies in the Netscape cookies.txt format understood
// by most external download tools.
func WriteNetscape(w io.Writer, cookies []Cookie) error {
	if _, err := fmt.Fprintln(w, "# Netscape HTTP Cookie File"); err != nil {
		return pkgerrors.Wrap(err, "failed to write cookie file")
	}
	for _, c := range cookies {
		domain := c.Domain
		includeSub := "FALSE"
		if strings.HasPrefix(domain, ".") {
			includeSub = "TRUE"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		expires := int64(c.Expires)
		if expires < 0 {
			expires = 0
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, includeSub, path, secure, expires, c.Name, c.Value); err != nil {
			return pkgerrors.Wrap(err, "failed to write cookie file")
		}
	}
	return nil
}
