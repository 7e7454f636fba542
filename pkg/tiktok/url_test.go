package tiktok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/glorpus-work/tikgrab/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "canonical video url", url: "https://www.tiktok.com/@user/video/1234567890123456789"},
		{name: "short link", url: "https://vm.tiktok.com/ZMabcdef/"},
		{name: "bare host", url: "https://tiktok.com/@user/video/1234567890123456789"},
		{name: "http allowed", url: "http://www.tiktok.com/@user/video/1234567890123456789"},
		{name: "wrong host", url: "https://example.com/@user/video/1234567890123456789", wantErr: true},
		{name: "host suffix spoof", url: "https://eviltiktok.com/video/1234567890123456789", wantErr: true},
		{name: "no scheme", url: "www.tiktok.com/@user/video/1", wantErr: true},
		{name: "ftp scheme", url: "ftp://www.tiktok.com/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkgerrors.ErrInvalidURL)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindSlideshow, DetectKind("https://www.tiktok.com/@user/photo/1234567890123456789"))
	assert.Equal(t, KindVideo, DetectKind("https://www.tiktok.com/@user/video/1234567890123456789"))
	// "photo" only counts as a path segment
	assert.Equal(t, KindVideo, DetectKind("https://www.tiktok.com/@photo_fan/video/1234567890123456789"))
}

func TestExtractID(t *testing.T) {
	id, err := ExtractID("https://www.tiktok.com/@user/video/7340987654321098765")
	require.NoError(t, err)
	assert.Equal(t, "7340987654321098765", id)

	_, err = ExtractID("https://www.tiktok.com/@user")
	assert.ErrorIs(t, err, pkgerrors.ErrNoPostID)

	// 18 digits is not a post id
	_, err = ExtractID("https://www.tiktok.com/@user/video/734098765432109876")
	assert.ErrorIs(t, err, pkgerrors.ErrNoPostID)
}

func TestParseFollowsRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/short":
			http.Redirect(w, r, server.URL+"/@someone/photo/7340987654321098765", http.StatusFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	p := NewParser(server.Client())

	// Validation is host-based, so drive resolve directly against the test
	// server and assemble the info the way Parse does.
	resolved, err := p.resolve(context.Background(), server.URL+"/short")
	require.NoError(t, err)
	assert.Contains(t, resolved, "/@someone/photo/7340987654321098765")

	id, err := ExtractID(resolved)
	require.NoError(t, err)
	assert.Equal(t, "7340987654321098765", id)
	assert.Equal(t, KindSlideshow, DetectKind(resolved))
}

func TestParseRejectsInvalidURL(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Parse(context.Background(), "https://example.com/video/1234567890123456789")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidURL)
}
