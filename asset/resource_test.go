package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalResource(t *testing.T) {
	file := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(file, []byte("width: 640\n"), 0644))

	res, err := NewResource(file, nil)
	require.NoError(t, err)
	defer res.Close()

	assert.False(t, res.IsRemote())
	data, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Equal(t, "width: 640\n", string(data))
}

func TestHttpResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/scene.yaml" {
			w.Write([]byte("spheres: []"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	data, err := ReadAll(server.URL + "/scene.yaml")
	require.NoError(t, err)
	assert.Equal(t, "spheres: []", string(data))

	fetchURL := server.URL + "/file-not-found.foo"
	expError := fmt.Sprintf("resource: could not fetch '%s': status %d", fetchURL, 404)
	_, err = NewResource(fetchURL, nil)
	assert.EqualError(t, err, expError)
}

func TestRelativeResources(t *testing.T) {
	serverHits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		switch r.URL.Path {
		case "/foo/config.yaml", "/foo/scene.yaml":
			w.Write([]byte("OK"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	res1, err := NewResource(server.URL+"/foo/config.yaml", nil)
	require.NoError(t, err)
	defer res1.Close()

	res2, err := NewResource("scene.yaml", res1)
	require.NoError(t, err)
	defer res2.Close()

	assert.Equal(t, 2, serverHits)
	assert.True(t, res2.IsRemote())
}

func TestUnsupportedResourceScheme(t *testing.T) {
	_, err := NewResource("gopher://digging.yaml", nil)
	assert.EqualError(t, err, "resource: unsupported scheme 'gopher'")
}

func TestResourceFromStream(t *testing.T) {
	res := NewResourceFromStream("embedded", strings.NewReader("payload"))
	defer res.Close()

	data, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "embedded", res.Path())
}
