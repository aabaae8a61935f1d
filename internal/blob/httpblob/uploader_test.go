package httpblob

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_PostsMultipartAndReturnsURI(t *testing.T) {
	var gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		gotName = header.Filename
		buf := make([]byte, header.Size)
		_, _ = file.Read(buf)
		gotBody = string(buf)

		_ = json.NewEncoder(w).Encode(map[string]string{"uri": "walrus://blob/abc"})
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, srv.Client())
	uri, err := u.Upload(context.Background(), "proof.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "walrus://blob/abc", uri)
	assert.Equal(t, "proof.png", gotName)
	assert.Equal(t, "png-bytes", gotBody)
}

func TestUpload_AcceptsURLField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com/blob/def"})
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, srv.Client())
	uri, err := u.Upload(context.Background(), "doc.pdf", strings.NewReader("x"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blob/def", uri)
}

func TestUpload_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, srv.Client())
	_, err := u.Upload(context.Background(), "x", strings.NewReader("x"), "text/plain")
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestUpload_MissingURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, srv.Client())
	_, err := u.Upload(context.Background(), "x", strings.NewReader("x"), "text/plain")
	assert.ErrorContains(t, err, "named no uri")
}
