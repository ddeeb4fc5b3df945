package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestContentTypeFor(t *testing.T) {
	cases := []struct {
		fileName string
		want     string
	}{
		{"photo.png", "image/png"},
		{"photo.PNG", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"photo.gif", ""},
		{"photo", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ContentTypeFor(c.fileName); got != c.want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", c.fileName, got, c.want)
		}
	}
}

func TestFileNameFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/images/photo.png", "photo.png"},
		{"https://example.com/photo.jpg?size=large", "photo.jpg"},
		{"https://example.com/", ""},
		{"https://example.com", ""},
	}
	for _, c := range cases {
		if got := FileNameFromURL(c.url); got != c.want {
			t.Errorf("FileNameFromURL(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestFetch_Success(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" || ua == "Go-http-client/1.1" {
			t.Errorf("expected browser-like User-Agent, got %q", ua)
		}
		w.Write(payload)
	}))
	defer srv.Close()

	img, err := NewClient(srv.Client()).Fetch(context.Background(), srv.URL+"/dir/photo.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Status != http.StatusOK {
		t.Errorf("expected status 200, got %d", img.Status)
	}
	if string(img.Bytes) != string(payload) {
		t.Errorf("unexpected body: %v", img.Bytes)
	}
	if img.FileName != "photo.png" {
		t.Errorf("expected fileName photo.png, got %q", img.FileName)
	}
	if img.ContentType != "image/png" {
		t.Errorf("expected contentType image/png, got %q", img.ContentType)
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	img, err := NewClient(srv.Client()).Fetch(context.Background(), srv.URL+"/missing.png")
	if err != nil {
		t.Fatalf("non-200 status must not be an error, got: %v", err)
	}
	if img.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", img.Status)
	}
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	_, err := NewClient(nil).Fetch(context.Background(), srv.URL+"/photo.png")
	if err == nil {
		t.Fatal("expected transport error for closed server")
	}
}
