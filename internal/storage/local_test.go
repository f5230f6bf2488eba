package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLocalStorage_SaveServeDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), LocalURLPrefix)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	ctx := context.Background()
	key := "avatars/user-1/a.png"

	if err := s.Save(ctx, key, strings.NewReader("image-bytes"), "image/png"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := s.URL(key); got != "/uploads/avatars/user-1/a.png" {
		t.Errorf("URL = %q", got)
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + s.URL(key))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "image-bytes" {
		t.Errorf("GET = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/uploads/avatars/")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("directory listing status = %d, want 404", resp.StatusCode)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), LocalURLPrefix)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"../escape.png", "avatars/../../x", ""} {
		if err := s.Save(context.Background(), key, strings.NewReader("x"), "image/png"); err == nil {
			t.Errorf("Save(%q) accepted", key)
		}
	}
}
