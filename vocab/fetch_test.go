/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package vocab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const remoteYAML = `version: 4
accounts:
  前払費用: {category: asset, code: "118", normalSide: debit}
`

func TestHTTPFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.UserAgent(), "qscan/") {
			t.Errorf("unexpected user agent %q", r.UserAgent())
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(remoteYAML))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(DefaultMaxSize)
	res, err := f.Fetch(context.Background(), srv.URL+"/accounts.yaml")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(res.Data) != remoteYAML {
		t.Errorf("Fetch() = %q, want %q", string(res.Data), remoteYAML)
	}
	if res.ContentType != "application/yaml" {
		t.Errorf("unexpected content type %q", res.ContentType)
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("too late"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(DefaultMaxSize)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL+"/accounts.yaml")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timeout") && !strings.Contains(err.Error(), "context deadline exceeded") {
		t.Errorf("expected timeout error, got: %v", err)
	}
}

func TestHTTPFetcher_MaxSizeExceeded(t *testing.T) {
	body := strings.Repeat("x", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(50)
	_, err := f.Fetch(context.Background(), srv.URL+"/accounts.yaml")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected max size error, got: %v", err)
	}
}

func TestHTTPFetcher_Non200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(DefaultMaxSize)
	_, err := f.Fetch(context.Background(), srv.URL+"/accounts.yaml")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got: %v", err)
	}
}

type stubFetcher map[string]Resource

func (s stubFetcher) Fetch(_ context.Context, url string) (*Resource, error) {
	res, ok := s[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return &res, nil
}

func TestLoadURL(t *testing.T) {
	f := stubFetcher{
		"https://example.com/vocab/accounts.yaml?rev=2": {Data: []byte(remoteYAML)},
		"https://example.com/vocab/accounts.txt":        {Data: []byte(remoteYAML), ContentType: "text/plain"},
		"https://example.com/vocab/latest":              {Data: []byte(remoteYAML), ContentType: "application/yaml; charset=utf-8"},
	}

	v, err := LoadURL(context.Background(), f, "https://example.com/vocab/accounts.yaml?rev=2")
	if err != nil {
		t.Fatalf("LoadURL() error = %v", err)
	}
	if v.Version != 4 {
		t.Errorf("expected version 4, got %d", v.Version)
	}
	if _, _, ok := v.Lookup("前払費用"); !ok {
		t.Error("expected 前払費用 to be defined")
	}

	_, err = LoadURL(context.Background(), f, "https://example.com/vocab/accounts.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	v, err = LoadURL(context.Background(), f, "https://example.com/vocab/latest")
	if err != nil {
		t.Fatalf("content type should select YAML: %v", err)
	}
	if v.Version != 4 {
		t.Errorf("expected version 4, got %d", v.Version)
	}
}

func TestIsURL(t *testing.T) {
	for in, want := range map[string]bool{
		"https://example.com/a.yaml": true,
		"http://localhost/a.json":    true,
		"./vocab/accounts.yaml":      false,
		"/abs/accounts.yaml":         false,
	} {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
