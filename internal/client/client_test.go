package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterAlreadyRegistered(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"username must be unique"}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Register(Credentials{Username: "root", Password: "sekret"})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestLoginStoresToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"token":"abc","username":"root","name":""}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	if err := c.Login(Credentials{Username: "root", Password: "sekret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.Token != "abc" {
		t.Fatalf("expected token to be stored, got %q", c.Token)
	}
	if !c.IsAuthenticated() {
		t.Fatalf("expected authenticated client")
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.Token = "abc"
	if _, err := c.ListPosts(); err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}
