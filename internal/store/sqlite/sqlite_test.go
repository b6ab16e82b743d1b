package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tsander/bloglist/internal/model"
	"github.com/tsander/bloglist/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func createTestAccount(t *testing.T, st *Store, username string) model.Account {
	t.Helper()
	account := model.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         "Test User",
		PasswordHash: "hashed",
		CreatedAt:    time.Now(),
	}
	if err := st.CreateAccount(context.Background(), &account); err != nil {
		t.Fatalf("create account %s: %v", username, err)
	}
	return account
}

func TestAccountLifecycle(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	account := createTestAccount(t, st, "mluukkai")

	got, err := st.GetAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Username != "mluukkai" {
		t.Fatalf("unexpected username: %s", got.Username)
	}

	byName, err := st.GetAccountByUsername(context.Background(), "mluukkai")
	if err != nil {
		t.Fatalf("get account by username: %v", err)
	}
	if byName.ID != account.ID {
		t.Fatalf("expected id %s, got %s", account.ID, byName.ID)
	}
	if byName.PasswordHash != "hashed" {
		t.Fatalf("expected password hash to round-trip")
	}
}

func TestDuplicateUsername(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	createTestAccount(t, st, "root")

	dup := model.Account{
		ID:           uuid.NewString(),
		Username:     "root",
		PasswordHash: "other",
		CreatedAt:    time.Now(),
	}
	err := st.CreateAccount(context.Background(), &dup)
	if !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	accounts, err := st.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account after failed insert, got %d", len(accounts))
	}
}

func TestAccountNotFound(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	if _, err := st.GetAccount(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetAccountByUsername(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostLifecycle(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	account := createTestAccount(t, st, "mluukkai")

	post := model.Post{
		ID:        uuid.NewString(),
		Title:     "React patterns",
		Author:    "Michael Chan",
		URL:       "https://reactpatterns.com/",
		Likes:     7,
		AccountID: account.ID,
		CreatedAt: time.Now(),
	}
	if err := st.CreatePost(context.Background(), &post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	got, err := st.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Title != "React patterns" || got.Likes != 7 {
		t.Fatalf("unexpected post: %+v", got)
	}
	if got.Owner == nil || got.Owner.Username != "mluukkai" {
		t.Fatalf("expected owner projection, got %+v", got.Owner)
	}
	if got.AccountID != account.ID {
		t.Fatalf("expected owner reference to survive")
	}

	if err := st.DeletePost(context.Background(), post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if _, err := st.GetPost(context.Background(), post.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.DeletePost(context.Background(), post.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreatePostUnknownOwner(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	post := model.Post{
		ID:        uuid.NewString(),
		Title:     "Orphan",
		URL:       "https://example.com",
		AccountID: "no-such-account",
		CreatedAt: time.Now(),
	}
	if err := st.CreatePost(context.Background(), &post); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	posts, err := st.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected no posts after rolled back create, got %d", len(posts))
	}
}

func TestUpdatePostPartial(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	account := createTestAccount(t, st, "mluukkai")
	post := model.Post{
		ID:        uuid.NewString(),
		Title:     "Type wars",
		Author:    "Robert C. Martin",
		URL:       "http://blog.cleancoder.com/uncle-bob/2016/05/01/TypeWars.html",
		Likes:     2,
		AccountID: account.ID,
		CreatedAt: time.Now(),
	}
	if err := st.CreatePost(context.Background(), &post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	likes := 3
	updated, err := st.UpdatePost(context.Background(), post.ID, store.PostUpdate{Likes: &likes})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if updated.Likes != 3 {
		t.Fatalf("expected 3 likes, got %d", updated.Likes)
	}
	if updated.Title != "Type wars" || updated.Author != "Robert C. Martin" {
		t.Fatalf("expected untouched fields to survive: %+v", updated)
	}

	title := "Type wars II"
	updated, err = st.UpdatePost(context.Background(), post.ID, store.PostUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if updated.Title != "Type wars II" || updated.Likes != 3 {
		t.Fatalf("unexpected post after title update: %+v", updated)
	}

	// An empty update is a read.
	updated, err = st.UpdatePost(context.Background(), post.ID, store.PostUpdate{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if updated.Title != "Type wars II" {
		t.Fatalf("unexpected post after empty update: %+v", updated)
	}

	if _, err := st.UpdatePost(context.Background(), "missing", store.PostUpdate{Likes: &likes}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostsKeepsInsertionOrder(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	account := createTestAccount(t, st, "mluukkai")

	// All posts share one created_at second; order must still hold.
	created := time.Now()
	titles := []string{"First", "Second", "Third", "Fourth", "Fifth"}
	for _, title := range titles {
		post := model.Post{
			ID:        uuid.NewString(),
			Title:     title,
			URL:       "https://example.com",
			AccountID: account.ID,
			CreatedAt: created,
		}
		if err := st.CreatePost(context.Background(), &post); err != nil {
			t.Fatalf("create post %s: %v", title, err)
		}
	}

	posts, err := st.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != len(titles) {
		t.Fatalf("expected %d posts, got %d", len(titles), len(posts))
	}
	for i, title := range titles {
		if posts[i].Title != title {
			t.Fatalf("position %d: expected %s, got %s", i, title, posts[i].Title)
		}
	}

	accounts, err := st.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 || len(accounts[0].Posts) != len(titles) {
		t.Fatalf("expected one account with %d posts, got %+v", len(titles), accounts)
	}
	for i, title := range titles {
		if accounts[0].Posts[i].Title != title {
			t.Fatalf("projection position %d: expected %s, got %s", i, title, accounts[0].Posts[i].Title)
		}
	}
}

func TestListAccountsProjectsPosts(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	first := createTestAccount(t, st, "root")
	second := createTestAccount(t, st, "mluukkai")

	for i, owner := range []model.Account{first, first, second} {
		post := model.Post{
			ID:        uuid.NewString(),
			Title:     fmt.Sprintf("Post %d", i+1),
			URL:       "https://example.com",
			AccountID: owner.ID,
			CreatedAt: time.Now(),
		}
		if err := st.CreatePost(context.Background(), &post); err != nil {
			t.Fatalf("create post %d: %v", i+1, err)
		}
	}

	accounts, err := st.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	counts := map[string]int{}
	for _, a := range accounts {
		counts[a.Username] = len(a.Posts)
		for _, ref := range a.Posts {
			if ref.ID == "" || ref.Title == "" {
				t.Fatalf("expected projected post ref, got %+v", ref)
			}
		}
	}
	if counts["root"] != 2 || counts["mluukkai"] != 1 {
		t.Fatalf("unexpected projection counts: %v", counts)
	}
}
