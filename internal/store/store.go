package store

import (
	"context"
	"errors"

	"github.com/tsander/bloglist/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username must be unique")
)

// PostUpdate names the fields a post update may replace. Nil fields are
// left untouched.
type PostUpdate struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}

type Store interface {
	AccountStore
	PostStore
	Close() error
}

type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (model.Account, error)
	// ListAccounts returns every account with its posts projected to
	// {id, title, author}.
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

type PostStore interface {
	// CreatePost persists the post and binds it to its owning account in a
	// single transaction. Returns ErrNotFound if the owner does not exist.
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	UpdatePost(ctx context.Context, id string, upd PostUpdate) (model.Post, error)
	DeletePost(ctx context.Context, id string) error
}
