package model

import "time"

// Account is a registered user. PasswordHash never crosses the API boundary.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Posts        []PostRef `json:"posts"`
}

// PostRef is the reduced view of a post embedded in account listings.
type PostRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
}

// Owner is the public projection of the account that created a post.
type Owner struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	AccountID string    `json:"-"`
	Owner     *Owner    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
