package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tsander/bloglist/internal/model"
	"github.com/tsander/bloglist/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	name TEXT,
	password_hash TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT,
	url TEXT NOT NULL,
	likes INTEGER NOT NULL DEFAULT 0,
	account_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(account_id) REFERENCES accounts(id)
);
CREATE INDEX IF NOT EXISTS idx_posts_account_id ON posts(account_id);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
`,
	// Future migrations go here:
	// Migration 2: `ALTER TABLE ...`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account *model.Account) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO accounts (id, username, name, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
`, account.ID, account.Username, nullIfEmpty(account.Name), account.PasswordHash, account.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, name, password_hash, created_at
FROM accounts
WHERE id = ?
LIMIT 1
`, id)
	return scanAccount(row)
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, name, password_hash, created_at
FROM accounts
WHERE username = ?
LIMIT 1
`, username)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, username, name, password_hash, created_at
FROM accounts
ORDER BY created_at ASC, username ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []model.Account{}
	index := make(map[string]int)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		account.Posts = []model.PostRef{}
		index[account.ID] = len(accounts)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Posts are projected from the owner reference, the source of truth.
	postRows, err := s.db.QueryContext(ctx, `
SELECT id, title, author, account_id
FROM posts
ORDER BY created_at ASC, rowid ASC
`)
	if err != nil {
		return nil, err
	}
	defer postRows.Close()

	for postRows.Next() {
		var ref model.PostRef
		var author sql.NullString
		var accountID string
		if err := postRows.Scan(&ref.ID, &ref.Title, &author, &accountID); err != nil {
			return nil, err
		}
		if author.Valid {
			ref.Author = author.String
		}
		if i, ok := index[accountID]; ok {
			accounts[i].Posts = append(accounts[i].Posts, ref)
		}
	}
	return accounts, postRows.Err()
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = ?`, post.AccountID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = store.ErrNotFound
		}
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO posts (id, title, author, url, likes, account_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, post.ID, post.Title, nullIfEmpty(post.Author), post.URL, post.Likes, post.AccountID, post.CreatedAt.Unix())
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT p.id, p.title, p.author, p.url, p.likes, p.account_id, p.created_at, a.username, a.name
FROM posts p
LEFT JOIN accounts a ON a.id = p.account_id
WHERE p.id = ?
LIMIT 1
`, id)
	return scanPost(row)
}

func (s *Store) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.title, p.author, p.url, p.likes, p.account_id, p.created_at, a.username, a.name
FROM posts p
LEFT JOIN accounts a ON a.id = p.account_id
ORDER BY p.created_at ASC, p.rowid ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *Store) UpdatePost(ctx context.Context, id string, upd store.PostUpdate) (model.Post, error) {
	sets := []string{}
	args := []any{}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, nullIfEmpty(*upd.Author))
	}
	if upd.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *upd.URL)
	}
	if upd.Likes != nil {
		sets = append(sets, "likes = ?")
		args = append(args, *upd.Likes)
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE posts SET %s WHERE id = ?`, strings.Join(sets, ", ")), args...)
		if err != nil {
			return model.Post{}, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return model.Post{}, err
		}
		if affected == 0 {
			return model.Post{}, store.ErrNotFound
		}
	}
	return s.GetPost(ctx, id)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanAccount(scanner interface{ Scan(dest ...any) error }) (model.Account, error) {
	var a model.Account
	var name sql.NullString
	var created int64
	if err := scanner.Scan(&a.ID, &a.Username, &name, &a.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, store.ErrNotFound
		}
		return model.Account{}, err
	}
	if name.Valid {
		a.Name = name.String
	}
	a.CreatedAt = time.Unix(created, 0)
	return a, nil
}

func scanPost(scanner interface{ Scan(dest ...any) error }) (model.Post, error) {
	var p model.Post
	var author sql.NullString
	var created int64
	var ownerUsername sql.NullString
	var ownerName sql.NullString
	if err := scanner.Scan(&p.ID, &p.Title, &author, &p.URL, &p.Likes, &p.AccountID, &created, &ownerUsername, &ownerName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, store.ErrNotFound
		}
		return model.Post{}, err
	}
	if author.Valid {
		p.Author = author.String
	}
	if ownerUsername.Valid {
		p.Owner = &model.Owner{Username: ownerUsername.String}
		if ownerName.Valid {
			p.Owner.Name = ownerName.String
		}
	}
	p.CreatedAt = time.Unix(created, 0)
	return p, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
