package httpapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tsander/bloglist/internal/config"
	"github.com/tsander/bloglist/internal/model"
	"github.com/tsander/bloglist/internal/password"
	"github.com/tsander/bloglist/internal/rate"
	"github.com/tsander/bloglist/internal/store"
	"github.com/tsander/bloglist/internal/token"

	_ "github.com/tsander/bloglist/docs" // swagger docs

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

type Server struct {
	store   store.Store
	tokens  *token.Service
	limiter rate.Limiter
	cfg     config.Config
}

func NewServer(store store.Store, tokens *token.Service, limiter rate.Limiter, cfg config.Config) *Server {
	return &Server{store: store, tokens: tokens, limiter: limiter, cfg: cfg}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/swagger/") {
		httpSwagger.WrapHandler.ServeHTTP(w, r)
		return
	}

	segments := splitPath(r.URL.Path)

	switch {
	case len(segments) == 1 && segments[0] == "accounts":
		if r.Method == http.MethodGet {
			s.handleListAccounts(w, r)
			return
		}
		if r.Method == http.MethodPost {
			s.handleRegister(w, r)
			return
		}
		methodNotAllowed(w)
		return
	case len(segments) == 1 && segments[0] == "login":
		if r.Method == http.MethodPost {
			s.handleLogin(w, r)
			return
		}
		methodNotAllowed(w)
		return
	case len(segments) == 1 && segments[0] == "posts":
		if r.Method == http.MethodGet {
			s.handleListPosts(w, r)
			return
		}
		if r.Method == http.MethodPost {
			s.handleCreatePost(w, r)
			return
		}
		methodNotAllowed(w)
		return
	case len(segments) == 2 && segments[0] == "posts":
		switch r.Method {
		case http.MethodGet:
			s.handleGetPost(w, r, segments[1])
		case http.MethodPut:
			s.handleUpdatePost(w, r, segments[1], allowAnyone)
		case http.MethodDelete:
			s.handleDeletePost(w, r, segments[1], ownerOnly)
		default:
			methodNotAllowed(w)
		}
		return
	case len(segments) == 1 && segments[0] == "openapi.json":
		if r.Method == http.MethodGet {
			s.serveOpenAPIJSON(w, r)
			return
		}
		methodNotAllowed(w)
		return
	case len(segments) == 1 && segments[0] == "healthz":
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	notFound(w)
}

// authPolicy decides whether the caller may mutate the given post.
// identity is nil when the request carried no usable token. Keeping the
// predicate explicit on every mutating operation makes the current
// update/delete asymmetry visible and swappable in one place.
type authPolicy func(identity *token.Identity, post model.Post) error

var errNotOwner = errors.New("post not owned by current user")

func allowAnyone(*token.Identity, model.Post) error { return nil }

func ownerOnly(identity *token.Identity, post model.Post) error {
	if identity == nil || post.AccountID != identity.AccountID {
		return errNotOwner
	}
	return nil
}

// handleListAccounts godoc
//
//	@Summary		List accounts
//	@Description	Get all accounts, each with its posts projected to id, title and author
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{array}	model.Account
//	@Router			/accounts [get]
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// handleRegister godoc
//
//	@Summary		Register an account
//	@Description	Create an account with a unique username. Username and password must be at least 4 characters.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			account	body		object{username=string,name=string,password=string}	true	"Registration data"
//	@Success		201		{object}	model.Account
//	@Failure		400		{object}	map[string]string	"Validation error or duplicate username"
//	@Router			/accounts [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "register", s.cfg.RateLimits.RegisterPerMinute) {
		return
	}
	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, errors.New("username and password are required"))
		return
	}
	if utf8.RuneCountInString(req.Username) < 4 || utf8.RuneCountInString(req.Password) < 4 {
		writeError(w, http.StatusBadRequest, errors.New("usernames and passwords must be at least 4 characters"))
		return
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		internalError(w, err)
		return
	}
	account := model.Account{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		Posts:        []model.PostRef{},
	}
	if err := s.store.CreateAccount(r.Context(), &account); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// handleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchange username and password for a signed bearer token
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		object{username=string,password=string}	true	"Credentials"
//	@Success		200			{object}	map[string]string	"Token with username and name"
//	@Failure		401			{object}	map[string]string	"Invalid username or password"
//	@Router			/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "login", s.cfg.RateLimits.LoginPerMinute) {
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	account, err := s.store.GetAccountByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		internalError(w, err)
		return
	}
	if err != nil || !password.Verify(req.Password, account.PasswordHash) {
		writeError(w, http.StatusUnauthorized, errors.New("invalid username or password"))
		return
	}

	signed, err := s.tokens.Issue(account.ID, account.Username)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":    signed,
		"username": account.Username,
		"name":     account.Name,
	})
}

// handleListPosts godoc
//
//	@Summary		List posts
//	@Description	Get all posts, each with the owner projected to username and name
//	@Tags			Posts
//	@Produce		json
//	@Success		200	{array}	model.Post
//	@Router			/posts [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleGetPost godoc
//
//	@Summary		Get a post
//	@Tags			Posts
//	@Produce		json
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	model.Post
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/posts/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request, id string) {
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleCreatePost godoc
//
//	@Summary		Create a post
//	@Description	Create a post owned by the authenticated account. Title and url are required; likes defaults to 0.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post	body		object{title=string,author=string,url=string,likes=int}	true	"Post data"
//	@Success		201		{object}	model.Post
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Failure		401		{object}	map[string]string	"Missing or invalid token"
//	@Router			/posts [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "post", s.cfg.RateLimits.PostPerMinute) {
		return
	}
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		URL    string `json:"url"`
		Likes  *int   `json:"likes"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	if req.Title == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("title and url are required"))
		return
	}
	likes := 0
	if req.Likes != nil {
		if *req.Likes < 0 {
			writeError(w, http.StatusBadRequest, errors.New("likes must not be negative"))
			return
		}
		likes = *req.Likes
	}

	post := model.Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Author:    strings.TrimSpace(req.Author),
		URL:       req.URL,
		Likes:     likes,
		AccountID: identity.AccountID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreatePost(r.Context(), &post); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, errors.New("account required"))
			return
		}
		internalError(w, err)
		return
	}

	created, err := s.store.GetPost(r.Context(), post.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdatePost godoc
//
//	@Summary		Update a post
//	@Description	Replace the named fields of a post. Fields left out of the body are untouched.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Post ID"
//	@Param			post	body		object{title=string,author=string,url=string,likes=int}	true	"Fields to replace"
//	@Success		200		{object}	model.Post
//	@Failure		404		{object}	map[string]string	"Post not found"
//	@Router			/posts/{id} [put]
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, id string, policy authPolicy) {
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		internalError(w, err)
		return
	}
	if err := policy(s.optionalIdentity(r), post); err != nil {
		writeError(w, http.StatusForbidden, err)
		return
	}

	var req struct {
		Title  *string `json:"title"`
		Author *string `json:"author"`
		URL    *string `json:"url"`
		Likes  *int    `json:"likes"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, errors.New("title must not be empty"))
		return
	}
	if req.URL != nil && strings.TrimSpace(*req.URL) == "" {
		writeError(w, http.StatusBadRequest, errors.New("url must not be empty"))
		return
	}
	if req.Likes != nil && *req.Likes < 0 {
		writeError(w, http.StatusBadRequest, errors.New("likes must not be negative"))
		return
	}

	updated, err := s.store.UpdatePost(r.Context(), id, store.PostUpdate{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeletePost godoc
//
//	@Summary		Delete a post
//	@Description	Delete a post you own. Requires authentication.
//	@Tags			Posts
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Post ID"
//	@Success		204	"Deleted"
//	@Failure		401	{object}	map[string]string	"Missing or invalid token"
//	@Failure		403	{object}	map[string]string	"Not the owner"
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/posts/{id} [delete]
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, id string, policy authPolicy) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		internalError(w, err)
		return
	}
	if err := policy(&identity, post); err != nil {
		writeError(w, http.StatusForbidden, err)
		return
	}
	if err := s.store.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(doc))
}

// requireIdentity is the authorization gate in front of mutating post
// operations. A missing header and an invalid token both end as 401, with
// distinct messages.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (token.Identity, bool) {
	bearer, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
		return token.Identity{}, false
	}
	identity, err := s.tokens.Decode(bearer)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return token.Identity{}, false
	}
	return identity, true
}

func (s *Server) optionalIdentity(r *http.Request) *token.Identity {
	bearer, ok := bearerToken(r)
	if !ok {
		return nil
	}
	identity, err := s.tokens.Decode(bearer)
	if err != nil {
		return nil
	}
	return &identity
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}

func (s *Server) allowRateLimit(w http.ResponseWriter, r *http.Request, action string, limit int) bool {
	if limit <= 0 {
		return true
	}
	key := fmt.Sprintf("%s:ip:%s", action, s.clientIP(r))
	if ok, retry := s.limiter.Allow(key, limit, time.Minute); !ok {
		writeRateLimit(w, retry)
		return false
	}
	return true
}

func (s *Server) clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// internalError logs the cause and answers with a generic body. Driver and
// store errors never reach the wire.
func internalError(w http.ResponseWriter, err error) {
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": int(retry.Seconds()),
	})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
