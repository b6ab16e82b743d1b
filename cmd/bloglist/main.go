package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tsander/bloglist/internal/bloglist"
	"github.com/tsander/bloglist/internal/client"
	"github.com/tsander/bloglist/internal/config"
	httpapp "github.com/tsander/bloglist/internal/http"
	"github.com/tsander/bloglist/internal/rate"
	"github.com/tsander/bloglist/internal/store/sqlite"
	"github.com/tsander/bloglist/internal/token"
)

// CLIConfig holds the CLI client configuration persisted to disk.
type CLIConfig struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

func main() {
	if len(os.Args) < 2 {
		runServer()
		return
	}

	cmd := os.Args[1]

	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println("bloglist v0.1.0")
		return
	}

	if strings.HasPrefix(cmd, "-") {
		runServer()
		return
	}

	args := os.Args[2:]

	switch cmd {
	case "server", "serve":
		runServer()
	case "register":
		cmdRegister(args)
	case "login", "auth":
		cmdLogin(args)
	case "post", "submit":
		cmdPost(args)
	case "read", "list":
		cmdRead(args)
	case "like":
		cmdLike(args)
	case "delete", "rm":
		cmdDelete(args)
	case "stats":
		cmdStats(args)
	case "status", "whoami":
		cmdStatus(args)
	case "use", "switch":
		cmdUse(args)
	case "accounts":
		cmdAccounts(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bloglist - Blog listing service

Usage: bloglist <command> [options]

Quick Start:
  bloglist register --username mybot --password secret
  bloglist post --title "Hello" --url "https://example.com"

Client Commands:
  register            Register an account and log in (one command)
  login               Log in again (when the token expires)
  post                Create a blog post
  read                List posts, or view one with --id
  like                Bump the like count of a post
  delete              Delete your own post
  stats               Show aggregate statistics over all posts
  status              Show current config and token status

Multi-Account:
  accounts            List all local accounts
  use <username>      Switch to a different account

Server:
  server              Start the bloglist server (default if no command)

Examples:
  bloglist register --username mluukkai --name "Matti Luukkainen" --password salainen
  bloglist post --title "React patterns" --author "Michael Chan" --url "https://reactpatterns.com/"
  bloglist read --id 1f0e...
  bloglist like --id 1f0e... --likes 8
  bloglist stats

Environment Variables (server):
  BLOGLIST_ADDR             Listen address (default: :3003)
  BLOGLIST_DB               Database path (default: bloglist.db)
  BLOGLIST_SECRET           Token signing secret
  BLOGLIST_TOKEN_TTL        Token lifetime (default: 1h)`)
}

// ============================================================================
// SERVER
// ============================================================================

func runServer() {
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer store.Close()

	limiter := rate.NewMemory()
	tokens := token.New(cfg.Secret, cfg.TokenTTL)

	server := httpapp.NewServer(store, tokens, limiter, cfg)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("bloglist listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

// ============================================================================
// CLIENT COMMANDS
// ============================================================================

func cmdRegister(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username (required, at least 4 characters)")
	name := fs.String("name", "", "Display name")
	pass := fs.String("password", "", "Password (required, at least 4 characters)")
	url := fs.String("url", "http://localhost:3003", "Bloglist server URL")
	fs.Parse(args)

	if *username == "" || *pass == "" {
		fmt.Fprintln(os.Stderr, "Error: --username and --password are required")
		fmt.Fprintln(os.Stderr, "Usage: bloglist register --username <name> --password <password>")
		os.Exit(1)
	}

	c := client.New(strings.TrimSuffix(*url, "/"))
	creds := client.Credentials{Username: *username, Name: *name, Password: *pass}

	_, err := c.Register(creds)
	alreadyRegistered := errors.Is(err, client.ErrAlreadyRegistered)
	if err != nil && !alreadyRegistered {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if alreadyRegistered {
		fmt.Printf("✓ Already registered as '%s'\n", *username)
	} else {
		fmt.Printf("✓ Registered '%s'\n", *username)
	}

	if err := c.Login(creds); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: login failed: %v\n", err)
		fmt.Println("Run 'bloglist login' to authenticate")
		return
	}

	cfg := CLIConfig{
		BaseURL:  c.BaseURL,
		Username: *username,
		Name:     *name,
		Token:    c.Token,
	}
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Logged in")
	fmt.Println("\nReady to post! Example:")
	fmt.Println("  bloglist post --title \"Hello\" --url \"https://example.com\"")
}

func cmdLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	pass := fs.String("password", "", "Password (required)")
	fs.Parse(args)

	cfg, err := loadCLIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nRun 'bloglist register' first\n", err)
		os.Exit(1)
	}
	if *pass == "" {
		fmt.Fprintln(os.Stderr, "Error: --password is required")
		os.Exit(1)
	}

	c := client.New(cfg.BaseURL)
	creds := client.Credentials{Username: cfg.Username, Password: *pass}
	if err := c.Login(creds); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg.Token = c.Token
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Logged in as '%s'\n", cfg.Username)
}

func cmdPost(args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "Post title (required)")
	author := fs.String("author", "", "Author name")
	url := fs.String("url", "", "Post URL (required)")
	likes := fs.Int("likes", 0, "Initial like count")
	fs.Parse(args)

	if *title == "" || *url == "" {
		fmt.Fprintln(os.Stderr, "Error: --title and --url are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	post, err := c.CreatePost(*title, *author, *url, *likes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Posted: %s\n", post.Title)
	fmt.Printf("  ID: %s\n", post.ID)
}

func cmdRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	id := fs.String("id", "", "Get a specific post")
	fs.Parse(args)

	c := client.New(readBaseURL())

	if *id != "" {
		post, err := c.GetPost(*id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s\n", post.Title)
		if post.Author != "" {
			fmt.Printf("  by %s\n", post.Author)
		}
		fmt.Printf("  %d likes | %s\n", post.Likes, post.URL)
		if post.Owner != nil {
			fmt.Printf("  added by %s\n", post.Owner.Username)
		}
		return
	}

	posts, err := c.ListPosts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📚 Bloglist (%d posts)\n\n", len(posts))
	for i, p := range posts {
		fmt.Printf("%d. %s\n", i+1, p.Title)
		owner := ""
		if p.Owner != nil {
			owner = " | added by " + p.Owner.Username
		}
		fmt.Printf("   %d likes | %s%s | %s\n\n", p.Likes, p.Author, owner, p.ID)
	}
}

func cmdLike(args []string) {
	fs := flag.NewFlagSet("like", flag.ExitOnError)
	id := fs.String("id", "", "Post ID (required)")
	likes := fs.Int("likes", -1, "New like count (default: current + 1)")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	c := client.New(readBaseURL())

	value := *likes
	if value < 0 {
		post, err := c.GetPost(*id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		value = post.Likes + 1
	}

	post, err := c.UpdateLikes(*id, value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ %s now has %d likes\n", post.Title, post.Likes)
}

func cmdDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Post ID to delete (required)")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		fmt.Fprintln(os.Stderr, "Usage: bloglist delete --id <id>")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := c.DeletePost(*id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted post %s\n", *id)
}

func cmdStats(args []string) {
	c := client.New(readBaseURL())

	posts, err := c.ListPosts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Posts:       %d\n", len(posts))
	fmt.Printf("Total likes: %d\n", bloglist.TotalLikes(posts))
	if favorite, ok := bloglist.MostLiked(posts); ok {
		fmt.Printf("Favorite:    %s (%d likes)\n", favorite.Title, favorite.Likes)
	}
	if top, ok := bloglist.MostProlificAuthor(posts); ok {
		fmt.Printf("Most posts:  %s (%d)\n", top.Author, top.Count)
	}
	if top, ok := bloglist.MostLikedAuthor(posts); ok {
		fmt.Printf("Most liked:  %s (%d likes)\n", top.Author, top.Likes)
	}
}

func cmdStatus(args []string) {
	cfg, err := loadCLIConfig()
	if err != nil {
		fmt.Println("Status: Not registered")
		fmt.Println("\nRun: bloglist register --username <name> --password <password>")
		return
	}

	fmt.Printf("Account: %s\n", cfg.Username)
	fmt.Printf("Server:  %s\n", cfg.BaseURL)

	if cfg.Token == "" {
		fmt.Println("Token:   Not logged in")
		fmt.Println("\nRun: bloglist login --password <password>")
	} else {
		fmt.Println("Token:   Present")
	}
}

func cmdUse(args []string) {
	if len(args) == 0 {
		current := getCurrentAccount()
		if current == "" {
			fmt.Println("No account selected")
		} else {
			fmt.Printf("Current account: %s\n", current)
		}
		fmt.Println("\nUsage: bloglist use <username>")
		fmt.Println("Run 'bloglist accounts' to see local accounts")
		return
	}

	username := args[0]
	configPath := accountConfigPath(username)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: account '%s' not found\n", username)
		fmt.Fprintln(os.Stderr, "Run 'bloglist accounts' to see local accounts")
		os.Exit(1)
	}

	if err := setCurrentAccount(username); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Switched to '%s'\n", username)
}

func cmdAccounts(args []string) {
	accounts, err := listLocalAccounts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(accounts) == 0 {
		fmt.Println("No local accounts")
		fmt.Println("\nRun: bloglist register --username <name> --password <password>")
		return
	}

	current := getCurrentAccount()
	fmt.Println("Local accounts:")
	for _, account := range accounts {
		if account == current {
			fmt.Printf("  * %s (current)\n", account)
		} else {
			fmt.Printf("    %s\n", account)
		}
	}
	fmt.Println("\nSwitch with: bloglist use <username>")
}

// ============================================================================
// HELPERS
// ============================================================================

func bloglistDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".bloglist")
}

func currentAccountPath() string {
	return filepath.Join(bloglistDir(), "current")
}

func accountConfigPath(username string) string {
	return filepath.Join(bloglistDir(), "accounts", username, "config.json")
}

func getCurrentAccount() string {
	data, err := os.ReadFile(currentAccountPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func setCurrentAccount(username string) error {
	dir := bloglistDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(currentAccountPath(), []byte(username), 0600)
}

func listLocalAccounts() ([]string, error) {
	accountsDir := filepath.Join(bloglistDir(), "accounts")
	entries, err := os.ReadDir(accountsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var accounts []string
	for _, e := range entries {
		if e.IsDir() {
			configPath := filepath.Join(accountsDir, e.Name(), "config.json")
			if _, err := os.Stat(configPath); err == nil {
				accounts = append(accounts, e.Name())
			}
		}
	}
	return accounts, nil
}

func readBaseURL() string {
	cfg, err := loadCLIConfig()
	if err != nil || cfg.BaseURL == "" {
		return "http://localhost:3003"
	}
	return cfg.BaseURL
}

func loadCLIConfig() (CLIConfig, error) {
	current := getCurrentAccount()
	if current == "" {
		return CLIConfig{}, errors.New("no account selected - run 'bloglist register' or 'bloglist use <username>'")
	}
	data, err := os.ReadFile(accountConfigPath(current))
	if err != nil {
		return CLIConfig{}, errors.New("not registered")
	}
	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func saveCLIConfig(cfg CLIConfig) error {
	path := accountConfigPath(cfg.Username)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(cfg, "", "  ")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	return setCurrentAccount(cfg.Username)
}

func loadAuthenticatedClient() (*client.Client, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errors.New("not logged in - run 'bloglist login'")
	}

	c := client.New(cfg.BaseURL)
	c.Token = cfg.Token
	return c, nil
}
