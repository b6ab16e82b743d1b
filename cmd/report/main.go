// Command report prints aggregate statistics straight from a bloglist
// database, without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/tsander/bloglist/internal/bloglist"
	"github.com/tsander/bloglist/internal/config"
	"github.com/tsander/bloglist/internal/store/sqlite"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DBPath, "Database path")
	flag.Parse()

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	posts, err := store.ListPosts(ctx)
	if err != nil {
		log.Fatalf("list posts: %v", err)
	}
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		log.Fatalf("list accounts: %v", err)
	}

	fmt.Printf("Database:    %s\n", *dbPath)
	fmt.Printf("Accounts:    %d\n", len(accounts))
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
