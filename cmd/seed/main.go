package main

import (
	"flag"
	"log"

	"github.com/tsander/bloglist/internal/bloglist"
	"github.com/tsander/bloglist/internal/client"
)

var accounts = []struct {
	username string
	name     string
	password string
}{
	{"root", "Superuser", "sekret"},
	{"mluukkai", "Matti Luukkainen", "salainen"},
	{"hellas", "Arto Hellas", "hellas123"},
}

var posts = []struct {
	owner  string
	title  string
	author string
	url    string
	likes  int
}{
	{"root", "React patterns", "Michael Chan", "https://reactpatterns.com/", 7},
	{"root", "Go To Statement Considered Harmful", "Edsger W. Dijkstra", "http://www.u.arizona.edu/~rubinson/copyright_violations/Go_To_Considered_Harmful.html", 5},
	{"mluukkai", "Canonical string reduction", "Edsger W. Dijkstra", "http://www.cs.utexas.edu/~EWD/transcriptions/EWD08xx/EWD808.html", 12},
	{"mluukkai", "First class tests", "Robert C. Martin", "http://blog.cleancoder.com/uncle-bob/2017/05/05/TestDefinitions.html", 10},
	{"hellas", "TDD harms architecture", "Robert C. Martin", "http://blog.cleancoder.com/uncle-bob/2017/03/03/TDD-Harms-Architecture.html", 0},
	{"hellas", "Type wars", "Robert C. Martin", "http://blog.cleancoder.com/uncle-bob/2016/05/01/TypeWars.html", 2},
}

func main() {
	baseURL := flag.String("url", "http://localhost:3003", "Bloglist server URL")
	flag.Parse()

	log.Printf("Seeding database at %s...\n", *baseURL)

	// Register all accounts and keep their clients
	clients := map[string]*client.Client{}
	for _, account := range accounts {
		c := client.New(*baseURL)
		creds := client.Credentials{
			Username: account.username,
			Name:     account.name,
			Password: account.password,
		}
		if err := c.RegisterAndLogin(creds); err != nil {
			log.Fatalf("register %s: %v", account.username, err)
		}
		log.Printf("✓ Registered account: %s", account.username)
		clients[account.username] = c
	}

	var created int
	for _, p := range posts {
		c := clients[p.owner]

		post, err := c.CreatePost(p.title, p.author, p.url, p.likes)
		if err != nil {
			log.Printf("✗ Failed to create post: %v", err)
			continue
		}
		created++
		log.Printf("✓ Created post %s: %s (by %s)", post.ID, p.title, p.owner)
	}

	log.Printf("✓ Created %d posts", created)

	all, err := client.New(*baseURL).ListPosts()
	if err != nil {
		log.Fatalf("list posts: %v", err)
	}

	log.Printf("Total likes: %d", bloglist.TotalLikes(all))
	if favorite, ok := bloglist.MostLiked(all); ok {
		log.Printf("Favorite: %s (%d likes)", favorite.Title, favorite.Likes)
	}
	if top, ok := bloglist.MostProlificAuthor(all); ok {
		log.Printf("Most posts: %s (%d)", top.Author, top.Count)
	}
	if top, ok := bloglist.MostLikedAuthor(all); ok {
		log.Printf("Most liked author: %s (%d likes)", top.Author, top.Likes)
	}
}
