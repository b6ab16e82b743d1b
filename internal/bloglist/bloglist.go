// Package bloglist holds pure aggregation helpers over fetched post lists.
// They have no request-path role; the report tool and tests use them.
package bloglist

import "github.com/tsander/bloglist/internal/model"

// AuthorCount pairs an author with how many posts they wrote.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// AuthorLikes pairs an author with their summed likes.
type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// TotalLikes sums likes across all posts. Zero for an empty list.
func TotalLikes(posts []model.Post) int {
	total := 0
	for _, p := range posts {
		total += p.Likes
	}
	return total
}

// MostLiked returns the post with the most likes. Ties resolve to the first
// maximum in input order. ok is false for an empty list.
func MostLiked(posts []model.Post) (best model.Post, ok bool) {
	for i, p := range posts {
		if i == 0 || p.Likes > best.Likes {
			best = p
			ok = true
		}
	}
	return best, ok
}

// MostProlificAuthor returns the author with the most posts. Ties resolve to
// the author seen first in the input.
func MostProlificAuthor(posts []model.Post) (AuthorCount, bool) {
	counts := make(map[string]int)
	var order []string
	for _, p := range posts {
		if _, seen := counts[p.Author]; !seen {
			order = append(order, p.Author)
		}
		counts[p.Author]++
	}
	var best AuthorCount
	found := false
	for _, author := range order {
		if !found || counts[author] > best.Count {
			best = AuthorCount{Author: author, Count: counts[author]}
			found = true
		}
	}
	return best, found
}

// MostLikedAuthor returns the author with the highest summed likes, with the
// same tie-break rule as MostProlificAuthor.
func MostLikedAuthor(posts []model.Post) (AuthorLikes, bool) {
	likes := make(map[string]int)
	var order []string
	for _, p := range posts {
		if _, seen := likes[p.Author]; !seen {
			order = append(order, p.Author)
		}
		likes[p.Author] += p.Likes
	}
	var best AuthorLikes
	found := false
	for _, author := range order {
		if !found || likes[author] > best.Likes {
			best = AuthorLikes{Author: author, Likes: likes[author]}
			found = true
		}
	}
	return best, found
}
