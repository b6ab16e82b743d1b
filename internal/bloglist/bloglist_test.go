package bloglist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsander/bloglist/internal/model"
)

func fixturePosts() []model.Post {
	return []model.Post{
		{ID: "1", Title: "React patterns", Author: "Michael Chan", URL: "https://reactpatterns.com/", Likes: 7},
		{ID: "2", Title: "Go To Statement Considered Harmful", Author: "Edsger W. Dijkstra", URL: "http://www.u.arizona.edu/~rubinson/copyright_violations/Go_To_Considered_Harmful.html", Likes: 5},
		{ID: "3", Title: "Canonical string reduction", Author: "Edsger W. Dijkstra", URL: "http://www.cs.utexas.edu/~EWD/transcriptions/EWD08xx/EWD808.html", Likes: 12},
		{ID: "4", Title: "First class tests", Author: "Robert C. Martin", URL: "http://blog.cleancoder.com/uncle-bob/2017/05/05/TestDefinitions.html", Likes: 10},
		{ID: "5", Title: "TDD harms architecture", Author: "Robert C. Martin", URL: "http://blog.cleancoder.com/uncle-bob/2017/03/03/TDD-Harms-Architecture.html", Likes: 0},
		{ID: "6", Title: "Type wars", Author: "Robert C. Martin", URL: "http://blog.cleancoder.com/uncle-bob/2016/05/01/TypeWars.html", Likes: 2},
	}
}

func TestTotalLikes(t *testing.T) {
	t.Run("of empty list is zero", func(t *testing.T) {
		assert.Equal(t, 0, TotalLikes(nil))
	})

	t.Run("of a single post equals its likes", func(t *testing.T) {
		posts := fixturePosts()[1:2]
		assert.Equal(t, 5, TotalLikes(posts))
	})

	t.Run("of a bigger list is summed", func(t *testing.T) {
		assert.Equal(t, 36, TotalLikes(fixturePosts()))
	})
}

func TestMostLiked(t *testing.T) {
	t.Run("empty list has no favorite", func(t *testing.T) {
		_, ok := MostLiked(nil)
		assert.False(t, ok)
	})

	t.Run("finds the post with most likes", func(t *testing.T) {
		best, ok := MostLiked(fixturePosts())
		require.True(t, ok)
		assert.Equal(t, "Canonical string reduction", best.Title)
		assert.Equal(t, 12, best.Likes)
	})

	t.Run("ties go to the earlier post", func(t *testing.T) {
		posts := []model.Post{
			{Title: "first", Likes: 4},
			{Title: "second", Likes: 4},
		}
		best, ok := MostLiked(posts)
		require.True(t, ok)
		assert.Equal(t, "first", best.Title)
	})
}

func TestMostProlificAuthor(t *testing.T) {
	t.Run("empty list has no author", func(t *testing.T) {
		_, ok := MostProlificAuthor(nil)
		assert.False(t, ok)
	})

	t.Run("finds the author with most posts", func(t *testing.T) {
		top, ok := MostProlificAuthor(fixturePosts())
		require.True(t, ok)
		assert.Equal(t, AuthorCount{Author: "Robert C. Martin", Count: 3}, top)
	})

	t.Run("ties go to the author seen first", func(t *testing.T) {
		posts := []model.Post{
			{Title: "a", Author: "Alpha"},
			{Title: "b", Author: "Beta"},
			{Title: "c", Author: "Beta"},
			{Title: "d", Author: "Alpha"},
		}
		top, ok := MostProlificAuthor(posts)
		require.True(t, ok)
		assert.Equal(t, "Alpha", top.Author)
		assert.Equal(t, 2, top.Count)
	})
}

func TestMostLikedAuthor(t *testing.T) {
	t.Run("empty list has no author", func(t *testing.T) {
		_, ok := MostLikedAuthor(nil)
		assert.False(t, ok)
	})

	t.Run("finds the author with most accumulated likes", func(t *testing.T) {
		top, ok := MostLikedAuthor(fixturePosts())
		require.True(t, ok)
		assert.Equal(t, AuthorLikes{Author: "Edsger W. Dijkstra", Likes: 17}, top)
	})

	t.Run("counts zero-like authors", func(t *testing.T) {
		posts := []model.Post{
			{Title: "a", Author: "Alpha", Likes: 0},
		}
		top, ok := MostLikedAuthor(posts)
		require.True(t, ok)
		assert.Equal(t, AuthorLikes{Author: "Alpha", Likes: 0}, top)
	})
}
