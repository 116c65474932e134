// Package forum talks to a 2ch-style imageboard: it reads threads through
// the JSON API and posts replies and new threads.
package forum

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrThreadNotFound is returned when the thread JSON cannot be fetched.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrNetwork wraps transport failures such as refused connections and timeouts.
	ErrNetwork = errors.New("network failure")
	// ErrPostRejected is returned when the board answers a post with an error.
	ErrPostRejected = errors.New("post rejected")
)

// Post is one reply in a thread.
type Post struct {
	Num      int       `json:"num"`      // Board-wide post number
	Position int       `json:"position"` // 1-based ordinal in the thread
	Comment  string    `json:"comment"`  // Raw HTML
	Time     time.Time `json:"time"`
	Sage     bool      `json:"sage"`
}

// Thread is a fetched thread snapshot.
type Thread struct {
	Board string
	Num   int
	Posts []Post
}

// LatestBump returns the newest post that bumps the thread.
func (t *Thread) LatestBump() (Post, bool) {
	for i := len(t.Posts) - 1; i >= 0; i-- {
		if !t.Posts[i].Sage {
			return t.Posts[i], true
		}
	}
	return Post{}, false
}

// File is an attachment.
type File struct {
	Name string
	Data []byte
}

// PostRequest describes a reply, or a new thread when Thread is zero.
type PostRequest struct {
	Board   string
	Thread  int
	Comment string
	Subject string
	Files   []File
}

// PostResult is the board's answer to a successful post.
type PostResult struct {
	Num           int
	Thread        int
	SessionTokens map[string]string // op* cookies of a new thread
}

// ThreadURL formats the public link of a thread.
func ThreadURL(baseURL, board string, thread int) string {
	return fmt.Sprintf("%s/%s/res/%d.html", baseURL, board, thread)
}
