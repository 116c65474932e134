// Package moderation decides which country names may enter the game.
package moderation

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// List is a file of case-insensitive name patterns, one per line.
type List struct {
	mu       sync.Mutex
	path     string
	patterns []string
	compiled []*regexp.Regexp
}

// LoadList reads a pattern file, creating it empty when missing.
func LoadList(path string) (*List, error) {
	l := &List{path: path}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create list directory: %w", err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return nil, fmt.Errorf("failed to create list: %w", err)
		}
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open list: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := l.add(line); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return l, sc.Err()
}

func (l *List) add(pattern string) error {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	l.patterns = append(l.patterns, pattern)
	l.compiled = append(l.compiled, re)
	return nil
}

// Match reports whether any pattern is found in name.
func (l *List) Match(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, re := range l.compiled {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Contains reports whether the exact pattern is listed.
func (l *List) Contains(pattern string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Contains(l.patterns, pattern)
}

// Add appends a pattern and rewrites the file.
func (l *List) Add(pattern string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if slices.Contains(l.patterns, pattern) {
		return nil
	}
	if err := l.add(pattern); err != nil {
		return err
	}

	var b strings.Builder
	for _, p := range l.patterns {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return os.WriteFile(l.path, []byte(b.String()), 0644)
}

// ExactPattern returns the pattern matching only name.
func ExactPattern(name string) string {
	return "^" + regexp.QuoteMeta(name) + "$"
}

// Lists is the white and black list pair.
type Lists struct {
	White *List
	Black *List
}

// LoadLists reads both list files.
func LoadLists(whitePath, blackPath string) (*Lists, error) {
	white, err := LoadList(whitePath)
	if err != nil {
		return nil, err
	}
	black, err := LoadList(blackPath)
	if err != nil {
		return nil, err
	}
	return &Lists{White: white, Black: black}, nil
}

// Allow white-lists the exact name unless it is already listed somewhere.
func (ls *Lists) Allow(name string) error {
	p := ExactPattern(name)
	if ls.White.Contains(p) || ls.Black.Contains(p) {
		return nil
	}
	return ls.White.Add(p)
}

// Ban black-lists the exact name unless it is already listed somewhere.
func (ls *Lists) Ban(name string) error {
	p := ExactPattern(name)
	if ls.White.Contains(p) || ls.Black.Contains(p) {
		return nil
	}
	return ls.Black.Add(p)
}
