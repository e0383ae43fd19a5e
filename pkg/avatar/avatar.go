// Package avatar picks deterministic placeholder images for workers without an avatar.
package avatar

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed images/*.svg
var Images embed.FS

// FS returns the placeholder images rooted at their file names.
func FS() fs.FS {
	sub, err := fs.Sub(Images, "images")
	if err != nil {
		panic(err)
	}
	return sub
}

// PathPrefix is where the dashboard serves the embedded images.
const PathPrefix = "/static/avatars/"

var placeholders = []string{
	"worker-1.svg",
	"worker-2.svg",
	"worker-3.svg",
	"worker-4.svg",
}

// Index maps identifier onto the placeholder set. Identical input always
// yields the same index.
func Index(identifier string) int {
	sum := 0
	for _, r := range identifier {
		sum += int(r)
	}
	return sum % len(placeholders)
}

// Placeholder returns the URL path of the placeholder image for identifier.
func Placeholder(identifier string) string {
	return PathPrefix + placeholders[Index(identifier)]
}

// URL returns avatarURL when present, otherwise a placeholder derived from
// name, falling back to email when name is blank.
func URL(avatarURL, name, email string) string {
	if trimmed := strings.TrimSpace(avatarURL); trimmed != "" {
		return trimmed
	}
	identifier := strings.TrimSpace(name)
	if identifier == "" {
		identifier = strings.ToLower(strings.TrimSpace(email))
	}
	return Placeholder(identifier)
}
