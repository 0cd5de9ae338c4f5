// Package pages resolves the content pages comments attach to. The host CMS
// owns the page catalog; this service only mirrors enough of it (uri, hash,
// title, visibility) to address comment threads without exposing raw uris
// in form actions.
package pages

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Page is one entry of the page catalog.
type Page struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	URI       string    `json:"uri" db:"uri"`
	Hash      string    `json:"hash" db:"hash"`
	Title     string    `json:"title" db:"title"`
	ID        int64     `json:"id" db:"id"`
	Visible   bool      `json:"visible" db:"visible"`
}

// HashURI derives the stable public identifier of a page from its uri.
func HashURI(uri string) string {
	sum := md5.Sum([]byte(strings.Trim(uri, "/")))
	return hex.EncodeToString(sum[:])
}
