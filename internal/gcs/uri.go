// Package gcs reads and writes snapshots and scanned text on Google Cloud
// Storage, falling back to the local filesystem for plain paths.
package gcs

import (
	"fmt"
	"path"
	"strings"
)

const scheme = "gs://"

// IsURI reports whether s names a GCS object.
func IsURI(s string) bool {
	return strings.HasPrefix(s, scheme)
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Filename returns the last path element of a URI or path.
// "gs://bucket/folder/ledger.json" → "ledger.json"
func Filename(uri string) string {
	if _, object, err := ParseURI(uri); err == nil {
		return path.Base(object)
	}
	return path.Base(uri)
}
