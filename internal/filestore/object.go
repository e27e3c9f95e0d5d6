package filestore

import (
	"encoding/json"
	"time"
)

// RawEntry is an object or directory node as reported by a Gateway,
// before any filtering. It may lie at any depth under the listed path.
type RawEntry struct {
	// Path is the full location as reported by the backend (e.g. "docs/a.txt").
	Path string

	// Size is the byte length. Zero for directories.
	Size uint64

	// IsDir is true when Path is a directory marker (ends with "/").
	IsDir bool

	// LastModified is nil when the backend does not report one.
	LastModified *time.Time
}

// Entry is one node handed back to callers.
type Entry struct {
	Path         string
	Name         string
	Size         uint64
	IsDir        bool
	LastModified *time.Time
}

type entryJSON struct {
	Path         string  `json:"path"`
	Name         string  `json:"name"`
	Size         uint64  `json:"size"`
	IsDir        bool    `json:"is_dir"`
	LastModified *string `json:"last_modified,omitempty"`
}

// MarshalJSON encodes the entry in its interop shape, with last_modified
// as an RFC 3339 UTC string or absent.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{Path: e.Path, Name: e.Name, Size: e.Size, IsDir: e.IsDir}
	if e.LastModified != nil {
		s := e.LastModified.UTC().Format(time.RFC3339)
		out.LastModified = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Entry{Path: in.Path, Name: in.Name, Size: in.Size, IsDir: in.IsDir}
	if in.LastModified != nil {
		t, err := time.Parse(time.RFC3339, *in.LastModified)
		if err != nil {
			return err
		}
		e.LastModified = &t
	}
	return nil
}

// IsDirPath reports whether p follows the directory-marker convention.
func IsDirPath(p string) bool {
	return len(p) > 0 && p[len(p)-1] == '/'
}
