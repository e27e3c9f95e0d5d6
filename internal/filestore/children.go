package filestore

import "strings"

// FilterDirectChildren reduces a raw listing of queryPath to the entries
// that sit exactly one segment below it. The directory's own entry, deeper
// descendants and entries that would have an empty name are dropped.
// Input order is preserved.
func FilterDirectChildren(queryPath string, raw []RawEntry) []Entry {
	prefix := ""
	if queryPath != "/" {
		prefix = strings.TrimPrefix(queryPath, "/")
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		relative := r.Path
		if prefix != "" {
			// An entry outside prefix is judged on its full path.
			if rest, ok := strings.CutPrefix(r.Path, prefix); ok {
				relative = rest
			}
		}

		if relative == "" || relative == "/" {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(relative, "/"), "/")
		if name == "" || strings.Contains(name, "/") {
			continue
		}

		entries = append(entries, Entry{
			Path:         r.Path,
			Name:         name,
			Size:         r.Size,
			IsDir:        r.IsDir,
			LastModified: r.LastModified,
		})
	}
	return entries
}

// NameOf returns the display name of a single path: its last segment once
// one trailing "/" is removed. "/a/b/c.txt" gives "c.txt" and "/a/b/" gives
// "b". A path that reduces to nothing (such as "/") names itself.
func NameOf(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	name := trimmed
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		name = trimmed[i+1:]
	}
	if name == "" {
		return p
	}
	return name
}

// EntryFromRaw builds the caller-facing entry for a stat of path.
func EntryFromRaw(path string, r *RawEntry) Entry {
	return Entry{
		Path:         path,
		Name:         NameOf(path),
		Size:         r.Size,
		IsDir:        r.IsDir,
		LastModified: r.LastModified,
	}
}
