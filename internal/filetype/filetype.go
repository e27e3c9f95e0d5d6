// Package filetype classifies objects by file name for previews and for the
// Content-Type recorded on upload.
package filetype

import (
	"path"
	"strings"
)

// PreviewType is the kind of inline preview a file supports.
type PreviewType string

const (
	PreviewImage       PreviewType = "image"
	PreviewText        PreviewType = "text"
	PreviewPDF         PreviewType = "pdf"
	PreviewVideo       PreviewType = "video"
	PreviewAudio       PreviewType = "audio"
	PreviewUnsupported PreviewType = "unsupported"
)

// Info describes how a file can be previewed.
type Info struct {
	PreviewType PreviewType `json:"previewType"`
	MIMEType    string      `json:"mimeType"`
	// Language is the syntax-highlighting hint for text files.
	Language string `json:"language,omitempty"`
}

const defaultMIME = "application/octet-stream"

var textLanguages = map[string]string{
	".txt":          "text",
	".md":           "markdown",
	".json":         "json",
	".yaml":         "yaml",
	".yml":          "yaml",
	".xml":          "xml",
	".js":           "javascript",
	".mjs":          "javascript",
	".cjs":          "javascript",
	".ts":           "typescript",
	".tsx":          "tsx",
	".jsx":          "jsx",
	".py":           "python",
	".go":           "go",
	".rs":           "rust",
	".html":         "html",
	".htm":          "html",
	".css":          "css",
	".scss":         "scss",
	".less":         "less",
	".sh":           "shell",
	".bash":         "bash",
	".zsh":          "shell",
	".sql":          "sql",
	".toml":         "toml",
	".ini":          "ini",
	".env":          "shell",
	".gitignore":    "text",
	".dockerignore": "text",
}

var imageMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
}

var videoMIME = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

var audioMIME = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".ogg": "audio/ogg",
	".m4a": "audio/mp4",
}

// Ext returns the lower-cased extension of name including the dot, or "".
// A leading-dot name such as ".gitignore" is its own extension.
func Ext(name string) string {
	base := path.Base(strings.TrimSuffix(name, "/"))
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i:])
}

// Detect classifies name by its extension.
func Detect(name string) Info {
	ext := Ext(name)

	if m, ok := imageMIME[ext]; ok {
		return Info{PreviewType: PreviewImage, MIMEType: m}
	}
	if ext == ".pdf" {
		return Info{PreviewType: PreviewPDF, MIMEType: "application/pdf"}
	}
	if m, ok := videoMIME[ext]; ok {
		return Info{PreviewType: PreviewVideo, MIMEType: m}
	}
	if m, ok := audioMIME[ext]; ok {
		return Info{PreviewType: PreviewAudio, MIMEType: m}
	}
	if lang, ok := textLanguages[ext]; ok {
		return Info{PreviewType: PreviewText, MIMEType: "text/plain", Language: lang}
	}
	return Info{PreviewType: PreviewUnsupported, MIMEType: defaultMIME}
}

// Previewable reports whether name has any inline preview.
func Previewable(name string) bool {
	return Detect(name).PreviewType != PreviewUnsupported
}
