package source

import (
	"path/filepath"
	"strings"

	"github.com/jscyril/mediashell/api"
)

// formats maps the extension allow-list to the element that renders it.
// Anything else is treated as audio so a broken video surface is never shown.
var formats = map[string]api.MediaKind{
	"mp4":  api.KindVideo,
	"webm": api.KindVideo,
	"ogg":  api.KindVideo,
	"mp3":  api.KindAudio,
	"wav":  api.KindAudio,
	"flac": api.KindAudio,
	"opus": api.KindAudio,
}

// SupportedExtensions returns the allow-list used for dialog filters
func SupportedExtensions() []string {
	return []string{"mp4", "webm", "ogg", "mp3", "wav", "flac", "opus"}
}

// Extension returns the lower-cased extension of name without the dot
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Classify derives the media kind from a filename
func Classify(name string) api.MediaKind {
	if kind, ok := formats[Extension(name)]; ok {
		return kind
	}
	return api.KindAudio
}

// IsSupported reports whether the extension is on the allow-list
func IsSupported(name string) bool {
	_, ok := formats[Extension(name)]
	return ok
}
