package source

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

var mimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogg":  "video/ogg",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
	"opus": "audio/opus",
}

// MimeType returns the content type recorded in data URLs for name
func MimeType(name string) string {
	if t, ok := mimeTypes[Extension(name)]; ok {
		return t
	}
	return "application/octet-stream"
}

// DecodeDrop turns a terminal drag-and-drop payload into a locator and the
// original filename. Terminals paste dropped files as a path that may be
// quoted, backslash-escaped or a file:// URI; only the first file is used.
func DecodeDrop(pasted string) (locator, filename string, err error) {
	p := strings.TrimSpace(pasted)
	if i := strings.IndexAny(p, "\r\n"); i >= 0 {
		p = strings.TrimSpace(p[:i])
	}
	if p == "" {
		return "", "", fmt.Errorf("empty drop: %w", playerrors.ErrInvalidLocator)
	}

	if len(p) >= 2 && (p[0] == '\'' || p[0] == '"') && p[len(p)-1] == p[0] {
		p = p[1 : len(p)-1]
	} else {
		p = unescapeShell(p)
	}

	if strings.HasPrefix(p, "file://") {
		u, perr := url.Parse(p)
		if perr != nil {
			return "", "", fmt.Errorf("parse %q: %w", p, playerrors.ErrInvalidLocator)
		}
		p = u.Path
	}

	if strings.HasPrefix(p, "~/") {
		if home, herr := os.UserHomeDir(); herr == nil {
			p = filepath.Join(home, p[2:])
		}
	}

	info, err := os.Stat(p)
	if err != nil {
		return "", "", fmt.Errorf("dropped file: %w", err)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("%s is a directory: %w", p, playerrors.ErrInvalidLocator)
	}
	return p, filepath.Base(p), nil
}

// unescapeShell removes backslash escapes such as "My\ Song.mp3"
func unescapeShell(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// DataURL encodes the content of r as a base64 data URL
func DataURL(r io.Reader, filename string) (string, error) {
	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(MimeType(filename))
	sb.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := io.Copy(enc, r); err != nil {
		return "", fmt.Errorf("encode %s: %w", filename, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode %s: %w", filename, err)
	}
	return sb.String(), nil
}

// InlineDrop reads a dropped file fully into an in-memory data URL
func InlineDrop(path string) (locator, filename string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open dropped file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	locator, err = DataURL(f, name)
	if err != nil {
		return "", "", err
	}
	return locator, name, nil
}
