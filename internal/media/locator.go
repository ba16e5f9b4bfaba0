package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

// Open returns a seekable reader for a locator: a local path, a file:// URI
// or a data URL.
func Open(locator string) (io.ReadSeekCloser, error) {
	switch {
	case strings.HasPrefix(locator, "data:"):
		data, err := decodeDataURL(locator)
		if err != nil {
			return nil, err
		}
		return memoryFile{bytes.NewReader(data)}, nil

	case strings.HasPrefix(locator, "file://"):
		u, err := url.Parse(locator)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", playerrors.ErrInvalidLocator, err)
		}
		return os.Open(u.Path)

	default:
		return os.Open(locator)
	}
}

func decodeDataURL(locator string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(locator, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URL without payload", playerrors.ErrInvalidLocator)
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", playerrors.ErrInvalidLocator, err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", playerrors.ErrInvalidLocator, err)
	}
	return []byte(text), nil
}

// Materialize returns a filesystem path for a locator. In-memory locators
// are written to a temp file which cleanup removes.
func Materialize(locator, name string) (path string, cleanup func(), err error) {
	noop := func() {}
	switch {
	case strings.HasPrefix(locator, "data:"):
		data, err := decodeDataURL(locator)
		if err != nil {
			return "", noop, err
		}
		f, err := os.CreateTemp("", "mediashell-*"+filepath.Ext(name))
		if err != nil {
			return "", noop, fmt.Errorf("create temp file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", noop, fmt.Errorf("write temp file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return "", noop, fmt.Errorf("close temp file: %w", err)
		}
		return f.Name(), func() { os.Remove(f.Name()) }, nil

	case strings.HasPrefix(locator, "file://"):
		u, err := url.Parse(locator)
		if err != nil {
			return "", noop, fmt.Errorf("%w: %v", playerrors.ErrInvalidLocator, err)
		}
		return u.Path, noop, nil

	default:
		return locator, noop, nil
	}
}
