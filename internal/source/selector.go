// Package source turns user selections (dialog, drop, command line) into
// immutable media resources. It never starts playback.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jscyril/mediashell/api"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"go.uber.org/zap"
)

// FileOpener is the host file-open capability
//
//go:generate mockgen -destination=mocks/mock_opener.go -package=mocks github.com/jscyril/mediashell/internal/source FileOpener
type FileOpener interface {
	// OpenFile shows a picker restricted to the given extensions and returns
	// the chosen path, or ErrCancelled when the user dismisses it.
	OpenFile(ctx context.Context, extensions []string) (string, error)
}

// Selector produces MediaResource values
type Selector struct {
	logger *zap.Logger
}

// NewSelector creates a selector
func NewSelector(logger *zap.Logger) *Selector {
	return &Selector{logger: logger}
}

// SelectFromDialog asks the opener for a file. A cancelled dialog yields
// (nil, nil).
func (s *Selector) SelectFromDialog(ctx context.Context, opener FileOpener) (*api.MediaResource, error) {
	path, err := opener.OpenFile(ctx, SupportedExtensions())
	if err != nil {
		if errors.Is(err, playerrors.ErrCancelled) {
			s.logger.Debug("file dialog cancelled")
			return nil, nil
		}
		return nil, fmt.Errorf("open file dialog: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	return s.SelectFromPath(path), nil
}

// SelectFromDrop builds a resource for a dropped file. The locator may be a
// path or an in-memory data URL; the kind comes from the original filename.
func (s *Selector) SelectFromDrop(locator, filename string) *api.MediaResource {
	res := &api.MediaResource{
		Locator: locator,
		Kind:    Classify(filename),
		Name:    filepath.Base(filename),
	}
	s.logger.Info("resource dropped",
		zap.String("name", res.Name),
		zap.Stringer("kind", res.Kind))
	return res
}

// SelectFromPath builds a resource for a local path
func (s *Selector) SelectFromPath(path string) *api.MediaResource {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	res := &api.MediaResource{
		Locator: path,
		Kind:    Classify(path),
		Name:    filepath.Base(path),
	}
	if !IsSupported(path) {
		s.logger.Warn("unrecognized extension, treating as audio", zap.String("path", path))
	}
	s.logger.Info("resource selected",
		zap.String("name", res.Name),
		zap.Stringer("kind", res.Kind))
	return res
}
