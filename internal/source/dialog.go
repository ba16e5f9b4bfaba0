package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

// ZenityOpener shows the desktop file chooser through zenity
type ZenityOpener struct {
	Path  string
	Title string
}

// NewZenityOpener locates zenity on PATH
func NewZenityOpener() (*ZenityOpener, error) {
	path, err := exec.LookPath("zenity")
	if err != nil {
		return nil, fmt.Errorf("zenity not found in PATH: %w", err)
	}
	return &ZenityOpener{Path: path, Title: "Open Media"}, nil
}

// Args returns the zenity command line for an extension filter
func (z *ZenityOpener) Args(extensions []string) []string {
	patterns := make([]string, len(extensions))
	for i, ext := range extensions {
		patterns[i] = "*." + ext
	}
	return []string{
		"--file-selection",
		"--title=" + z.Title,
		"--file-filter=Media Files | " + strings.Join(patterns, " "),
	}
}

// OpenFile runs the dialog. zenity exits with status 1 when cancelled.
func (z *ZenityOpener) OpenFile(ctx context.Context, extensions []string) (string, error) {
	cmd := exec.CommandContext(ctx, z.Path, z.Args(extensions)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", playerrors.ErrCancelled
		}
		return "", fmt.Errorf("zenity: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", playerrors.ErrCancelled
	}
	return path, nil
}
