package media

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

// DecodableFormats returns the audio formats the audio element can decode
func DecodableFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// CanDecode reports whether the audio element can decode name. Other audio
// formats are played by mpv.
func CanDecode(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range DecodableFormats() {
		if ext == f {
			return true
		}
	}
	return false
}

// DecodeAudio decodes an audio stream based on the extension of name
func DecodeAudio(r io.ReadSeekCloser, name string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrUnsupportedFormat, ext)
	}
}
