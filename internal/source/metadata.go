package source

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/jscyril/mediashell/api"
)

// ReadTitle returns a display title for a resource. Audio files on disk
// are read for tags; everything else falls back to the filename.
func ReadTitle(res *api.MediaResource) string {
	if res == nil {
		return ""
	}
	if res.Kind != api.KindAudio || strings.HasPrefix(res.Locator, "data:") {
		return res.Name
	}

	file, err := os.Open(res.Locator)
	if err != nil {
		return res.Name
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return res.Name
	}

	title := metadata.Title()
	if title == "" {
		return res.Name
	}
	if artist := metadata.Artist(); artist != "" {
		return artist + " - " + title
	}
	return title
}
