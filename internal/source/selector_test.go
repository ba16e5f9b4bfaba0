package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/source/mocks"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want api.MediaKind
	}{
		{"clip.mp4", api.KindVideo},
		{"clip.MP4", api.KindVideo},
		{"talk.webm", api.KindVideo},
		{"old.Ogg", api.KindVideo},
		{"song.mp3", api.KindAudio},
		{"song.WAV", api.KindAudio},
		{"song.flac", api.KindAudio},
		{"voice.opus", api.KindAudio},
		{"file.xyz", api.KindAudio},
		{"noextension", api.KindAudio},
		{"/dir.mp4/track", api.KindAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.name)
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if again := Classify(tt.name); again != got {
				t.Errorf("Classify(%q) not deterministic", tt.name)
			}
		})
	}
}

func TestSelectFromDrop(t *testing.T) {
	s := NewSelector(zap.NewNop())

	video := s.SelectFromDrop("/tmp/clip.MP4", "clip.MP4")
	if video.Kind != api.KindVideo {
		t.Errorf("clip.MP4 classified %v, want video", video.Kind)
	}

	audio := s.SelectFromDrop("data:audio/flac;base64,AAAA", "song.flac")
	if audio.Kind != api.KindAudio {
		t.Errorf("song.flac classified %v, want audio", audio.Kind)
	}
	if audio.Name != "song.flac" {
		t.Errorf("Name = %q", audio.Name)
	}
}

func TestSelectFromDialog(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantNil  bool
		wantKind api.MediaKind
		wantErr  bool
	}{
		{name: "unknown extension falls back to audio", path: "/media/file.xyz", wantKind: api.KindAudio},
		{name: "video", path: "/media/movie.webm", wantKind: api.KindVideo},
		{name: "cancelled", err: playerrors.ErrCancelled, wantNil: true},
		{name: "dialog failure", err: errors.New("no display"), wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			opener := mocks.NewMockFileOpener(ctrl)
			opener.EXPECT().
				OpenFile(gomock.Any(), SupportedExtensions()).
				Return(tt.path, tt.err)

			res, err := NewSelector(zap.NewNop()).SelectFromDialog(context.Background(), opener)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantNil {
				if res != nil {
					t.Errorf("expected no resource, got %+v", res)
				}
				return
			}
			if res == nil {
				t.Fatal("expected a resource")
			}
			if res.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", res.Kind, tt.wantKind)
			}
			if res.Locator != tt.path {
				t.Errorf("Locator = %q, want %q", res.Locator, tt.path)
			}
		})
	}
}

func TestDecodeDrop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Song.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		pasted  string
		wantErr bool
	}{
		{"plain", path, false},
		{"single quoted", "'" + path + "'", false},
		{"double quoted with newline", "\"" + path + "\"\n", false},
		{"escaped spaces", strings.ReplaceAll(path, " ", `\ `), false},
		{"file uri", "file://" + strings.ReplaceAll(path, " ", "%20"), false},
		{"missing", filepath.Join(dir, "gone.mp3"), true},
		{"directory", dir, true},
		{"empty", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locator, filename, err := DecodeDrop(tt.pasted)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeDrop(%q) err = %v, wantErr %v", tt.pasted, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if locator != path {
				t.Errorf("locator = %q, want %q", locator, path)
			}
			if filename != "My Song.mp3" {
				t.Errorf("filename = %q", filename)
			}
		})
	}
}

func TestDataURL(t *testing.T) {
	got, err := DataURL(strings.NewReader("hi"), "a.wav")
	if err != nil {
		t.Fatal(err)
	}
	if got != "data:audio/wav;base64,aGk=" {
		t.Errorf("DataURL = %q", got)
	}
}

func TestZenityArgs(t *testing.T) {
	z := &ZenityOpener{Path: "zenity", Title: "Open"}
	args := z.Args([]string{"mp4", "mp3"})
	want := "--file-filter=Media Files | *.mp4 *.mp3"
	if args[len(args)-1] != want {
		t.Errorf("filter arg = %q, want %q", args[len(args)-1], want)
	}
}

func TestReadTitleFallsBackToName(t *testing.T) {
	res := &api.MediaResource{Locator: "/does/not/exist.mp3", Kind: api.KindAudio, Name: "exist.mp3"}
	if got := ReadTitle(res); got != "exist.mp3" {
		t.Errorf("ReadTitle = %q", got)
	}
	if got := ReadTitle(nil); got != "" {
		t.Errorf("ReadTitle(nil) = %q", got)
	}
}
