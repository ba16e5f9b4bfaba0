package media

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jscyril/mediashell/api"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"go.uber.org/zap"
)

// fakeMPV answers commands on a unix socket the way mpv does
type fakeMPV struct {
	ln       net.Listener
	received chan []any

	mu   sync.Mutex
	conn net.Conn
	up   chan struct{}
}

func startFakeMPV(t *testing.T) (*fakeMPV, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "msmpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "mpv.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	f := &fakeMPV{ln: ln, received: make(chan []any, 64), up: make(chan struct{})}
	go f.serve()
	return f, path
}

func (f *fakeMPV) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	close(f.up)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		f.received <- req.Command

		reply := map[string]any{"error": "success", "request_id": req.RequestID}
		if len(req.Command) == 2 && req.Command[0] == "get_property" {
			switch req.Command[1] {
			case "volume":
				reply["data"] = 80.0
			default:
				reply["error"] = "property not found"
			}
		}
		f.write(reply)
	}
}

func (f *fakeMPV) write(v any) {
	line, _ := json.Marshal(v)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conn.Write(append(line, '\n'))
}

func (f *fakeMPV) push(name string, data any) {
	<-f.up
	f.write(map[string]any{"event": "property-change", "id": 1, "name": name, "data": data})
}

// expect waits for a command whose first element is name
func (f *fakeMPV) expect(t *testing.T, name string) []any {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case cmd := <-f.received:
			if len(cmd) > 0 && cmd[0] == name {
				return cmd
			}
		case <-timeout:
			t.Fatalf("mpv never received %q", name)
			return nil
		}
	}
}

func dialFake(t *testing.T) (*fakeMPV, *ipcClient) {
	t.Helper()
	f, path := startFakeMPV(t)
	client, err := dialIPC(t.Context(), path)
	if err != nil {
		t.Fatalf("dialIPC() error = %v", err)
	}
	return f, client
}

func TestIPCCommand(t *testing.T) {
	_, client := dialFake(t)
	done := make(chan error, 1)
	go func() { done <- client.readLoop() }()

	data, err := client.Command(t.Context(), "get_property", "volume")
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if string(data) != "80" {
		t.Errorf("volume data = %s, want 80", data)
	}

	_, err = client.Command(t.Context(), "get_property", "bogus")
	var ipcErr *playerrors.IPCError
	if !errors.As(err, &ipcErr) {
		t.Fatalf("Command() error = %v, want IPCError", err)
	}
	if ipcErr.Reason != "property not found" {
		t.Errorf("Reason = %q", ipcErr.Reason)
	}

	client.Close()
	if err := <-done; err != nil {
		t.Errorf("readLoop() error = %v", err)
	}
	if _, err := client.Command(t.Context(), "get_property", "volume"); err == nil {
		t.Error("Command() after close should fail")
	}
}

func TestVideoElementFollowsProperties(t *testing.T) {
	f, client := dialFake(t)
	res := &api.MediaResource{Locator: "clip.mp4", Kind: api.KindVideo, Name: "clip.mp4"}
	e := newVideoElement(res, zap.NewNop())
	sub := e.Events().SubscribeAll()
	e.attach(t.Context(), client)
	defer e.Close()

	for range observedProperties {
		f.expect(t, "observe_property")
	}

	f.push("duration", 10.0)
	ev := nextEvent(t, sub.C(), api.EventTimeUpdate)
	if !ev.DurationOK || ev.Duration != 10*time.Second {
		t.Errorf("duration event = %+v", ev)
	}

	f.push("time-pos", 2.5)
	ev = nextEvent(t, sub.C(), api.EventTimeUpdate)
	if ev.CurrentTime != 2500*time.Millisecond {
		t.Errorf("CurrentTime = %v, want 2.5s", ev.CurrentTime)
	}

	f.push("volume", 50.0)
	ev = nextEvent(t, sub.C(), api.EventVolumeChange)
	if ev.Volume != 0.5 {
		t.Errorf("Volume = %v, want 0.5", ev.Volume)
	}

	f.push("mute", true)
	ev = nextEvent(t, sub.C(), api.EventVolumeChange)
	if !ev.Muted {
		t.Error("mute event should report muted")
	}

	f.push("fullscreen", true)
	ev = nextEvent(t, sub.C(), api.EventFullscreenChange)
	if !ev.Fullscreen || !e.Fullscreen() {
		t.Error("fullscreen event should report fullscreen")
	}

	if err := <-e.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	cmd := f.expect(t, "set_property")
	if cmd[1] != "pause" || cmd[2] != false {
		t.Errorf("Play sent %v", cmd)
	}

	f.push("eof-reached", true)
	nextEvent(t, sub.C(), api.EventEnded)
	if !e.Paused() {
		t.Error("element should be paused after eof")
	}
}

func TestVideoElementSetters(t *testing.T) {
	f, client := dialFake(t)
	res := &api.MediaResource{Locator: "clip.webm", Kind: api.KindVideo, Name: "clip.webm"}
	e := newVideoElement(res, zap.NewNop())
	e.attach(t.Context(), client)

	for range observedProperties {
		f.expect(t, "observe_property")
	}

	if err := e.SetVolume(0.25); err != nil {
		t.Fatal(err)
	}
	if cmd := f.expect(t, "set_property"); cmd[1] != "volume" || cmd[2] != 25.0 {
		t.Errorf("SetVolume sent %v", cmd)
	}

	if err := e.SetMuted(true); err != nil {
		t.Fatal(err)
	}
	if cmd := f.expect(t, "set_property"); cmd[1] != "mute" || cmd[2] != true {
		t.Errorf("SetMuted sent %v", cmd)
	}

	if err := e.SetFullscreen(true); err != nil {
		t.Fatal(err)
	}
	if cmd := f.expect(t, "set_property"); cmd[1] != "fullscreen" || cmd[2] != true {
		t.Errorf("SetFullscreen sent %v", cmd)
	}
	if !e.Fullscreen() {
		t.Error("Fullscreen() should report the request before mpv confirms")
	}

	if err := e.SetCurrentTime(3 * time.Second); err != nil {
		t.Fatal(err)
	}
	if cmd := f.expect(t, "seek"); cmd[1] != 3.0 || cmd[2] != "absolute" {
		t.Errorf("SetCurrentTime sent %v", cmd)
	}
	if e.CurrentTime() != 3*time.Second {
		t.Errorf("CurrentTime() = %v, want optimistic 3s", e.CurrentTime())
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if err := e.SetVolume(1); !errors.Is(err, playerrors.ErrElementClosed) {
		t.Errorf("SetVolume() after Close error = %v", err)
	}
}

func TestMPVArgs(t *testing.T) {
	tests := []struct {
		name   string
		kind   api.MediaKind
		want   string
		absent string
	}{
		{"video opens a window", api.KindVideo, "--force-window=yes", "--no-video"},
		{"audio plays without one", api.KindAudio, "--no-video", "--force-window=yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := MPVArgs("/tmp/s.sock", "/media/clip", tt.kind)
			if args[len(args)-1] != "/media/clip" {
				t.Errorf("path should be last, got %v", args)
			}
			if !slices.Contains(args, "--input-ipc-server=/tmp/s.sock") {
				t.Errorf("missing ipc server flag in %v", args)
			}
			if !slices.Contains(args, tt.want) {
				t.Errorf("missing %s in %v", tt.want, args)
			}
			if slices.Contains(args, tt.absent) {
				t.Errorf("unexpected %s in %v", tt.absent, args)
			}
		})
	}
}

func TestMPVElementPlaysOpus(t *testing.T) {
	f, client := dialFake(t)
	res := &api.MediaResource{Locator: "voice.opus", Kind: api.KindAudio, Name: "voice.opus"}
	e := newVideoElement(res, zap.NewNop())
	sub := e.Events().SubscribeAll()
	e.attach(t.Context(), client)
	defer e.Close()

	for range observedProperties {
		f.expect(t, "observe_property")
	}
	if e.Kind() != api.KindAudio {
		t.Errorf("Kind() = %v, want audio", e.Kind())
	}

	if err := <-e.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if cmd := f.expect(t, "set_property"); cmd[1] != "pause" || cmd[2] != false {
		t.Errorf("Play sent %v", cmd)
	}
	if e.Paused() {
		t.Error("opus resource should be playing")
	}

	f.push("time-pos", 1.5)
	if ev := nextEvent(t, sub.C(), api.EventTimeUpdate); ev.CurrentTime != 1500*time.Millisecond {
		t.Errorf("CurrentTime = %v, want 1.5s", ev.CurrentTime)
	}
}

func TestNewElementSendsUndecodableAudioToMPV(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-mpv")
	tests := []struct {
		name string
		res  *api.MediaResource
		mpv  bool
	}{
		{"opus", &api.MediaResource{Locator: "a.opus", Kind: api.KindAudio, Name: "a.opus"}, true},
		{"unknown extension", &api.MediaResource{Locator: "a.xyz", Kind: api.KindAudio, Name: "a.xyz"}, true},
		{"video", &api.MediaResource{Locator: "a.webm", Kind: api.KindVideo, Name: "a.webm"}, true},
		{"mp3", &api.MediaResource{Locator: "a.mp3", Kind: api.KindAudio, Name: "a.mp3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewElement(t.Context(), tt.res, Options{MPVPath: missing})
			if err == nil {
				t.Fatal("NewElement() should fail without mpv or an output")
			}
			var perr *playerrors.PlayerError
			gotMPV := errors.As(err, &perr) && perr.Op == "start mpv"
			if gotMPV != tt.mpv {
				t.Errorf("NewElement() error = %v, mpv route = %v, want %v", err, gotMPV, tt.mpv)
			}
		})
	}
}
