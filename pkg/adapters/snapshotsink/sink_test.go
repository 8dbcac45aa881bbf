package snapshotsink

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/vidcam/pkg/adapters/ggrenderer"
	"github.com/user/vidcam/pkg/adapters/osfilesystem"
	"github.com/user/vidcam/pkg/mocks"
	"github.com/user/vidcam/pkg/ports"
)

var testDir = filepath.Join("captures")

func testFrame() ports.Frame {
	data := make([]byte, 4*4*4)
	for i := range data {
		data[i] = byte(i)
	}
	return ports.Frame{Data: data, Width: 4, Height: 4, Format: ports.PixelRGBA}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 1, 31, 9, 45, 12, 83*int(time.Millisecond)+999, time.UTC)
	if got := FileName(ts); got != "20240131_094512_083" {
		t.Errorf("FileName = %q, want 20240131_094512_083", got)
	}
}

func TestSink_SaveCreatesDirAndWritesJPEG(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	sink := New(fs, renderer, Options{})
	sink.now = fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 5*int(time.Millisecond), time.Local))

	path, err := sink.Save(testFrame(), testDir)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	want := filepath.Join(testDir, "20240501_120000_005.jpg")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if ok, _ := fs.Exists(testDir); !ok {
		t.Error("expected capture dir to be created")
	}
	if _, ok := fs.GetFile(want); !ok {
		t.Errorf("expected file at %s", want)
	}

	encoded := renderer.EncodedImages()
	if len(encoded) != 1 {
		t.Fatalf("expected 1 encoded image, got %d", len(encoded))
	}
	if b := encoded[0].Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("encoded bounds = %v, want 4x4", b)
	}
}

func TestSink_SameMillisecondGetsSuffix(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(fs, &mocks.Renderer{}, Options{})
	sink.now = fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local))

	var paths []string
	for i := 0; i < 3; i++ {
		p, err := sink.Save(testFrame(), testDir)
		if err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		paths = append(paths, filepath.Base(p))
	}

	want := []string{"20240501_120000_000.jpg", "20240501_120000_000-1.jpg", "20240501_120000_000-2.jpg"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if n := len(fs.GetAllFiles()); n != 3 {
		t.Errorf("expected 3 files, got %d", n)
	}
}

func TestSink_MkdirError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(string) error { return errors.New("read-only file system") }
	sink := New(fs, &mocks.Renderer{}, Options{})

	if _, err := sink.Save(testFrame(), testDir); err == nil || !strings.Contains(err.Error(), "create capture dir") {
		t.Errorf("expected create capture dir error, got %v", err)
	}
}

func TestSink_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(string, []byte) error { return errors.New("no space left on device") }
	sink := New(fs, &mocks.Renderer{}, Options{})

	if _, err := sink.Save(testFrame(), testDir); err == nil || !strings.Contains(err.Error(), "write capture") {
		t.Errorf("expected write capture error, got %v", err)
	}
}

func TestSink_EncodeError(t *testing.T) {
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(image.Image, ports.ImageFormat, int) ([]byte, error) {
			return nil, errors.New("bad image")
		},
	}
	sink := New(mocks.NewFileSystem(), renderer, Options{})

	if _, err := sink.Save(testFrame(), testDir); err == nil || !strings.Contains(err.Error(), "encode capture") {
		t.Errorf("expected encode capture error, got %v", err)
	}
}

func TestSink_QualityDefault(t *testing.T) {
	var gotQuality int
	var gotFormat ports.ImageFormat = -1
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(_ image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			gotFormat, gotQuality = format, quality
			return []byte{1}, nil
		},
	}
	sink := New(mocks.NewFileSystem(), renderer, Options{})
	if _, err := sink.Save(testFrame(), testDir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if gotFormat != ports.FormatJPEG || gotQuality != DefaultQuality {
		t.Errorf("encoded with format=%v quality=%d", gotFormat, gotQuality)
	}
}

func TestSink_StampDrawsCaptureTime(t *testing.T) {
	renderer := &mocks.Renderer{}
	sink := New(mocks.NewFileSystem(), renderer, Options{Stamp: true})
	sink.now = fixedClock(time.Date(2024, 5, 1, 8, 30, 15, 0, time.Local))

	if _, err := sink.Save(testFrame(), testDir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(renderer.Canvases) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(renderer.Canvases))
	}
	texts := renderer.Canvases[0].Texts
	if len(texts) != 1 || texts[0] != "2024-05-01 08:30:15" {
		t.Errorf("stamped texts = %v", texts)
	}
}

func TestSink_WithRealAdapters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "captures")
	sink := New(osfilesystem.New(), ggrenderer.New(), Options{Stamp: true})

	path, err := sink.Save(testFrame(), dir)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("expected JPEG SOI marker")
	}
}
