package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/vidcam/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(base image.Image) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu       sync.Mutex
	Encoded  []image.Image
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(base image.Image) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(base)
	}
	c := &Canvas{base: base}
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	m.mu.Lock()
	m.Encoded = append(m.Encoded, img)
	m.mu.Unlock()
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// EncodedImages returns the images passed to EncodeImage (for test verification).
func (m *Renderer) EncodedImages() []image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]image.Image(nil), m.Encoded...)
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas that records text draws.
type Canvas struct {
	base  image.Image
	Texts []string
}

func (m *Canvas) DrawRoundedRect(x, y, w, h, radius int, c color.Color) {}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.Texts = append(m.Texts, text)
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len(text) * 7), 13
}

func (m *Canvas) ToImage() image.Image {
	return m.base
}

var _ ports.Canvas = (*Canvas)(nil)
