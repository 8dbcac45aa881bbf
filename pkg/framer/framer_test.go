package framer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/user/vidcam/pkg/ports"
)

func collect(t *testing.T, f *Framer, r io.Reader) ([]ports.Frame, error) {
	t.Helper()
	var frames []ports.Frame
	_, err := f.Run(context.Background(), r, func(fr ports.Frame) {
		frames = append(frames, fr)
	})
	return frames, err
}

// pattern returns n bytes where byte i is i mod 251, so frames differ.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestNew_RejectsBadDimensions(t *testing.T) {
	_, err := New(0, 10, ports.PixelRGBA)
	require.ErrorIs(t, err, ports.ErrFrameDimensions)

	_, err = New(10, -1, ports.PixelRGBA)
	require.ErrorIs(t, err, ports.ErrFrameDimensions)
}

func TestFrameSize(t *testing.T) {
	f, err := New(640, 480, ports.PixelRGBA)
	require.NoError(t, err)
	require.Equal(t, 640*480*4, f.FrameSize())
}

func TestRun_ExactMultiple(t *testing.T) {
	f, err := New(3, 2, ports.PixelRGBA)
	require.NoError(t, err)

	const n = 7
	stream := pattern(f.FrameSize() * n)

	frames, err := collect(t, f, bytes.NewReader(stream))
	require.ErrorIs(t, err, io.EOF)
	require.Len(t, frames, n)

	for i, fr := range frames {
		require.Equal(t, 3, fr.Width)
		require.Equal(t, 2, fr.Height)
		want := stream[i*f.FrameSize() : (i+1)*f.FrameSize()]
		require.Equal(t, want, fr.Data, "frame %d out of order or corrupted", i)
	}
}

func TestRun_OneByteReadsMatchContiguous(t *testing.T) {
	f, err := New(4, 3, ports.PixelBGRA)
	require.NoError(t, err)

	stream := pattern(f.FrameSize() * 5)

	whole, err := collect(t, f, bytes.NewReader(stream))
	require.ErrorIs(t, err, io.EOF)

	trickled, err := collect(t, f, iotest.OneByteReader(bytes.NewReader(stream)))
	require.ErrorIs(t, err, io.EOF)

	require.Equal(t, whole, trickled)
}

func TestRun_HalfReadsMatchContiguous(t *testing.T) {
	f, err := New(5, 5, ports.PixelRGBA)
	require.NoError(t, err)

	stream := pattern(f.FrameSize() * 3)

	whole, _ := collect(t, f, bytes.NewReader(stream))
	halves, _ := collect(t, f, iotest.HalfReader(bytes.NewReader(stream)))
	require.Equal(t, whole, halves)
}

func TestRun_SingleFrameE2E(t *testing.T) {
	f, err := New(1, 1, ports.PixelRGBA)
	require.NoError(t, err)

	frames, err := collect(t, f, bytes.NewReader([]byte{10, 20, 30, 40}))
	require.ErrorIs(t, err, io.EOF)
	require.Len(t, frames, 1)
	require.Equal(t, []byte{10, 20, 30, 40}, frames[0].Data)
	require.Equal(t, 1, frames[0].Width)
	require.Equal(t, 1, frames[0].Height)
}

func TestRun_TruncatedFinalFrame(t *testing.T) {
	f, err := New(2, 2, ports.PixelRGBA)
	require.NoError(t, err)

	stream := pattern(f.FrameSize()*2 + 5)

	frames, err := collect(t, f, bytes.NewReader(stream))
	require.ErrorIs(t, err, ErrShortFrame)
	require.Len(t, frames, 2)
}

func TestRun_EmptyStream(t *testing.T) {
	f, err := New(2, 2, ports.PixelRGBA)
	require.NoError(t, err)

	frames, err := collect(t, f, bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
	require.Empty(t, frames)
}

func TestRun_ReadError(t *testing.T) {
	f, err := New(2, 2, ports.PixelRGBA)
	require.NoError(t, err)

	boom := errors.New("pipe broke")
	_, err = collect(t, f, iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	f, err := New(1, 1, ports.PixelRGBA)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := f.Run(ctx, bytes.NewReader(pattern(40)), func(ports.Frame) {})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, n)
}

func TestRun_FramesDoNotAlias(t *testing.T) {
	f, err := New(1, 1, ports.PixelRGBA)
	require.NoError(t, err)

	frames, _ := collect(t, f, bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.Len(t, frames, 2)

	frames[0].Data[0] = 99
	require.Equal(t, byte(5), frames[1].Data[0])
}
