//go:build windows

package ports

// NativePixelFormat is the packed layout requested from the decoder on this platform.
// The Windows ffmpeg builds hand back BGRA natively.
const NativePixelFormat = PixelBGRA
