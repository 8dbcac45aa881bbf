//go:build !windows

package ports

// NativePixelFormat is the packed layout requested from the decoder on this platform.
const NativePixelFormat = PixelRGBA
