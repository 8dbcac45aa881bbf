package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/user/vidcam/pkg/ports"
)

// BuildDecodeArgs returns the ffmpeg arguments that turn opts.URL into
// concatenated raw frames of opts.Width x opts.Height on stdout.
// RTSP sources are pulled over TCP.
func BuildDecodeArgs(opts ports.SourceOptions) []string {
	args := []string{"-nostdin", "-hide_banner", "-loglevel", "quiet"}

	if isRTSP(opts.URL) {
		args = append(args, "-rtsp_transport", "tcp")
	}

	args = append(args,
		"-i", opts.URL,
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d", opts.Width, opts.Height),
		"-f", "rawvideo",
		"-pix_fmt", opts.Format.FFmpegName(),
		"pipe:1",
	)
	return args
}

// BuildEncodeArgs returns the ffmpeg arguments that read raw RGBA frames from
// stdin and write an H.264 MP4 to outputPath.
func BuildEncodeArgs(width, height int, fps float64, opts ports.EncoderOptions, outputPath string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%.2f", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
	}

	// Our 0-63 quality scale maps onto x264's 0-51 CRF.
	if opts.Quality > 0 && opts.Quality <= 63 {
		args = append(args, "-crf", fmt.Sprintf("%d", opts.Quality*51/63))
	} else {
		args = append(args, "-crf", "23")
	}

	if opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	}

	return append(args,
		"-movflags", "+faststart",
		outputPath,
	)
}

func isRTSP(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "rtsp://") || strings.HasPrefix(lower, "rtsps://")
}
