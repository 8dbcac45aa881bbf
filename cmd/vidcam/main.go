// Package main provides the CLI entry point for vidcam.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/vidcam/pkg/adapters/ffmpeg"
	"github.com/user/vidcam/pkg/adapters/ggrenderer"
	"github.com/user/vidcam/pkg/adapters/logger"
	"github.com/user/vidcam/pkg/adapters/osfilesystem"
	"github.com/user/vidcam/pkg/adapters/snapshotsink"
	"github.com/user/vidcam/pkg/capture"
	"github.com/user/vidcam/pkg/config"
	"github.com/user/vidcam/pkg/decoder"
	"github.com/user/vidcam/pkg/distributor"
	"github.com/user/vidcam/pkg/framer"
	"github.com/user/vidcam/pkg/orchestrator"
	"github.com/user/vidcam/pkg/pipeline"
	"github.com/user/vidcam/pkg/ports"
	"github.com/user/vidcam/pkg/preview"
	"github.com/user/vidcam/pkg/summarizer"
	"github.com/user/vidcam/pkg/timelapse"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   config.DefaultPath,
		Usage:   l10n.T("Settings file path"),
	}

	return &cli.App{
		Name:    "vidcam",
		Usage:   l10n.T("Watch a camera stream and record a timelapse"),
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  l10n.T("Start capturing from the camera stream"),
				Action: runAction,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "url", Usage: l10n.T("Camera stream URL"), Category: l10n.T("Stream")},
					&cli.IntFlag{Name: "width", Usage: l10n.T("Decoded frame width"), Category: l10n.T("Stream")},
					&cli.IntFlag{Name: "height", Usage: l10n.T("Decoded frame height"), Category: l10n.T("Stream")},
					&cli.BoolFlag{Name: "probe", Usage: l10n.T("Check the stream delivers a frame before starting"), Category: l10n.T("Stream")},
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: l10n.T("Directory for captured frames"), Category: l10n.T("Capture")},
					&cli.BoolFlag{Name: "no-preview", Usage: l10n.T("Do not write the preview image"), Category: l10n.T("Capture")},
					&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
				},
			},
			{
				Name:   "timelapse",
				Usage:  l10n.T("Compile captured frames into an MP4"),
				Action: timelapseAction,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: l10n.T("Directory for captured frames")},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Directory for the compiled video")},
					&cli.Float64Flag{Name: "fps", Usage: l10n.T("Timelapse frame rate")},
				},
			},
			{
				Name:  "config",
				Usage: l10n.T("Manage the settings file"),
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  l10n.T("Write a settings file with default values"),
						Action: configInitAction,
						Flags: []cli.Flag{
							configFlag,
							&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: l10n.T("Overwrite an existing file")},
						},
					},
					{
						Name:   "show",
						Usage:  l10n.T("Print the effective settings"),
						Action: configShowAction,
						Flags:  []cli.Flag{configFlag},
					},
				},
			},
		},
	}
}

// loadConfig reads the settings file and applies command-line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("url") {
		cfg.URL = c.String("url")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("dir") {
		cfg.CaptureDir = c.String("dir")
	}
	if c.IsSet("output") {
		cfg.TimelapseDir = c.String("output")
	}
	if c.IsSet("fps") {
		cfg.TimelapseFPS = c.Float64("fps")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.FFmpegPath != "" {
		ffmpeg.SetFFmpegPath(cfg.FFmpegPath)
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

func compileStage(compiler *timelapse.Compiler) pipeline.Stage[pipeline.CompileInput, timelapse.Result] {
	return pipeline.StageFunc[pipeline.CompileInput, timelapse.Result](func(ctx context.Context, in pipeline.CompileInput) (timelapse.Result, error) {
		return compiler.Compile(ctx, in.FramesDir, in.OutputDir)
	})
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	if _, err := ffmpeg.FindFFmpeg(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := ffmpeg.NewSource()
	if c.Bool("probe") {
		if err := probe(ctx, source, cfg.ToDecoderOptions(), log); err != nil {
			return err
		}
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	dist := distributor.New(distributor.DefaultCapacity)

	dec, err := decoder.New(source, dist, cfg.ToDecoderOptions(), log)
	if err != nil {
		return err
	}

	sink := snapshotsink.New(fs, renderer, snapshotsink.Options{
		Quality: cfg.JPEGQuality,
		Stamp:   cfg.StampTime,
	})
	capt := capture.New(dist.Subscribe(), sink, cfg.CaptureDir, log, cfg.ToCaptureOptions())

	components := orchestrator.Components{
		Decoder: dec,
		Capture: capt,
		Compile: compileStage(timelapse.New(fs, renderer, ffmpeg.NewEncoder(), log, cfg.ToTimelapseOptions())),
		Summary: summarizer.NewWriter(summarizer.NewMarkdownFormatter(), fs),
	}
	if !c.Bool("no-preview") {
		components.Preview = preview.New(dist.Subscribe(), renderer, fs, log, cfg.ToPreviewOptions())
	}

	orch := orchestrator.New(components, orchestrator.Config{
		URL:          cfg.URL,
		Width:        cfg.Width,
		Height:       cfg.Height,
		CaptureDir:   cfg.CaptureDir,
		TimelapseDir: cfg.TimelapseDir,
		AutoCompile:  cfg.AutoCompile,
		SummaryPath:  filepath.Join(cfg.CaptureDir, "summary.md"),
	}, log)

	_, err = orch.Run(ctx)
	return err
}

// probe opens the stream and reads one frame, retrying a few times.
func probe(ctx context.Context, source ports.StreamSource, opts decoder.Options, log ports.Logger) error {
	f, err := framer.New(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return err
	}

	attempt := 0
	err = decoder.ConnectWithRetry(ctx, func(ctx context.Context) error {
		attempt++
		log.Info("Probing %s (attempt %d)", opts.URL, attempt)

		stream, err := source.Open(ctx, opts.SourceOptions())
		if err != nil {
			return err
		}
		defer stream.Close()

		_, err = f.Next(stream)
		return err
	}, 3, 2*time.Second)
	if err != nil {
		return fmt.Errorf("probe %s: %w", opts.URL, err)
	}

	log.Info("Stream connected")
	return nil
}

func timelapseAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	compiler := timelapse.New(osfilesystem.New(), ggrenderer.New(), ffmpeg.NewEncoder(), log, cfg.ToTimelapseOptions())
	result, err := compiler.Compile(c.Context, cfg.CaptureDir, cfg.TimelapseDir)
	if errors.Is(err, timelapse.ErrNoFrames) {
		return fmt.Errorf("%w in %s", err, cfg.CaptureDir)
	}
	if err != nil {
		return err
	}

	fmt.Println(l10n.F("Output saved to %s", result.Path))
	fmt.Println(l10n.F("%d frames, %s", result.Frames, result.Info.Duration.Round(time.Millisecond)))
	return nil
}

func configInitAction(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveToFile(config.Defaults(), path); err != nil {
		return err
	}
	fmt.Println(l10n.F("Settings written to %s", path))
	return nil
}

func configShowAction(c *cli.Context) error {
	cfg, err := config.LoadFromFile(c.String("config"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
