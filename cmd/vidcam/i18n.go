// Package main provides localization for the vidcam CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Stream":  "ストリーム",
		"Capture": "キャプチャ",
		"Logging": "ログ",

		// Root command
		"Watch a camera stream and record a timelapse": "カメラ映像を監視してタイムラプスを記録",

		// Commands
		"Start capturing from the camera stream":    "カメラストリームからキャプチャを開始",
		"Compile captured frames into an MP4":       "キャプチャしたフレームをMP4に変換",
		"Manage the settings file":                  "設定ファイルを管理",
		"Write a settings file with default values": "デフォルト値で設定ファイルを作成",
		"Print the effective settings":              "有効な設定を表示",

		// Flags
		"Settings file path":                                "設定ファイルのパス",
		"Camera stream URL":                                 "カメラストリームのURL",
		"Decoded frame width":                               "デコード後のフレーム幅",
		"Decoded frame height":                              "デコード後のフレーム高さ",
		"Check the stream delivers a frame before starting": "開始前にストリームからフレームを受信できるか確認",
		"Directory for captured frames":                     "キャプチャ画像の保存先ディレクトリ",
		"Do not write the preview image":                    "プレビュー画像を書き出さない",
		"Log level (debug, info, warn, error)":              "ログレベル (debug, info, warn, error)",
		"Suppress all log output":                           "すべてのログ出力を抑制",
		"Directory for the compiled video":                  "動画の出力先ディレクトリ",
		"Timelapse frame rate":                              "タイムラプスのフレームレート",
		"Overwrite an existing file":                        "既存のファイルを上書き",

		// Output
		"Error: %v":               "エラー: %v",
		"Output saved to %s":      "出力を %s に保存しました",
		"%d frames, %s":           "%d フレーム, %s",
		"Settings written to %s":  "設定を %s に書き込みました",
		"Probing %s (attempt %d)": "%s を確認中 (試行 %d)",
	})
}
