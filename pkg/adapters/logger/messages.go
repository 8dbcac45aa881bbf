package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration
		"Starting pipeline":               "パイプラインを開始します",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",
		"Pipeline stopped":                "パイプラインを停止しました",
		"%s loop exited: %v":              "%s ループが終了しました: %v",
		"Compiling timelapse from %s":     "%s からタイムラプスを作成中",
		"No captures to compile":          "変換するキャプチャがありません",
		"Failed to compile timelapse: %v": "タイムラプスの作成に失敗しました: %v",
		"Output saved to %s":              "出力を %s に保存しました",
		"Summary saved to %s":             "サマリーを %s に保存しました",
		"Failed to write summary: %v":     "サマリーの書き込みに失敗しました: %v",

		// Decoder
		"Starting stream %s at %dx%d (%s)":      "ストリーム %s を %dx%d (%s) で開始",
		"Launching decoder (attempt %d)":        "デコーダーを起動中 (試行 %d)",
		"Stream connected":                      "ストリームに接続しました",
		"Session %d produced %d frames":         "セッション %d: %d フレーム",
		"Stream failed: %v; reconnecting in %s": "ストリームが失敗しました: %v。%s 後に再接続します",
		"Stream supervisor stopped":             "ストリーム監視を停止しました",

		// Capture
		"Capturing every %s into %s":                    "%s ごとに %s へキャプチャします",
		"First frame received":                          "最初のフレームを受信しました",
		"Saved %s":                                      "%s を保存しました",
		"Capture failed (%d/%d): %v":                    "キャプチャに失敗しました (%d/%d): %v",
		"Capture stopped after %d consecutive failures": "%d 回連続で失敗したためキャプチャを停止しました",
		"Capture scheduler stopped":                     "キャプチャを停止しました",

		// Preview
		"Writing preview to %s":     "プレビューを %s に書き出します",
		"Preview render failed: %v": "プレビューの描画に失敗しました: %v",

		// Timelapse
		"Compiling %d frames at %.1f fps":        "%d フレームを %.1f fps で変換中",
		"Encoded frame %d/%d":                    "フレームをエンコード中 %d/%d",
		"Could not inspect %s: %v":               "%s を解析できませんでした: %v",
		"Timelapse saved to %s (%d samples, %s)": "タイムラプスを %s に保存しました (%d サンプル, %s)",
	})
}
