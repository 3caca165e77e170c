package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// CLI level messages (info)
		"Transcoding %s to %s":          "%s を %s にトランスコード中",
		"Output saved to %s (%d bytes)": "出力を %s に保存しました (%d バイト)",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Using ffmpeg at %s":            "ffmpeg を使用します: %s",

		// Transcoder (component, debug)
		"Session started: format %s, audio %s, video %s": "セッション開始: フォーマット %s, 音声 %s, 映像 %s",
		"Input complete after %d chunks":                 "%d チャンクで入力が完了しました",
		"Engine finished: %d bytes in, %d bytes out":     "エンジン完了: 入力 %d バイト, 出力 %d バイト",
		"Session cancelled, aborting engine":             "セッションがキャンセルされました。エンジンを中断します",
		"Ignoring drain without a pending chunk":         "保留中のチャンクがないドレインを無視します",
		"Ignoring unknown engine event %s":               "不明なエンジンイベント %s を無視します",

		// Engine (component, debug)
		"Starting ffmpeg: %s":  "ffmpeg を起動中: %s",
		"ffmpeg exited: %s":    "ffmpeg が終了しました: %s",
		"Output tracks: %s":    "出力トラック: %s",
		"Fragment %d complete": "フラグメント %d が完了しました",

		// Stages (debug)
		"Failed to close input after session end: %s": "セッション終了後に入力を閉じられませんでした: %s",

		// Warnings
		"Failed to save debug chunk %d: %s":      "デバッグチャンク %d の保存に失敗しました: %s",
		"Failed to release engine: %s":           "エンジンの解放に失敗しました: %s",
		"Output scanner stopped: %s":             "出力スキャナが停止しました: %s",
		"Failed to remove partial output %s: %s": "不完全な出力 %s を削除できませんでした: %s",
		"Failed to write summary: %s":            "サマリーを書き出せませんでした: %s",

		// Errors
		"Transcoding failed: %s":      "トランスコードに失敗しました: %s",
		"Failed to open input: %s":    "入力を開けませんでした: %s",
		"Failed to create output: %s": "出力を作成できませんでした: %s",
	})
}
