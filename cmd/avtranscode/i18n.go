// Package main provides localization for the avtranscode CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":  "出力",
		"Audio":   "音声",
		"Video":   "映像",
		"Session": "セッション",
		"Debug":   "デバッグ",
		"Logging": "ログ",

		// Root command
		"Transcode audio and video streams with ffmpeg": "ffmpeg で音声・映像ストリームをトランスコード",
		"Expected an input and an output path":          "入力パスと出力パスを指定してください",
		"Error: %s":                                     "エラー: %s",

		// Output flags
		"Output container format (default: mp4)": "出力コンテナ形式（デフォルト: mp4）",
		"Output filename hint":                   "出力ファイル名のヒント",
		"Output MIME type hint":                  "出力MIMEタイプのヒント",

		// Audio flags
		"Drop the audio stream":                    "音声ストリームを除外",
		"Audio codec (default: pcm_s16le)":         "音声コーデック（デフォルト: pcm_s16le）",
		"Audio sample rate in Hz (default: 44100)": "音声サンプルレート Hz（デフォルト: 44100）",
		"Audio channel layout (default: STEREO)":   "音声チャンネルレイアウト（デフォルト: STEREO）",
		"Audio volume, 256 is unity gain":          "音量（256 で等倍）",

		// Video flags
		"Drop the video stream":                                     "映像ストリームを除外",
		"Video codec (default: mp4)":                                "映像コーデック（デフォルト: mp4）",
		"Video frame rate (default: 30)":                            "映像フレームレート（デフォルト: 30）",
		"Video frame size, e.g. 720p or 1280x720 (default: 1080p)": "映像フレームサイズ、例: 720p や 1280x720（デフォルト: 1080p）",
		"Display aspect ratio (default: 16:9)":                      "表示アスペクト比（デフォルト: 16:9）",

		// Session flags
		"Option preset (default, audio, video, web)":  "オプションプリセット（default, audio, video, web）",
		"YAML options file, applied over the preset":  "YAML オプションファイル（プリセットに上書き）",
		"Output bytes buffered ahead of the writer":   "書き込み前にバッファする出力バイト数",
		"Input read size in bytes":                    "入力の読み込みサイズ（バイト）",
		"Path to the ffmpeg binary":                   "ffmpeg バイナリのパス",
		"Keep the output file when transcoding fails": "トランスコード失敗時に出力ファイルを残す",
		"Write a job summary (.md or .yaml)":          "ジョブのサマリーを書き出す（.md または .yaml）",

		// Debug flags
		"Save every chunk crossing the engine boundary": "エンジンとやり取りする全チャンクを保存",
		"Directory for debug output":                    "デバッグ出力ディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output and progress": "すべてのログと進捗表示を抑制",
	})
}
