package averror

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		"No transcoding options specified!":      "トランスコードのオプションが指定されていません",
		"An error occurred in the native layer!": "ネイティブ層でエラーが発生しました",
		"The native layer ran out of memory!":    "ネイティブ層でメモリが不足しました",
		"The transcoding session was aborted!":   "トランスコードセッションが中断されました",
	})
}
