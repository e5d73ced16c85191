package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestrator
		"Processing %s (window %.1fs + %.1fs)":           "%s を処理中 (区間 %.1f秒 + %.1f秒)",
		"Source duration: %.2fs":                         "ソースの長さ: %.2f秒",
		"Source duration unknown":                        "ソースの長さは不明です",
		"Seeking to %.2fs":                               "%.2f秒 へシーク中",
		"Source geometry: %dx%d %s":                      "ソースの形状: %dx%d %s",
		"Resolved %d regions":                            "%d 個の領域を解決しました",
		"No regions resolved, nothing to do":             "領域が見つからないため、処理を終了します",
		"Limiting lanes to %d":                           "レーン数を %d に制限します",
		"Region %s clamped to %s":                        "領域 %s を %s に切り詰めました",
		"Lane %d: %s -> %s":                              "レーン %d: %s -> %s",
		"Lane %d (%s) disabled: %s":                      "レーン %d (%s) を無効化しました: %s",
		"Streaming %d lanes":                             "%d レーンをストリーミング中",
		"Processed %d frames (%.2fs)":                    "%d フレームを処理しました (%.2f秒)",
		"Window end reached at %.2fs":                    "%.2f秒 で区間の終わりに達しました",
		"Source ended at %.2fs":                          "%.2f秒 でソースが終了しました",
		"Interrupted at %.2fs":                           "%.2f秒 で中断されました",
		"Wrote %s: %d frames":                            "%s を書き込みました: %d フレーム",
		"Completed %d of %d lanes":                       "%d / %d レーンが完了しました",
		"Interrupted, shutting down...":                  "中断されました。シャットダウン中...",
		"Skipping region line %d: %s":                    "領域ファイルの %d 行目をスキップします: %s",
		"Loaded %d regions from %s":                      "%s から %d 個の領域を読み込みました",
		"Failed to write debug output: %s":               "デバッグ出力の書き込みに失敗しました: %s",
		"Failed to write summary: %s":                    "サマリーの書き込みに失敗しました: %s",
		"Failed to write metrics: %s":                    "メトリクスの書き込みに失敗しました: %s",
		"Summary saved to %s":                            "サマリーを %s に保存しました",
		"Failed to probe %s: %s":                         "%s の解析に失敗しました: %s",
		"Lane %s: %d frames, %.2fs":                      "レーン %s: %d フレーム, %.2f秒",

		"Lane %s: %d samples, %.2fs":                    "レーン %s: %d サンプル, %.2f秒",
		"Preview rendered at %dx%d with %d regions":     "プレビューを %dx%d で描画しました (領域 %d 個)",
		"Metrics written to %s":                          "メトリクスを %s に書き込みました",

		// Errors
		"Failed to open source: %s":                 "ソースを開けませんでした: %s",
		"Failed to decode source: %s":               "ソースのデコードに失敗しました: %s",
		"Failed to load regions: %s":                "領域の読み込みに失敗しました: %s",
		"Failed to build frame router: %s":          "フレームルーターの構築に失敗しました: %s",
		"Failed to close frame router: %s":          "フレームルーターを閉じられませんでした: %s",
		"Failed to close source: %s":                "ソースを閉じられませんでした: %s",
		"Failed to finalize %s: %s":                 "%s の書き出しを完了できませんでした: %s",
		"Failed to render preview: %s":              "プレビューの描画に失敗しました: %s",
		"Failed to build lane reports: %s":          "レーンレポートの作成に失敗しました: %s",
		"Dropping invalid region %s":                "不正な領域 %s を破棄します",
		"Region %s lies outside the frame, dropped": "領域 %s はフレーム外のため破棄しました",
		"Lane %s: cannot stat %s: %v":               "レーン %s: %s の情報を取得できません: %v",
		"Lane %s: cannot probe %s: %v":              "レーン %s: %s を解析できません: %v",
	})
}
