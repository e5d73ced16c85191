package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Regions":            "領域",
		"Time Window":        "時間区間",
		"Lanes and Encoding": "レーンとエンコード",
		"Output":             "出力先",
		"Debug":              "デバッグ",
		"Logging":            "ログ",
		"Inspection":         "検査",

		// Root command
		"Crop regions of a video into separate MP4 lanes": "動画の領域を切り出し、領域ごとのMP4レーンを作成",
		"lanecrop decodes a time window of a video, crops every region found in a region file, scales it to a fixed size and writes one H.264 MP4 per region.": "lanecropは動画の指定区間をデコードし、領域ファイルの各領域を切り出して固定サイズに拡縮し、領域ごとにH.264のMP4を書き出します。",
		"Show help":         "ヘルプを表示",
		"Print the version": "バージョンを表示",

		// Region flags
		"Region file, one 'x1 y1 x2 y2 score class' per line": "領域ファイル（1行に 'x1 y1 x2 y2 score class'）",
		"Left margin as a ratio of the region width":          "領域の幅に対する左余白の比率",
		"Right margin as a ratio of the region width":         "領域の幅に対する右余白の比率",
		"Top margin as a ratio of the region height":          "領域の高さに対する上余白の比率",
		"Do not clamp expanded regions to the frame":          "拡張した領域をフレーム内に切り詰めない",

		// Window flags
		"Start time in seconds": "開始時刻（秒）",
		"Duration in seconds":   "長さ（秒）",

		// Lane flags
		"Lane width in pixels":                                       "レーンの幅（ピクセル）",
		"Lane height in pixels":                                      "レーンの高さ（ピクセル）",
		"Maximum number of lanes (0 = no limit)":                     "最大レーン数（0 = 無制限）",
		"Abort when any lane encoder cannot be opened":               "いずれかのレーンのエンコーダーを開けない場合に中止",
		"Lane frame rate and keyframe interval":                      "レーンのフレームレートとキーフレーム間隔",
		"Lane bitrate in bits per second":                            "レーンのビットレート（bps）",
		"Encoder speed preset":                                       "エンコーダーの速度プリセット",
		"Encoder name (default: libx264 or the first H.264 encoder)": "エンコーダー名（デフォルト: libx264 または最初のH.264エンコーダー）",

		// Output flags
		"Directory for lane files":                           "レーンファイルの出力ディレクトリ",
		"YAML configuration file":                            "YAML設定ファイル",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",
		"Write Prometheus metrics to a textfile":             "Prometheusメトリクスをテキストファイルに出力",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Verbose output (same as --log-level debug)": "詳細出力（--log-level debug と同じ）",
		"Log level (debug, info, warn, error)":       "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                    "全てのログ出力を抑制",

		// Inspect command
		"Print the video track of MP4 files": "MP4ファイルの映像トラックを表示",
		"Print one JSON object per file":     "ファイルごとにJSONオブジェクトを出力",
		"Codec":                              "コーデック",
		"Frames":                             "フレーム数",
		"keyframes":                          "キーフレーム",
		"Timestamps":                         "タイムスタンプ",
		"Duration":                           "長さ",

		// Runtime messages
		"Interrupted, shutting down...":    "中断されました。シャットダウン中...",
		"Error: %s":                        "エラー: %s",
		"Run 'lanecrop --help' for usage.": "使い方は 'lanecrop --help' を参照してください。",

		// Summary content
		"Lane Crop Summary": "レーン切り出しサマリー",
		"Run ID":            "実行ID",
		"Status":            "状態",
		"Input":             "入力",
		"Source Duration":   "ソースの長さ",
		"Source Geometry":   "ソースの形状",
		"Window":            "区間",
		"Lane Size":         "レーンサイズ",
		"Encoder":           "エンコーダー",
		"Expansion":         "拡張率",
		"Max Lanes":         "最大レーン数",
		"Frames Decoded":    "デコードしたフレーム",
		"Frames Skipped":    "スキップしたフレーム",
		"Frames Routed":     "振り分けたフレーム",
		"Elapsed":           "経過時間",
		"Unknown":           "不明",
		"Lanes":             "レーン",
		"Lane":              "レーン",
		"Region":            "領域",
		"Crop":              "切り出し範囲",
		"Size":              "サイズ",
		"Generated at":      "生成日時",

		"No lanes were produced.": "レーンは作成されませんでした。",

		// Statuses
		"completed":   "完了",
		"no_regions":  "領域なし",
		"interrupted": "中断",
		"failed":      "失敗",
		"written":     "書き込み済み",
		"empty":       "空",
	})
}
