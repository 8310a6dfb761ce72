package detour

import "fmt"

// fallbackRecords are shown when the recommendation call fails. They go
// through Normalize like real results.
var fallbackRecords = []map[string]any{
	{
		"id":           "1",
		"name":         "喫茶店カフェ Serendipity",
		"description":  "老舗の自家焙煎コーヒーが自慢の隠れ家カフェ。",
		"lat":          35.681236,
		"lng":          139.767125,
		"distance_km":  0.35,
		"duration_min": 15,
		"source":       "google",
		"photo_url":    PlaceholderPhoto,
	},
	{
		"id":           "2",
		"name":         "アンティーク雑貨店",
		"description":  "ヨーロッパから直輸入した家具や食器が並ぶ注目雑貨店。",
		"lat":          35.681236,
		"lng":          139.767125,
		"distance_km":  0.65,
		"duration_min": 8,
		"source":       "google",
		"photo_url":    PlaceholderPhoto,
	},
	{
		"id":           "3",
		"name":         "小さなアートギャラリー",
		"description":  "若手作家の企画展を展示するギャラリーです。",
		"lat":          35.681236,
		"lng":          139.767125,
		"distance_km":  0.45,
		"duration_min": 9,
		"source":       "google",
		"photo_url":    PlaceholderPhoto,
	},
}

// FallbackSpots returns a fresh copy of the sample spots.
func FallbackSpots() []Spot {
	return NormalizeAll(fallbackRecords)
}

// FailureMessage is the inline notice shown when the search failed.
func FailureMessage(err error) string {
	return fmt.Sprintf("接続できませんでした: %v. サンプルデータを表示しています。", err)
}
