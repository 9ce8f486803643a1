package scrape

// statsDocument is the download-stats API payload. Data maps period names
// (last_day, last_week, last_month) to download counts.
type statsDocument struct {
	Data    map[string]int `json:"data"`
	Package string         `json:"package"`
	Type    string         `json:"type"`
}
