// Package dto defines HTTP response DTOs for the bars feature.
package dto

// BarResponse は1本分のOHLCVデータのレスポンスDTOです。
// 価格はDB上の精度（小数4桁）を保つため文字列で返します。
type BarResponse struct {
	Timestamp string `json:"timestamp"` // UTC, "2006-01-02 15:04:05"
	Open      string `json:"open"`      // 始値
	High      string `json:"high"`      // 高値
	Low       string `json:"low"`       // 安値
	Close     string `json:"close"`     // 終値
	Volume    int64  `json:"volume"`    // 出来高
}

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}
