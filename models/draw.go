package models

// DefaultPaymentDeadline is stored when the draw page carries no payment deadline line.
const DefaultPaymentDeadline = "정보 없음"

// DrawRecord is one Lotto 6/45 draw result as published by dhlottery.
type DrawRecord struct {
	DrawNo         int          `json:"draw_no"`
	DrawDate       *string      `json:"draw_date"` // ISO YYYY-MM-DD, raw text when unparseable, null when absent
	WinningNumbers []int        `json:"winning_numbers"`
	BonusNumber    int          `json:"bonus_number"`
	RankDetails    []RankDetail `json:"rank_details"`
	Note           string       `json:"note"`
	MiscInfo       MiscInfo     `json:"misc_info"`
}

// RankDetail is a single prize tier row of a draw.
type RankDetail struct {
	Rank             int    `json:"rank"`
	TotalPrizeAmount int64  `json:"total_prize_amount"`
	NumWinners       int64  `json:"num_winners"`
	PrizePerGame     int64  `json:"prize_per_game"`
	WinningCriteria  string `json:"winning_criteria"`
}

// MiscInfo holds the auxiliary lines printed under the rank table.
type MiscInfo struct {
	PaymentDeadline  string `json:"payment_deadline"`
	TotalSalesAmount int64  `json:"total_sales_amount"`
}

// NewDrawRecord returns a record for drawNo with every field at its fallback value.
func NewDrawRecord(drawNo int) DrawRecord {
	return DrawRecord{
		DrawNo:         drawNo,
		DrawDate:       nil,
		WinningNumbers: []int{},
		BonusNumber:    0,
		RankDetails:    []RankDetail{},
		Note:           "",
		MiscInfo: MiscInfo{
			PaymentDeadline:  DefaultPaymentDeadline,
			TotalSalesAmount: 0,
		},
	}
}

// HasRank reports whether the record contains a detail row for the given tier.
func (r DrawRecord) HasRank(rank int) bool {
	for _, detail := range r.RankDetails {
		if detail.Rank == rank {
			return true
		}
	}
	return false
}

// LatestRound is the payload of latest_round_no.json.
type LatestRound struct {
	LatestRoundNo int `json:"latest_round_no"`
}
