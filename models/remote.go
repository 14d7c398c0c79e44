package models

// TableRow is a generic row exchanged with the remote table store.
type TableRow map[string]interface{}

// DrawTableName is the remote table draw records are inserted into.
const DrawTableName = "lottos"

// ToTableRow flattens a draw record into the remote "lottos" row shape.
func (r DrawRecord) ToTableRow() TableRow {
	row := TableRow{
		"round":              r.DrawNo,
		"note":               r.Note,
		"payment_deadline":   r.MiscInfo.PaymentDeadline,
		"total_sales_amount": r.MiscInfo.TotalSalesAmount,
		"winning_numbers":    r.WinningNumbers,
		"bonus_number":       r.BonusNumber,
		"rank_details":       r.RankDetails,
	}
	if r.DrawDate != nil {
		row["draw_date"] = *r.DrawDate
	} else {
		row["draw_date"] = nil
	}
	return row
}
