package cmd

import (
	"bytes"
	"testing"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestFormatWonGroupsThousands(t *testing.T) {
	testCases := []struct {
		amount   int64
		expected string
	}{
		{0, "0원"},
		{999, "999원"},
		{1000, "1,000원"},
		{118008123000, "118,008,123,000원"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, formatWon(tc.amount))
		})
	}
}

func TestRenderDrawPrintsRankTable(t *testing.T) {
	drawDate := "2024-06-15"
	record := models.NewDrawRecord(1124)
	record.DrawDate = &drawDate
	record.WinningNumbers = []int{3, 8, 17, 30, 33, 34}
	record.BonusNumber = 28
	record.RankDetails = []models.RankDetail{{
		Rank:             1,
		TotalPrizeAmount: 25194785252,
		NumWinners:       12,
		PrizePerGame:     2099565438,
		WinningCriteria:  "당첨번호 6개 숫자일치",
	}}

	var out bytes.Buffer
	command := &cobra.Command{}
	command.SetOut(&out)

	renderDraw(command, &record)

	assert.Contains(t, out.String(), "1124회")
	assert.Contains(t, out.String(), "3, 8, 17, 30, 33, 34")
	assert.Contains(t, out.String(), "25,194,785,252원")
	assert.Contains(t, out.String(), "2,099,565,438원")
}

func TestRenderDrawSkipsEmptyRankTable(t *testing.T) {
	record := models.NewDrawRecord(7)

	var out bytes.Buffer
	command := &cobra.Command{}
	command.SetOut(&out)

	renderDraw(command, &record)

	assert.Contains(t, out.String(), models.DefaultPaymentDeadline)
	assert.NotContains(t, out.String(), "1게임당 당첨금액")
}
