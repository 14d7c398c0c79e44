package cmd

import (
	"fmt"
	"strings"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var showCmd = &cobra.Command{
	Use:   "show <drw_no>",
	Short: "Print a stored draw record as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		drawNo, err := parseDrawNo(args[0])
		if err != nil {
			return err
		}

		reader, _, closeReader, err := newDrawReader(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer closeReader()

		record, err := reader.GetDraw(cmd.Context(), drawNo)
		if err != nil {
			return fmt.Errorf("load draw %d: %w", drawNo, err)
		}

		renderDraw(cmd, record)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func renderDraw(cmd *cobra.Command, record *models.DrawRecord) {
	drawDate := "-"
	if record.DrawDate != nil {
		drawDate = *record.DrawDate
	}

	numbers := make([]string, 0, len(record.WinningNumbers))
	for _, n := range record.WinningNumbers {
		numbers = append(numbers, fmt.Sprintf("%d", n))
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(cmd.OutOrStdout())
	summary.SetTitle(fmt.Sprintf("%d회", record.DrawNo))
	summary.AppendRows([]table.Row{
		{"추첨일", drawDate},
		{"당첨번호", strings.Join(numbers, ", ")},
		{"보너스", record.BonusNumber},
		{"당첨금 지급기한", record.MiscInfo.PaymentDeadline},
		{"총판매금액", formatWon(record.MiscInfo.TotalSalesAmount)},
		{"비고", record.Note},
	})
	summary.SetStyle(table.StyleRounded)
	summary.Render()

	if len(record.RankDetails) == 0 {
		return
	}

	ranks := table.NewWriter()
	ranks.SetOutputMirror(cmd.OutOrStdout())
	ranks.AppendHeader(table.Row{"순위", "총 당첨금액", "당첨게임 수", "1게임당 당첨금액", "당첨기준"})
	for _, detail := range record.RankDetails {
		ranks.AppendRow(table.Row{
			fmt.Sprintf("%d등", detail.Rank),
			formatWon(detail.TotalPrizeAmount),
			formatCount(detail.NumWinners),
			formatWon(detail.PrizePerGame),
			detail.WinningCriteria,
		})
	}
	ranks.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	ranks.SetStyle(table.StyleRounded)
	ranks.Render()
}

var wonPrinter = message.NewPrinter(language.Korean)

func formatWon(amount int64) string {
	return formatCount(amount) + "원"
}

func formatCount(value int64) string {
	return wonPrinter.Sprintf("%d", value)
}
