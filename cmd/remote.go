package cmd

import (
	"fmt"
	"sort"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/services"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Remote table store operations (requires SUPABASE_URL and SUPABASE_KEY)",
}

var remoteListCmd = &cobra.Command{
	Use:   "list <table>",
	Short: "Print every row of a remote table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newRemoteStore(appConfig)
		if err != nil {
			return err
		}
		store.SetOutput(cmd.OutOrStdout())

		rows, err := store.GetTableData(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			renderRows(cmd, rows)
		}
		return nil
	},
}

var remoteInsertCmd = &cobra.Command{
	Use:   "insert <drw_no>",
	Short: "Scrape one draw and insert it into the remote lottos table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		drawNo, err := parseDrawNo(args[0])
		if err != nil {
			return err
		}

		store, err := newRemoteStore(appConfig)
		if err != nil {
			return err
		}
		store.SetOutput(cmd.OutOrStdout())

		fetcher := services.NewPageFetcher(appConfig.Service)
		if httpFetcher, ok := fetcher.(*services.HTTPPageFetcher); ok {
			defer httpFetcher.Cleanup()
		}

		ingestion := services.NewDrawIngestionService(
			services.NewDrawExtractor(fetcher, appConfig.Service),
			services.NewRemoteDrawSink(store),
		)
		ingestion.SetOutput(cmd.OutOrStdout())

		_, _, err = ingestion.IngestDraw(cmd.Context(), drawNo)
		return err
	},
}

func init() {
	remoteCmd.AddCommand(remoteListCmd, remoteInsertCmd)
	rootCmd.AddCommand(remoteCmd)
}

func renderRows(cmd *cobra.Command, rows []models.TableRow) {
	columnSet := map[string]struct{}{}
	for _, row := range rows {
		for column := range row {
			columnSet[column] = struct{}{}
		}
	}
	columns := make([]string, 0, len(columnSet))
	for column := range columnSet {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())

	header := make(table.Row, 0, len(columns))
	for _, column := range columns {
		header = append(header, column)
	}
	t.AppendHeader(header)

	for _, row := range rows {
		values := make(table.Row, 0, len(columns))
		for _, column := range columns {
			value, ok := row[column]
			if !ok || value == nil {
				values = append(values, "")
				continue
			}
			values = append(values, fmt.Sprintf("%v", value))
		}
		t.AppendRow(values)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
