package cli

import (
	"fmt"

	"github.com/lunagic/themis/themisservices/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func printTable(cmd *cobra.Command, data [][]string) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), table)

	return nil
}

func printResultSet(cmd *cobra.Command, resultSet *database.ResultSet) error {
	data := [][]string{resultSet.ColumnNames()}
	for _, row := range resultSet.Rows() {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, formatCell(cell))
		}

		data = append(data, cells)
	}

	if err := printTable(cmd, data); err != nil {
		return err
	}

	printSuccess(cmd, "%d row(s)", resultSet.Len())

	return nil
}

func formatCell(cell any) string {
	switch cell := cell.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(cell)
	}

	return cast.ToString(cell)
}

func printSuccess(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf(format, args...))
}
