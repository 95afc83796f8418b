package cli

import (
	"fmt"
	"slices"

	"github.com/lunagic/themis/themisservices/database"
	"github.com/spf13/cobra"
)

type queryOptions struct {
	Prepared bool
	Execute  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <query.yaml>",
		Short: "Render a query document for the configured engine",
		Long: `Render the query in the file with every value inline. With --prepared
the placeholder template and its bound values are printed instead. With
--execute the query is also run and its outcome printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Prepared, "prepared", false, "print the placeholder template and bound values")
	cmd.Flags().BoolVar(&opts.Execute, "execute", false, "run the query")

	return cmd
}

func runQuery(cmd *cobra.Command, rootOpts *RootOptions, opts *queryOptions, path string) error {
	config, err := rootOpts.config()
	if err != nil {
		return err
	}

	query, err := decodeFile[*database.Query](path)
	if err != nil {
		return err
	}

	if query == nil {
		return database.ErrBlankQuery
	}

	driver, err := config.DatabaseDriver()
	if err != nil {
		return err
	}

	if query.Type == database.QueryTypeCreate {
		enumCheckMode, err := config.EnumCheckMode()
		if err != nil {
			return err
		}

		// Printed CREATE statements match what the service executes.
		query.CreateOptions = append([]database.CreateTableOption{database.WithEnumCheckMode(enumCheckMode)}, query.CreateOptions...)
	}

	if opts.Prepared {
		template, prepared := query.RenderPrepared(driver, false)
		fmt.Fprintln(cmd.OutOrStdout(), template)

		if len(prepared) > 0 {
			if err := printPrepared(cmd, prepared); err != nil {
				return err
			}
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), query.Render(driver))
	}

	if !opts.Execute {
		return nil
	}

	service, err := config.Database(cmd.Context())
	if err != nil {
		return err
	}
	defer service.Close()

	builder := service.Build(query)
	if !builder.Execute(cmd.Context()) {
		return builder.Err()
	}

	switch {
	case builder.Result != nil:
		return printResultSet(cmd, builder.Result)
	case query.Type == database.QueryTypeCount:
		printSuccess(cmd, "Total: %d", builder.TotalCount)
	case builder.HasLastInsertID:
		printSuccess(cmd, "Affected rows: %d, last insert id: %d", builder.AffectedRows, builder.LastInsertID)
	default:
		printSuccess(cmd, "Affected rows: %d", builder.AffectedRows)
	}

	return nil
}

func printPrepared(cmd *cobra.Command, prepared map[string]database.PreparedValue) error {
	tokens := make([]string, 0, len(prepared))
	for token := range prepared {
		tokens = append(tokens, token)
	}
	slices.SortFunc(tokens, compareTokens)

	data := [][]string{{"Token", "Kind", "Value"}}
	for _, token := range tokens {
		value := prepared[token].Value
		data = append(data, []string{token, value.Kind().String(), value.String()})
	}

	return printTable(cmd, data)
}

// compareTokens orders :p2 before :p10.
func compareTokens(a string, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}

	if a < b {
		return -1
	}

	if a > b {
		return 1
	}

	return 0
}
