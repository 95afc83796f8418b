package cli

import (
	"fmt"

	"github.com/lunagic/themis/themisservices/database"
	"github.com/spf13/cobra"
)

type schemaDocument struct {
	Tables []database.Table `yaml:"tables"`
}

type ddlOptions struct {
	Apply     bool
	EnumCheck string
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ddlOptions{}

	cmd := &cobra.Command{
		Use:   "ddl <schema.yaml>",
		Short: "Print the CREATE TABLE statements of a schema",
		Long: `Render CREATE TABLE statements, plus any CREATE INDEX statements the
engine needs, for every table in the schema file. With --apply the
statements are executed against the configured database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "execute the statements")
	cmd.Flags().StringVar(&opts.EnumCheck, "enum-check", "", "enum CHECK members (skip-first|all), overrides DATABASE_ENUM_CHECK")

	return cmd
}

func runDDL(cmd *cobra.Command, rootOpts *RootOptions, opts *ddlOptions, path string) error {
	config, err := rootOpts.config()
	if err != nil {
		return err
	}

	if opts.EnumCheck != "" {
		config.DatabaseEnumCheck = opts.EnumCheck
	}

	schema, err := decodeFile[schemaDocument](path)
	if err != nil {
		return err
	}

	driver, err := config.DatabaseDriver()
	if err != nil {
		return err
	}

	enumCheckMode, err := config.EnumCheckMode()
	if err != nil {
		return err
	}

	for _, table := range schema.Tables {
		statements, err := database.RenderCreateTableStatements(driver, table, database.WithEnumCheckMode(enumCheckMode))
		if err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}

		for _, statement := range statements {
			fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", statement)
		}
	}

	if !opts.Apply {
		return nil
	}

	service, err := config.Database(cmd.Context())
	if err != nil {
		return err
	}
	defer service.Close()

	for _, table := range schema.Tables {
		builder := service.Build(&database.Query{
			Type:   database.QueryTypeCreate,
			Create: table,
		})

		if !builder.Execute(cmd.Context()) {
			return fmt.Errorf("table %s: %w", table.Name, builder.Err())
		}
	}

	printSuccess(cmd, "Created %d table(s)", len(schema.Tables))

	return nil
}
