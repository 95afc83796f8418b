package database

import (
	"fmt"
	"strings"

	"github.com/lunagic/themis/themistools"
)

// EnumCheckMode controls which enum members the CHECK constraint allows.
type EnumCheckMode int

const (
	// EnumCheckSkipFirst leaves the first declared member out of the allowed
	// list, treating it as the unset sentinel.
	EnumCheckSkipFirst EnumCheckMode = iota
	// EnumCheckAllMembers allows every declared member.
	EnumCheckAllMembers
)

type createTableConfig struct {
	enumCheckMode EnumCheckMode
}

type CreateTableOption func(config *createTableConfig)

func WithEnumCheckMode(mode EnumCheckMode) CreateTableOption {
	return func(config *createTableConfig) {
		config.enumCheckMode = mode
	}
}

// RenderCreateTable renders the CREATE TABLE statement of the entity.
func RenderCreateTable(driver Driver, entity Entity, options ...CreateTableOption) (string, error) {
	statements, err := RenderCreateTableStatements(driver, entity, options...)
	if err != nil {
		return "", err
	}

	return statements[0], nil
}

// RenderCreateTableStatements renders CREATE TABLE followed by a CREATE INDEX
// for every index key on engines that cannot declare indexes inline.
func RenderCreateTableStatements(driver Driver, entity Entity, options ...CreateTableOption) ([]string, error) {
	config := createTableConfig{
		enumCheckMode: EnumCheckSkipFirst,
	}
	for _, option := range options {
		option(&config)
	}

	table, err := describeEntity(entity)
	if err != nil {
		return nil, err
	}

	definitions := []string{}
	for _, column := range table.Columns {
		definition, err := renderColumnDefinition(driver, config, column)
		if err != nil {
			return nil, err
		}

		definitions = append(definitions, definition)
	}

	definitions = append(definitions, renderKeyDefinitions(driver, table)...)

	builder := strings.Builder{}
	builder.WriteString("CREATE ")
	if table.Temporary {
		builder.WriteString("TEMPORARY ")
	}

	builder.WriteString("TABLE ")
	if table.IfNotExists {
		builder.WriteString("IF NOT EXISTS ")
	}

	builder.WriteString(driver.quoteIdentifier(table.Name))
	builder.WriteString(" (")
	builder.WriteString(strings.Join(definitions, ","))
	builder.WriteString(")")

	for _, option := range table.Options {
		fmt.Fprintf(&builder, " %s=%s", option.Name, option.Value)
	}

	statements := []string{builder.String()}

	if !driver.supportsInlineIndexes() {
		for _, key := range table.Keys {
			if key.Type != KeyIndex {
				continue
			}

			statements = append(statements, renderCreateIndex(driver, table, key))
		}
	}

	return statements, nil
}

func renderColumnDefinition(driver Driver, config createTableConfig, column TableColumn) (string, error) {
	nativeType := strings.TrimSpace(column.TypeOverride)
	if nativeType == "" {
		mapped, found := driver.columnType(column.Type)
		if !found {
			return "", ErrUnsupportedType{
				Type:   column.Type,
				Engine: driver.Engine(),
			}
		}

		nativeType = mapped
	}

	builder := strings.Builder{}
	fmt.Fprintf(&builder, "%s %s", driver.quoteIdentifier(column.Name), nativeType)

	if column.Length > 0 {
		if column.Precision > 0 {
			fmt.Fprintf(&builder, " (%d,%d)", column.Length, column.Precision)
		} else {
			fmt.Fprintf(&builder, " (%d)", column.Length)
		}
	}

	if column.Enum != nil {
		members := column.Enum.Members
		if config.enumCheckMode == EnumCheckSkipFirst && len(members) > 0 {
			members = members[1:]
		}

		if len(members) > 0 {
			allowed := themistools.Map(members, func(member EnumMember) string {
				return driver.quoteValue(member.Text())
			})

			fmt.Fprintf(&builder, " CHECK(%s IN(%s))", driver.quoteIdentifier(column.Name), strings.Join(allowed, ","))
		}
	}

	if column.PrimaryKey {
		builder.WriteString(" PRIMARY KEY")
	}

	if column.AutoIncrement {
		builder.WriteString(" " + driver.autoIncrementKeyword())
	}

	if column.NotNull {
		builder.WriteString(" NOT NULL")
	}

	if column.Unique && !column.PrimaryKey {
		builder.WriteString(" UNIQUE")
	}

	if column.Default != nil {
		builder.WriteString(" DEFAULT " + *column.Default)
	}

	if column.Comment != nil && driver.supportsColumnComment() {
		builder.WriteString(" COMMENT " + driver.quoteValue(*column.Comment))
	}

	return builder.String(), nil
}

func renderKeyDefinitions(driver Driver, table Table) []string {
	quoteColumns := func(columns []string) string {
		return themistools.JoinMap(columns, ", ", func(column string) string {
			return driver.quoteIdentifier(table.columnName(column))
		})
	}

	definitions := []string{}

	for _, key := range table.Keys {
		switch key.Type {
		case KeyPrimary:
			if table.hasPrimaryKeyColumn() {
				continue
			}

			definitions = append(definitions, fmt.Sprintf(
				"CONSTRAINT %s PRIMARY KEY(%s)",
				driver.quoteIdentifier("pk_"+key.Name),
				quoteColumns(key.Columns),
			))
		case KeyUnique:
			definitions = append(definitions, fmt.Sprintf(
				"CONSTRAINT %s UNIQUE (%s)",
				driver.quoteIdentifier("uk_"+key.Name),
				quoteColumns(key.Columns),
			))
		case KeyForeign:
			if key.References == nil {
				continue
			}

			definition := fmt.Sprintf(
				"CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
				driver.quoteIdentifier("fk_"+key.Name),
				quoteColumns(key.Columns),
				driver.quoteIdentifier(key.References.Table),
				themistools.JoinMap(key.References.Columns, ", ", driver.quoteIdentifier),
			)

			if strings.TrimSpace(key.OnDelete) != "" {
				definition += " ON DELETE " + key.OnDelete
			}

			if strings.TrimSpace(key.OnUpdate) != "" {
				definition += " ON UPDATE " + key.OnUpdate
			}

			definitions = append(definitions, definition)
		case KeyIndex:
			if !driver.supportsInlineIndexes() {
				continue
			}

			definition := fmt.Sprintf(
				"INDEX %s (%s)",
				driver.quoteIdentifier("ix_"+key.Name),
				quoteColumns(key.Columns),
			)

			if strings.TrimSpace(key.IndexType) != "" {
				definition += " USING " + key.IndexType
			}

			definitions = append(definitions, definition)
		}
	}

	return definitions
}

func renderCreateIndex(driver Driver, table Table, key TableKey) string {
	using := ""
	if driver.Engine() == EnginePostgres && strings.TrimSpace(key.IndexType) != "" {
		using = " USING " + key.IndexType
	}

	return fmt.Sprintf(
		"CREATE INDEX %s ON %s%s (%s)",
		driver.quoteIdentifier("ix_"+key.Name),
		driver.quoteIdentifier(table.Name),
		using,
		themistools.JoinMap(key.Columns, ", ", func(column string) string {
			return driver.quoteIdentifier(table.columnName(column))
		}),
	)
}
