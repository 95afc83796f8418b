package database

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/themis/themisservices/database/internal/utils"
)

// ColumnType is an engine independent column type.
type ColumnType string

const (
	ColumnTypeBoolean   ColumnType = "boolean"
	ColumnTypeInt16     ColumnType = "int16"
	ColumnTypeInt       ColumnType = "int"
	ColumnTypeInt32     ColumnType = "int32"
	ColumnTypeInt64     ColumnType = "int64"
	ColumnTypeUint16    ColumnType = "uint16"
	ColumnTypeUint      ColumnType = "uint"
	ColumnTypeUint32    ColumnType = "uint32"
	ColumnTypeUint64    ColumnType = "uint64"
	ColumnTypeDecimal   ColumnType = "decimal"
	ColumnTypeFloat     ColumnType = "float"
	ColumnTypeDouble    ColumnType = "double"
	ColumnTypeText      ColumnType = "text"
	ColumnTypeChar      ColumnType = "char"
	ColumnTypeVarchar   ColumnType = "varchar"
	ColumnTypeEnum      ColumnType = "enum"
	ColumnTypeDate      ColumnType = "date"
	ColumnTypeDateTime  ColumnType = "datetime"
	ColumnTypeTime      ColumnType = "time"
	ColumnTypeTimestamp ColumnType = "timestamp"
	ColumnTypeBinary    ColumnType = "binary"
	ColumnTypeGUID      ColumnType = "guid"
	ColumnTypeJSON      ColumnType = "json"
	ColumnTypeXML       ColumnType = "xml"
)

type KeyType string

const (
	KeyPrimary KeyType = "PRIMARY"
	KeyUnique  KeyType = "UNIQUE"
	KeyForeign KeyType = "FOREIGN"
	KeyIndex   KeyType = "INDEX"
)

// Entity is anything that can describe the table it is stored in.
type Entity interface {
	TableStructure() Table
}

type Table struct {
	Name        string        `yaml:"name"`
	Temporary   bool          `yaml:"temporary"`
	IfNotExists bool          `yaml:"ifNotExists"`
	Options     []TableOption `yaml:"options"`
	Columns     []TableColumn `yaml:"columns"`
	Keys        []TableKey    `yaml:"keys"`
}

// TableStructure lets a hand built Table be used wherever an Entity is.
func (table Table) TableStructure() Table {
	return table
}

type TableOption struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type TableColumn struct {
	Name          string     `yaml:"name"`
	Field         string     `yaml:"field"`
	Type          ColumnType `yaml:"type"`
	TypeOverride  string     `yaml:"typeOverride"`
	Length        int        `yaml:"length"`
	Precision     int        `yaml:"precision"`
	PrimaryKey    bool       `yaml:"primaryKey"`
	AutoIncrement bool       `yaml:"autoIncrement"`
	NotNull       bool       `yaml:"notNull"`
	Unique        bool       `yaml:"unique"`
	Default       *string    `yaml:"default"`
	Comment       *string    `yaml:"comment"`
	Enum          *EnumType  `yaml:"enum"`
}

type TableKey struct {
	Name       string        `yaml:"name"`
	Type       KeyType       `yaml:"type"`
	Columns    []string      `yaml:"columns"`
	References *KeyReference `yaml:"references"`
	OnDelete   string        `yaml:"onDelete"`
	OnUpdate   string        `yaml:"onUpdate"`
	IndexType  string        `yaml:"indexType"`
}

type KeyReference struct {
	Table   string   `yaml:"table"`
	Columns []string `yaml:"columns"`
}

// describeEntity returns the table of the entity, hydrating the columns from
// its db struct tags when the entity does not list them itself.
func describeEntity(entity Entity) (Table, error) {
	if entity == nil {
		return Table{}, MissingMetadataError{Type: "<nil>"}
	}

	table := entity.TableStructure()
	if strings.TrimSpace(table.Name) == "" {
		return Table{}, MissingMetadataError{Type: fmt.Sprintf("%T", entity)}
	}

	if len(table.Columns) > 0 {
		return table, nil
	}

	if err := table.hydrateColumns(reflect.TypeOf(entity)); err != nil {
		return Table{}, err
	}

	return table, nil
}

func (table *Table) hydrateColumns(entityType reflect.Type) error {
	columns := []TableColumn{}
	keys := []TableKey{}

	if err := utils.LoopOverStructFields(entityType, func(field reflect.StructField) error {
		tag := utils.ParseTag(field.Tag)
		if tag.Column == "" {
			return nil
		}

		column, err := fieldToColumn(field, tag)
		if err != nil {
			return err
		}

		columns = append(columns, column)

		if tag.ForeignKeyTargetTable != "" {
			keys = append(keys, TableKey{
				Name:    fmt.Sprintf("%s_%s", table.Name, tag.Column),
				Type:    KeyForeign,
				Columns: []string{tag.Column},
				References: &KeyReference{
					Table:   tag.ForeignKeyTargetTable,
					Columns: []string{tag.ForeignKeyTargetColumn},
				},
			})
		}

		return nil
	}); err != nil {
		return err
	}

	table.Columns = columns
	table.Keys = append(table.Keys, keys...)

	return nil
}

func fieldToColumn(field reflect.StructField, tag utils.DBTag) (TableColumn, error) {
	fieldType := field.Type
	nullable := false
	if fieldType.Kind() == reflect.Pointer {
		nullable = true
		fieldType = fieldType.Elem()
	}

	column := TableColumn{
		Name:          tag.Column,
		Field:         field.Name,
		TypeOverride:  tag.TypeOverride,
		Length:        tag.Length,
		Precision:     tag.Precision,
		PrimaryKey:    tag.PrimaryKey,
		AutoIncrement: tag.AutoIncrement,
		NotNull:       tag.NotNull || (!nullable && !tag.PrimaryKey),
		Unique:        tag.Unique,
	}

	if tag.HasDefault {
		column.Default = &tag.Default
	}

	if tag.HasComment {
		column.Comment = &tag.Comment
	}

	columnType, enumType, err := goTypeToColumnType(fieldType)
	if err != nil {
		return TableColumn{}, err
	}

	column.Type = columnType
	column.Enum = enumType

	if column.Type == ColumnTypeText && column.Length > 0 {
		column.Type = ColumnTypeVarchar
	}

	return column, nil
}

var (
	timeType         = reflect.TypeFor[time.Time]()
	uuidType         = reflect.TypeFor[uuid.UUID]()
	enumDeclarerType = reflect.TypeFor[EnumDeclarer]()
	enumerationType  = reflect.TypeFor[Enumeration]()
)

// goTypeToColumnType maps a Go type to its logical column type. Exact types
// are checked before kinds so time.Time and uuid.UUID are not treated as a
// struct and an array.
func goTypeToColumnType(t reflect.Type) (ColumnType, *EnumType, error) {
	switch {
	case t == timeType:
		return ColumnTypeDateTime, nil, nil
	case t == uuidType:
		return ColumnTypeGUID, nil, nil
	case t.Implements(enumDeclarerType):
		enumType := reflect.Zero(t).Interface().(EnumDeclarer).EnumType()
		return ColumnTypeEnum, &enumType, nil
	case t.Implements(enumerationType):
		return ColumnTypeEnum, nil, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return ColumnTypeBoolean, nil, nil
	case reflect.Int:
		return ColumnTypeInt, nil, nil
	case reflect.Int8, reflect.Int16:
		return ColumnTypeInt16, nil, nil
	case reflect.Int32:
		return ColumnTypeInt32, nil, nil
	case reflect.Int64:
		return ColumnTypeInt64, nil, nil
	case reflect.Uint:
		return ColumnTypeUint, nil, nil
	case reflect.Uint8, reflect.Uint16:
		return ColumnTypeUint16, nil, nil
	case reflect.Uint32:
		return ColumnTypeUint32, nil, nil
	case reflect.Uint64:
		return ColumnTypeUint64, nil, nil
	case reflect.Float32:
		return ColumnTypeFloat, nil, nil
	case reflect.Float64:
		return ColumnTypeDouble, nil, nil
	case reflect.String:
		return ColumnTypeText, nil, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ColumnTypeBinary, nil, nil
		}
		return ColumnTypeJSON, nil, nil
	case reflect.Struct, reflect.Map:
		return ColumnTypeJSON, nil, nil
	}

	return "", nil, ErrUnsupportedType{
		Type: ColumnType(t.String()),
	}
}

// columnName resolves a key column reference, which may be either a column
// name or the Go field name behind it.
func (table Table) columnName(name string) string {
	for _, column := range table.Columns {
		if column.Field != "" && column.Field == name {
			return column.Name
		}
	}

	return name
}

func (table Table) hasPrimaryKeyColumn() bool {
	for _, column := range table.Columns {
		if column.PrimaryKey {
			return true
		}
	}

	return false
}
