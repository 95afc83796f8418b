package utils

import (
	"reflect"
	"strconv"
	"strings"
)

type DBTag struct {
	Column                 string
	PrimaryKey             bool
	AutoIncrement          bool
	NotNull                bool
	Unique                 bool
	TypeOverride           string
	Length                 int
	Precision              int
	ForeignKeyTargetTable  string
	ForeignKeyTargetColumn string
	Default                string
	HasDefault             bool
	Comment                string
	HasComment             bool
}

func ParseTag(tagString reflect.StructTag) DBTag {
	parts := strings.Split(tagString.Get("db"), ",")

	tag := DBTag{}

	for i, part := range parts {
		if i == 0 {
			tag.Column = part
			continue
		}

		switch part {
		case "primaryKey":
			tag.PrimaryKey = true
			continue
		case "autoIncrement":
			tag.AutoIncrement = true
			continue
		case "notNull":
			tag.NotNull = true
			continue
		case "unique":
			tag.Unique = true
			continue
		}

		if value, found := strings.CutPrefix(part, "default="); found {
			tag.Default = value
			tag.HasDefault = true

			continue
		}

		if value, found := strings.CutPrefix(part, "comment="); found {
			tag.Comment = value
			tag.HasComment = true

			continue
		}

		if value, found := strings.CutPrefix(part, "type="); found {
			tag.TypeOverride = value

			continue
		}

		if value, found := strings.CutPrefix(part, "length="); found {
			tag.Length, _ = strconv.Atoi(value)

			continue
		}

		if value, found := strings.CutPrefix(part, "precision="); found {
			tag.Precision, _ = strconv.Atoi(value)

			continue
		}

		if value, found := strings.CutPrefix(part, "foreignKey="); found {
			parts := strings.Split(value, ".")
			if len(parts) == 2 {
				tag.ForeignKeyTargetTable = parts[0]
				tag.ForeignKeyTargetColumn = parts[1]
			}
			continue
		}
	}

	return tag
}
