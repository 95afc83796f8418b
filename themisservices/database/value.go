package database

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
	KindEnum
	KindBinary
	KindGUID
)

func (kind ValueKind) String() string {
	switch kind {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindEnum:
		return "enum"
	case KindBinary:
		return "binary"
	case KindGUID:
		return "guid"
	}

	return fmt.Sprintf("kind(%d)", int(kind))
}

// TimeLayout is the textual form used when a time value is written into SQL.
const TimeLayout = "2006-01-02 15:04:05"

// Value is a literal that can appear in a query. The zero Value is NULL.
type Value struct {
	kind     ValueKind
	text     string
	integer  int64
	unsigned uint64
	float    float64
	boolean  bool
	time     time.Time
	enum     EnumMember
	binary   []byte
	guid     uuid.UUID
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, text: s} }

func Int(i int64) Value { return Value{kind: KindInt, integer: i} }

func Uint(u uint64) Value { return Value{kind: KindUint, unsigned: u} }

func Float(f float64) Value { return Value{kind: KindFloat, float: f} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

func Time(t time.Time) Value { return Value{kind: KindTime, time: t} }

func Enum(member EnumMember) Value { return Value{kind: KindEnum, enum: member} }

func GUID(id uuid.UUID) Value { return Value{kind: KindGUID, guid: id} }

func Binary(b []byte) Value {
	if b == nil {
		return Null()
	}

	return Value{kind: KindBinary, binary: b}
}

// ValueOf converts a Go value into a Value. Nil pointers become NULL, named
// numeric and string types use their underlying kind and anything unknown
// falls back to its fmt representation.
func ValueOf(v any) Value {
	switch typed := v.(type) {
	case nil:
		return Null()
	case Value:
		return typed
	case Enumeration:
		return Enum(typed.EnumMember())
	case EnumMember:
		return Enum(typed)
	case uuid.UUID:
		return GUID(typed)
	case time.Time:
		return Time(typed)
	case []byte:
		return Binary(typed)
	case string:
		return String(typed)
	case bool:
		return Bool(typed)
	case int:
		return Int(int64(typed))
	case int8:
		return Int(int64(typed))
	case int16:
		return Int(int64(typed))
	case int32:
		return Int(int64(typed))
	case int64:
		return Int(typed)
	case uint:
		return Uint(uint64(typed))
	case uint8:
		return Uint(uint64(typed))
	case uint16:
		return Uint(uint64(typed))
	case uint32:
		return Uint(uint64(typed))
	case uint64:
		return Uint(typed)
	case float32:
		return Float(float64(typed))
	case float64:
		return Float(typed)
	case driver.Valuer:
		value, err := typed.Value()
		if err != nil {
			return String(fmt.Sprint(v))
		}
		return ValueOf(value)
	}

	reflected := reflect.ValueOf(v)
	switch reflected.Kind() {
	case reflect.Pointer, reflect.Interface:
		if reflected.IsNil() {
			return Null()
		}
		return ValueOf(reflected.Elem().Interface())
	case reflect.String:
		return String(reflected.String())
	case reflect.Bool:
		return Bool(reflected.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(reflected.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint(reflected.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(reflected.Float())
	case reflect.Slice:
		if reflected.Type().Elem().Kind() == reflect.Uint8 {
			return Binary(reflected.Bytes())
		}
	}

	return String(fmt.Sprint(v))
}

// Values converts every element with ValueOf.
func Values[T any](values ...T) []Value {
	converted := make([]Value, 0, len(values))
	for _, value := range values {
		converted = append(converted, ValueOf(value))
	}

	return converted
}

func (value Value) Kind() ValueKind { return value.kind }

func (value Value) IsNull() bool { return value.kind == KindNull }

// Interface returns the Go value held by the variant.
func (value Value) Interface() any {
	switch value.kind {
	case KindString:
		return value.text
	case KindInt:
		return value.integer
	case KindUint:
		return value.unsigned
	case KindFloat:
		return value.float
	case KindBool:
		return value.boolean
	case KindTime:
		return value.time
	case KindEnum:
		return value.enum
	case KindBinary:
		return value.binary
	case KindGUID:
		return value.guid
	}

	return nil
}

// bindArg is the argument handed to the driver for a placeholder. Enums bind
// as their description text, never an ordinal.
func (value Value) bindArg() any {
	switch value.kind {
	case KindEnum:
		return value.enum.Text()
	case KindGUID:
		return value.guid.String()
	}

	return value.Interface()
}

// String is the default textual form of the value, without any delimiters.
func (value Value) String() string {
	switch value.kind {
	case KindString:
		return value.text
	case KindInt:
		return strconv.FormatInt(value.integer, 10)
	case KindUint:
		return strconv.FormatUint(value.unsigned, 10)
	case KindFloat:
		return strconv.FormatFloat(value.float, 'g', -1, 64)
	case KindBool:
		if value.boolean {
			return "TRUE"
		}
		return "FALSE"
	case KindTime:
		return value.time.Format(TimeLayout)
	case KindEnum:
		return value.enum.Text()
	case KindBinary:
		return "0x" + strings.ToUpper(hex.EncodeToString(value.binary))
	case KindGUID:
		return value.guid.String()
	}

	return "NULL"
}

// UnmarshalYAML reads scalars by their resolved tag. A mapping with a single
// enum, guid or hex key builds the matching kind.
func (value *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return value.unmarshalScalar(node)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: value mapping needs exactly one key", node.Line)
		}

		key, content := node.Content[0].Value, node.Content[1].Value
		switch key {
		case "enum":
			*value = Enum(EnumMember{Name: content})
		case "guid":
			id, err := uuid.Parse(content)
			if err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
			*value = GUID(id)
		case "hex":
			data, err := hex.DecodeString(content)
			if err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
			*value = Binary(data)
		default:
			return fmt.Errorf("line %d: unknown value key %q", node.Line, key)
		}

		return nil
	}

	return fmt.Errorf("line %d: unsupported value node", node.Line)
}

func (value *Value) unmarshalScalar(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		*value = Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*value = Bool(b)
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return err
		}
		*value = Int(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*value = Float(f)
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return err
		}
		*value = Time(t)
	case "!!binary":
		var b []byte
		if err := node.Decode(&b); err != nil {
			return err
		}
		*value = Binary(b)
	default:
		*value = String(node.Value)
	}

	return nil
}
