package utils

import "reflect"

// LoopOverStructFields visits the exported fields of a struct type (or pointer
// to one) in declaration order.
func LoopOverStructFields(structType reflect.Type, fieldHandler func(fieldDefinition reflect.StructField) error) error {
	for structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	if structType.Kind() != reflect.Struct {
		return nil
	}

	for i := range structType.NumField() {
		fieldDefinition := structType.Field(i)
		if !fieldDefinition.IsExported() {
			continue
		}

		if err := fieldHandler(fieldDefinition); err != nil {
			return err
		}
	}

	return nil
}
