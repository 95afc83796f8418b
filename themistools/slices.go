package themistools

import "strings"

// Map applies render to every item, keeping the order.
func Map[In any, Out any](items []In, render func(In) Out) []Out {
	result := make([]Out, 0, len(items))
	for _, item := range items {
		result = append(result, render(item))
	}

	return result
}

// Filter keeps the items for which keep returns true.
func Filter[T any](items []T, keep func(T) bool) []T {
	result := []T{}
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}

	return result
}

// JoinMap renders every item and joins the results with separator.
func JoinMap[T any](items []T, separator string, render func(T) string) string {
	return strings.Join(Map(items, render), separator)
}

// JoinNotBlank joins the non-empty parts with separator.
func JoinNotBlank(separator string, parts ...string) string {
	return strings.Join(Filter(parts, func(part string) bool {
		return part != ""
	}), separator)
}
