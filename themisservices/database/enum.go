package database

import "strings"

// EnumType is a declared enumeration. Member order is significant.
type EnumType struct {
	Name    string       `yaml:"name"`
	Members []EnumMember `yaml:"members"`
}

// EnumMember is one member of an EnumType with its display text.
type EnumMember struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Enumeration is implemented by Go types that behave like an enum member.
// ValueOf turns them into enum values.
type Enumeration interface {
	EnumMember() EnumMember
}

// EnumDeclarer is implemented by Go enum types that can list every member,
// which lets hydrated columns carry a CHECK constraint.
type EnumDeclarer interface {
	EnumType() EnumType
}

func NewEnumType(name string, members ...EnumMember) EnumType {
	return EnumType{
		Name:    name,
		Members: members,
	}
}

// Member looks a member up by name.
func (enumType EnumType) Member(name string) (EnumMember, bool) {
	for _, member := range enumType.Members {
		if member.Name == name {
			return member, true
		}
	}

	return EnumMember{}, false
}

// Text is the description of the member, falling back to its name.
func (member EnumMember) Text() string {
	if strings.TrimSpace(member.Description) != "" {
		return member.Description
	}

	return member.Name
}
