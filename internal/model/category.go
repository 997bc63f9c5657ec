package model

import "strings"

// Category is one entry of the practice catalog. Value is the concept sent to
// the generator; Name is what users see.
type Category struct {
	Name    string
	Value   string
	Aliases []string
}

// Categories is the fixed practice catalog. Free-form concepts are still accepted.
var Categories = []Category{
	{Name: "Programming Basics - Newbie", Value: BeginnerConcept, Aliases: []string{"basic programming absolute beginners", "newbie"}},
	{Name: "Programming Basics - Intermediate", Value: "Basic Programming for Intermediate Beginner - level programmers", Aliases: []string{"intermediate"}},
	{Name: "String Handling", Value: "String Handling", Aliases: []string{"array search"}},
	{Name: "Data Structures", Value: "Data Structures"},
	{Name: "Algorithms", Value: "Algorithms"},
	{Name: "Problem Solving", Value: "Problem Solving"},
	{Name: "Array", Value: "Array"},
}

// LookupCategory matches a catalog entry by value, display name or alias, ignoring case.
func LookupCategory(input string) (Category, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Category{}, false
	}
	for _, c := range Categories {
		if strings.EqualFold(input, c.Value) || strings.EqualFold(input, c.Name) {
			return c, true
		}
		for _, alias := range c.Aliases {
			if strings.EqualFold(input, alias) {
				return c, true
			}
		}
	}
	return Category{}, false
}

// CanonicalConcept maps catalog names and aliases to the generator value.
// Unknown concepts are returned trimmed.
func CanonicalConcept(input string) string {
	if c, ok := LookupCategory(input); ok {
		return c.Value
	}
	return strings.TrimSpace(input)
}

// CategoryDisplayName returns the catalog name for value, or value itself.
func CategoryDisplayName(value string) string {
	if c, ok := LookupCategory(value); ok {
		return c.Name
	}
	return value
}
