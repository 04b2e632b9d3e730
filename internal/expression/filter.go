// Package expression builds the boolean filter evaluated during a table scan.
//
// A Filter renders to the store's expression syntax, for example
//
//	contains(tags, :tag0) AND contains(tags, :tag1)
//
// together with the ordered list of values bound to each placeholder.
package expression

import (
	"fmt"
	"strings"
)

// Binding pairs a placeholder name with the value bound to it.
type Binding struct {
	Placeholder string
	Value       string
}

// Condition is a single contains(attribute, placeholder) predicate.
type Condition struct {
	Attribute string
	Binding   Binding
}

// Filter is a conjunction of contains predicates.
type Filter struct {
	conditions []Condition
}

// ContainsAll returns a filter requiring the attribute collection to contain
// every value. Predicates keep input order and each one gets its own
// placeholder, so repeated values never collide.
func ContainsAll(attribute string, values []string) Filter {
	conditions := make([]Condition, 0, len(values))
	for i, v := range values {
		conditions = append(conditions, Condition{
			Attribute: attribute,
			Binding: Binding{
				Placeholder: fmt.Sprintf(":%s%d", placeholderPrefix(attribute), i),
				Value:       v,
			},
		})
	}
	return Filter{conditions: conditions}
}

// placeholderPrefix derives a placeholder stem from the attribute name,
// e.g. "tags" -> "tag".
func placeholderPrefix(attribute string) string {
	if p := strings.TrimSuffix(attribute, "s"); p != "" {
		return p
	}
	return attribute
}

// Conditions returns the predicates in evaluation order.
func (f Filter) Conditions() []Condition {
	return append([]Condition(nil), f.conditions...)
}

// Empty reports whether the filter has no predicates and so matches everything.
func (f Filter) Empty() bool {
	return len(f.conditions) == 0
}

// Expression renders the filter in the store's expression syntax.
func (f Filter) Expression() string {
	parts := make([]string, 0, len(f.conditions))
	for _, c := range f.conditions {
		parts = append(parts, fmt.Sprintf("contains(%s, %s)", c.Attribute, c.Binding.Placeholder))
	}
	return strings.Join(parts, " AND ")
}

// Values returns the placeholder bindings in predicate order.
func (f Filter) Values() []Binding {
	bindings := make([]Binding, 0, len(f.conditions))
	for _, c := range f.conditions {
		bindings = append(bindings, c.Binding)
	}
	return bindings
}

// Match evaluates the filter against an item. lookup returns the collection
// stored under an attribute name, or nil when the item has no such attribute.
func (f Filter) Match(lookup func(attribute string) []string) bool {
	for _, c := range f.conditions {
		if !contains(lookup(c.Attribute), c.Binding.Value) {
			return false
		}
	}
	return true
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
