// Package workbook loads workbook documents (.twb XML, .twbx archives)
// into a minimal element tree for analysis.
//
// The tree is deliberately schema-free: elements expose their name,
// attributes and children, and lookups on missing names return zero
// values. Analysis degrades on unexpected shapes instead of failing.
package workbook

import "strings"

// Attr is one element attribute, order preserved.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the decoded document tree.
type Element struct {
	// Name is the element's local name; namespace prefixes are dropped.
	Name     string
	Attrs    []Attr
	Children []*Element

	text string
}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	for _, a := range e.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Child returns the first child element with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the child elements with the given name, in order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first element in the subtree (the element itself
// included) with the given name, in document order, or nil.
func (e *Element) Find(name string) *Element {
	if e.Name == name {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element in the subtree (the element itself
// included) with the given name, in document order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	e.findAll(name, &out)
	return out
}

func (e *Element) findAll(name string, out *[]*Element) {
	if e.Name == name {
		*out = append(*out, e)
	}
	for _, c := range e.Children {
		c.findAll(name, out)
	}
}

// Text returns the element's direct character data, whitespace trimmed.
func (e *Element) Text() string {
	return strings.TrimSpace(e.text)
}
