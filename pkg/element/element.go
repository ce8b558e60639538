// Package element provides the generic fragment tree used to describe pieces
// of an SDF document before serialization. An Element is a tag, an ordered
// attribute list, an ordered child list and optional text.
package element

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

// ErrNilChild is returned when appending an absent fragment.
var ErrNilChild = errors.New("element: cannot append nil child")

// Attr is a single name/value attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of a fragment tree. The zero value is not useful;
// use New.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
	Text     string
}

// New returns an empty element with the given tag.
func New(tag string) *Element {
	return &Element{Tag: tag}
}

// Set assigns an attribute. An existing attribute keeps its position.
func (e *Element) Set(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Get returns the value of the named attribute.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SubElement creates a child with the given tag, appends it and returns it.
func (e *Element) SubElement(tag string) *Element {
	c := New(tag)
	e.Children = append(e.Children, c)
	return c
}

// Append attaches an existing fragment as the last child.
func (e *Element) Append(child *Element) error {
	if child == nil {
		return ErrNilChild
	}
	e.Children = append(e.Children, child)
	return nil
}

// Find returns the first direct child with the given tag, or nil.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of the element and its subtree.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{Tag: e.Tag, Text: e.Text}
	if len(e.Attrs) > 0 {
		out.Attrs = make([]Attr, len(e.Attrs))
		copy(out.Attrs, e.Attrs)
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// MarshalXML implements xml.Marshaler. The start element supplied by the
// encoder is ignored; the element's own tag and attributes are used.
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Tag}}
	for _, a := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Encode writes the fragments to w as XML, one after another. An empty
// indent produces compact output.
func Encode(w io.Writer, indent string, fragments ...*Element) error {
	enc := xml.NewEncoder(w)
	if indent != "" {
		enc.Indent("", indent)
	}
	for _, f := range fragments {
		if f == nil {
			return ErrNilChild
		}
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return enc.Flush()
}

// String renders the element as compact XML.
func (e *Element) String() string {
	var buf bytes.Buffer
	if err := Encode(&buf, "", e); err != nil {
		return "<!-- " + err.Error() + " -->"
	}
	return buf.String()
}
