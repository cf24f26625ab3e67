package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies the kind of an entity attribute value.
type ValueKind int

const (
	// ValueUnset is an omitted optional attribute ($).
	ValueUnset ValueKind = iota

	// ValueDerived is a redeclared-as-derived attribute (*).
	ValueDerived

	// ValueString is a quoted string.
	ValueString

	// ValueInteger is an integer literal.
	ValueInteger

	// ValueReal is a real literal.
	ValueReal

	// ValueEnum is an enumeration or boolean literal (.T., .ELEMENT.).
	ValueEnum

	// ValueRef is a reference to another instance (#12).
	ValueRef

	// ValueList is an aggregate of values.
	ValueList

	// ValueTyped is a typed parameter such as IDENTIFIER('x').
	ValueTyped

	// ValueBinary is a binary literal.
	ValueBinary
)

// Value is one attribute value of a decoded entity instance.
type Value struct {
	Kind ValueKind

	// Str holds string, enum, binary and typed-parameter type names.
	Str string

	// Int holds integer literals and reference ids.
	Int int64

	// Real holds real literals.
	Real float64

	// Items holds list members, or the single wrapped value of a typed parameter.
	Items []Value
}

// AsString returns the string content, unwrapping typed parameters.
func (v Value) AsString() (string, bool) {
	switch v.Kind {
	case ValueString:
		return v.Str, true
	case ValueTyped:
		if len(v.Items) == 1 {
			return v.Items[0].AsString()
		}
	}
	return "", false
}

// AsRef returns the referenced instance id.
func (v Value) AsRef() (int, bool) {
	if v.Kind == ValueRef {
		return int(v.Int), true
	}
	if v.Kind == ValueTyped && len(v.Items) == 1 {
		return v.Items[0].AsRef()
	}
	return 0, false
}

// Refs returns every instance id referenced by the value, including list members.
func (v Value) Refs() []int {
	switch v.Kind {
	case ValueRef:
		return []int{int(v.Int)}
	case ValueList, ValueTyped:
		var out []int
		for _, item := range v.Items {
			out = append(out, item.Refs()...)
		}
		return out
	}
	return nil
}

// String renders the value in exchange-file notation.
func (v Value) String() string {
	switch v.Kind {
	case ValueUnset:
		return "$"
	case ValueDerived:
		return "*"
	case ValueString:
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'"
	case ValueInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValueReal:
		return strconv.FormatFloat(v.Real, 'G', -1, 64)
	case ValueEnum:
		return "." + v.Str + "."
	case ValueRef:
		return "#" + strconv.FormatInt(v.Int, 10)
	case ValueBinary:
		return "\"" + v.Str + "\""
	case ValueList:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	case ValueTyped:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return v.Str + "(" + strings.Join(parts, ",") + ")"
	}
	return "?"
}

// Entity is one decoded entity instance.
// Complex instances carry one Part per partial entity, in file order.
type Entity struct {
	ID    int
	Parts []EntityPart
}

// EntityPart is a named record of attribute values.
type EntityPart struct {
	Type   string
	Params []Value
}

// Type returns the type name of a simple instance, or the first partial type of
// a complex instance.
func (e *Entity) Type() string {
	if len(e.Parts) == 0 {
		return ""
	}
	return e.Parts[0].Type
}

// Part returns the partial record with the given type name.
func (e *Entity) Part(typeName string) (EntityPart, bool) {
	for _, p := range e.Parts {
		if p.Type == typeName {
			return p, true
		}
	}
	return EntityPart{}, false
}

// Is reports whether the instance carries the given type name.
func (e *Entity) Is(typeName string) bool {
	_, ok := e.Part(typeName)
	return ok
}

// Param returns attribute i of the first part, or an unset value.
func (e *Entity) Param(i int) Value {
	if len(e.Parts) == 0 {
		return Value{}
	}
	return e.Parts[0].Param(i)
}

// Param returns attribute i, or an unset value when out of range.
func (p EntityPart) Param(i int) Value {
	if i < 0 || i >= len(p.Params) {
		return Value{}
	}
	return p.Params[i]
}

// Model is the population of one data section of a decoded exchange file.
type Model struct {
	// Name identifies the model within the repository.
	Name string

	// Schema is the schema the population conforms to.
	Schema string

	// Entities holds the instances keyed by instance id.
	Entities map[int]*Entity

	// Order lists instance ids in file order.
	Order []int
}

// NewModel creates an empty model.
func NewModel(name, schema string) *Model {
	return &Model{
		Name:     name,
		Schema:   schema,
		Entities: make(map[int]*Entity),
	}
}

// Add stores an entity, keeping file order.
func (m *Model) Add(e *Entity) {
	if _, exists := m.Entities[e.ID]; !exists {
		m.Order = append(m.Order, e.ID)
	}
	m.Entities[e.ID] = e
}

// Get returns the instance with the given id.
func (m *Model) Get(id int) (*Entity, bool) {
	e, ok := m.Entities[id]
	return e, ok
}

// Handle returns a handle to an instance of this model.
func (m *Model) Handle(id int) EntityHandle {
	return EntityHandle{Model: m.Name, ID: id}
}

// FileHeader carries the header section of an exchange file.
type FileHeader struct {
	Description []string
	Name        string
	TimeStamp   string
	Author      []string
	Schemas     []string
}

// ExchangeStructure is the set of models decoded from one physical exchange file.
type ExchangeStructure struct {
	// Source is the canonical name of the file the structure was decoded from.
	Source string

	Header FileHeader
	Models []*Model
}

// EntityCount returns the number of instances across all models.
func (x *ExchangeStructure) EntityCount() int {
	if x == nil {
		return 0
	}
	n := 0
	for _, m := range x.Models {
		n += len(m.Entities)
	}
	return n
}

// EntityHandle identifies an instance inside a decoded model.
// Handles carry no identity across independently decoded files.
type EntityHandle struct {
	Model string
	ID    int
}

// String renders the handle as model#id.
func (h EntityHandle) String() string {
	return fmt.Sprintf("%s#%d", h.Model, h.ID)
}

// Less orders handles by model name, then instance id.
func (h EntityHandle) Less(o EntityHandle) bool {
	if h.Model != o.Model {
		return h.Model < o.Model
	}
	return h.ID < o.ID
}
