package interaction

import "slices"

// Kind is the declared scalar kind of an option.
type Kind int

const (
	KindString Kind = iota
	KindEnum
)

// Field declares one option a command accepts.
// Choices restricts a KindEnum field; an empty list accepts any string.
type Field struct {
	Name    string
	Kind    Kind
	Choices []string
}

// Schema is the ordered set of fields a command declares.
type Schema []Field

// String declares a free-text field.
func String(name string) Field {
	return Field{Name: name, Kind: KindString}
}

// Enum declares a field restricted to choices.
func Enum(name string, choices ...string) Field {
	return Field{Name: name, Kind: KindEnum, Choices: choices}
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value is an extracted scalar or the absent marker.
type Value struct {
	str     string
	present bool
}

// Present wraps a given value.
func Present(s string) Value {
	return Value{str: s, present: true}
}

// Absent is the marker for an option that was not given or could not be read.
var Absent = Value{}

// Get returns the value and whether it was given.
func (v Value) Get() (string, bool) {
	return v.str, v.present
}

// Args maps every declared option of a command to its value.
type Args map[string]Value

// Lookup returns the value of name and whether it was given.
// Undeclared names read as absent.
func (a Args) Lookup(name string) (string, bool) {
	return a[name].Get()
}

// String returns the value of name or "" when absent.
func (a Args) String(name string) string {
	s, _ := a.Lookup(name)
	return s
}

// Extract flattens opts into Args keyed by the schema's field names.
// Extraction never fails: unknown names are ignored, and values of the
// wrong type or outside an enum's choices are recorded as absent.
func Extract(opts []Option, schema Schema) Args {
	args := make(Args, len(schema))
	for _, f := range schema {
		args[f.Name] = Absent
	}
	walk(opts, schema, args)
	return args
}

func walk(opts []Option, schema Schema, args Args) {
	for _, o := range opts {
		if isGroup(o.Type) {
			walk(o.Options, schema, args)
			continue
		}
		f, ok := schema.field(o.Name)
		if !ok {
			continue
		}
		args[f.Name] = coerce(o, f)
	}
}

func coerce(o Option, f Field) Value {
	if o.Type != 0 && o.Type != OptionString {
		return Absent
	}
	s, ok := o.Value.(string)
	if !ok {
		return Absent
	}
	if f.Kind == KindEnum && len(f.Choices) > 0 && !slices.Contains(f.Choices, s) {
		return Absent
	}
	return Present(s)
}
