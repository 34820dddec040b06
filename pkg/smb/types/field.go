package types

// Field is one wire field of a message body. Width is the declared wire
// width in bytes; 0 marks a variable-length region.
type Field struct {
	Name  string
	Width int
	Value []byte
}

// Fixed reports whether the field has a declared wire width
func (f Field) Fixed() bool {
	return f.Width > 0
}

// Body is a request body that can be serialized after a header
type Body interface {
	Command() Command
	Fields() []Field
	Marshal() []byte
}

// MarshalFields concatenates field values in order
func MarshalFields(fields []Field) []byte {
	n := 0
	for _, f := range fields {
		n += len(f.Value)
	}
	buf := make([]byte, 0, n)
	for _, f := range fields {
		buf = append(buf, f.Value...)
	}
	return buf
}

// RawBody is a body held as an ordered field list. Field values are written
// verbatim and need not match their declared widths.
type RawBody struct {
	Cmd  Command
	List []Field
}

// Command returns the command the body is sent under
func (b *RawBody) Command() Command { return b.Cmd }

// Fields returns the field list
func (b *RawBody) Fields() []Field { return b.List }

// Marshal serializes the field list
func (b *RawBody) Marshal() []byte { return MarshalFields(b.List) }

func fixed(name string, value []byte) Field {
	return Field{Name: name, Width: len(value), Value: value}
}

func variable(name string, value []byte) Field {
	return Field{Name: name, Value: value}
}
