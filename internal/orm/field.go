package orm

// ForeignKeyField stores the key of a referenced entity. The decoded value
// comes from Output; Set records a pending value that takes precedence until
// the owning model is bound from storage again.
type ForeignKeyField[ID comparable] struct {
	name   string
	output *ID
	input  *ID
	bound  bool
}

// NewForeignKeyField creates a field stored under the given column name.
func NewForeignKeyField[ID comparable](name string) ForeignKeyField[ID] {
	return ForeignKeyField[ID]{name: name}
}

// Name returns the storage column name.
func (f *ForeignKeyField[ID]) Name() string {
	return f.name
}

// Value returns the pending value if set, else the decoded value.
func (f *ForeignKeyField[ID]) Value() (ID, bool) {
	switch {
	case f.input != nil:
		return *f.input, true
	case f.output != nil:
		return *f.output, true
	default:
		var zero ID
		return zero, false
	}
}

// Get returns the current value, or the zero value when none is set.
func (f *ForeignKeyField[ID]) Get() ID {
	id, _ := f.Value()
	return id
}

// Set records a pending value.
func (f *ForeignKeyField[ID]) Set(id ID) {
	f.input = &id
}

// Bound reports whether the field was decoded from storage.
func (f *ForeignKeyField[ID]) Bound() bool {
	return f.bound
}

// Output decodes the column from row. SQL NULL leaves the field without a
// value. Any pending value is discarded.
func (f *ForeignKeyField[ID]) Output(row *Row) error {
	id, err := DecodeOptional[ID](row, f.name)
	if err != nil {
		return err
	}
	f.output = id
	f.input = nil
	f.bound = true
	return nil
}

// Input writes the pending value, if any, under the column name.
func (f *ForeignKeyField[ID]) Input(values map[string]any) {
	if f.input != nil {
		values[f.name] = *f.input
	}
}

// ClearInput drops the pending value.
func (f *ForeignKeyField[ID]) ClearInput() {
	f.input = nil
}
