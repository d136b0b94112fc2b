package v20

import (
	"reflect"
	"strconv"
)

// defaultTag carries the documented default of a field
const defaultTag = "default"

// withDefaults returns a copy of v in which every zero-valued field carrying
// a default tag holds its default. Nested structs, pointers to structs and
// slices of structs are filled too; v itself is never modified.
func withDefaults(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return v
	}

	filled := copyValue(rv)
	if filled.Kind() != reflect.Ptr {
		return v
	}
	applyDefaults(filled.Elem())
	if rv.Kind() == reflect.Ptr {
		return filled.Interface()
	}
	return filled.Elem().Interface()
}

// copyValue returns a pointer to a shallow copy of the value rv holds or
// points to.
func copyValue(rv reflect.Value) reflect.Value {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p
}

func applyDefaults(rv reflect.Value) {
	if rv.Kind() != reflect.Struct {
		return
	}
	t := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}
		if def, ok := t.Field(i).Tag.Lookup(defaultTag); ok && field.IsZero() {
			setDefault(field, def)
			continue
		}
		applyNested(field)
	}
}

func applyNested(field reflect.Value) {
	switch field.Kind() {
	case reflect.Struct:
		applyDefaults(field)
	case reflect.Ptr:
		if field.IsNil() || field.Elem().Kind() != reflect.Struct {
			return
		}
		c := copyValue(field)
		applyDefaults(c.Elem())
		field.Set(c)
	case reflect.Slice:
		if field.IsNil() || !fillable(field.Type().Elem()) {
			return
		}
		c := reflect.MakeSlice(field.Type(), field.Len(), field.Len())
		reflect.Copy(c, field)
		for i := 0; i < c.Len(); i++ {
			applyNested(c.Index(i))
		}
		field.Set(c)
	case reflect.Interface:
		if field.IsNil() || !fillable(field.Elem().Type()) {
			return
		}
		field.Set(reflect.ValueOf(withDefaults(field.Elem().Interface())))
	}
}

func fillable(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// setDefault parses def into field; an unparsable default is ignored.
func setDefault(field reflect.Value, def string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(def)
	case reflect.Bool:
		if b, err := strconv.ParseBool(def); err == nil {
			field.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(def, 10, field.Type().Bits()); err == nil {
			field.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(def, 10, field.Type().Bits()); err == nil {
			field.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(def, field.Type().Bits()); err == nil {
			field.SetFloat(f)
		}
	case reflect.Ptr:
		// optional field: allocate only for scalar defaults
		elem := reflect.New(field.Type().Elem())
		if elem.Elem().Kind() == reflect.Struct {
			return
		}
		setDefault(elem.Elem(), def)
		if !elem.Elem().IsZero() {
			field.Set(elem)
		}
	}
}
