package router

import (
	"fmt"
	"reflect"
	"strconv"
)

// Param is one extracted path parameter.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered multi-map of path parameters. Values are decoded.
type Params []Param

// Get returns the first value for name, or "".
func (p Params) Get(name string) string {
	v, _ := p.Lookup(name)
	return v
}

// Lookup returns the first value for name and whether there is one.
func (p Params) Lookup(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// All returns every value for name, in chain order.
func (p Params) All(name string) []string {
	var out []string
	for _, param := range p {
		if param.Name == name {
			out = append(out, param.Value)
		}
	}
	return out
}

// Has reports whether name has at least one value.
func (p Params) Has(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// paramsOf extracts the parameters of a matched chain.
func paramsOf(chain []*Fragment) Params {
	var out Params
	for _, f := range chain {
		if f.node.kind == KindParam {
			out = append(out, Param{Name: f.node.segment[1:], Value: f.value})
		}
	}
	return out
}

// BindParams populates a struct with the current path parameters.
// The target must be a pointer to a struct with `param` tags.
func (r *Router) BindParams(target any) error {
	return NewParamParser().Parse(r.Params(), target)
}

// ParamParser parses string parameters into typed struct fields.
type ParamParser struct{}

// NewParamParser creates a new parameter parser.
func NewParamParser() *ParamParser {
	return &ParamParser{}
}

// Parse populates a struct with values from params.
// The target must be a pointer to a struct with `param` tags.
func (p *ParamParser) Parse(params Params, target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}

		values := params.All(name)
		if len(values) == 0 {
			continue
		}

		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		if err := p.setField(fieldValue, values); err != nil {
			return fmt.Errorf("parsing param %q: %w", name, err)
		}
	}

	return nil
}

// setField sets a field from the values of one parameter. Scalars take
// the first value.
func (p *ParamParser) setField(field reflect.Value, values []string) error {
	value := values[0]

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(append([]string(nil), values...)))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
