package container

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

var durationType = reflect.TypeOf(time.Duration(0))

// SetField writes value onto the struct field called name of instance, which
// must be a pointer to a struct. The name matches exactly first, then
// case-insensitively, so "brand" reaches Brand. Unexported fields are written
// too. String values are converted to scalar field kinds.
func SetField(instance any, name string, value any) error {
	field, err := lookupField(instance, name)
	if err != nil {
		return err
	}
	converted, err := convertValue(value, field.Type())
	if err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	settable(field).Set(converted)
	return nil
}

func lookupField(instance any, name string) (reflect.Value, error) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("cannot set %q on %T: not a pointer to struct", name, instance)
	}
	sv := v.Elem()
	field := sv.FieldByName(name)
	if !field.IsValid() {
		field = sv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	}
	if !field.IsValid() {
		return reflect.Value{}, fmt.Errorf("%T has no field %q", instance, name)
	}
	return field, nil
}

// settable returns a writable view of an addressable field, unexported or not.
func settable(field reflect.Value) reflect.Value {
	if field.CanSet() {
		return field
	}
	return reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
}

func convertValue(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}
	if s, ok := value.(string); ok {
		return parseString(s, target)
	}
	if target.Kind() == reflect.String {
		return reflect.ValueOf(fmt.Sprint(value)).Convert(target), nil
	}
	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		return convertNumber(rv, target)
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %T to %v", value, target)
}

func parseString(s string, target reflect.Type) (reflect.Value, error) {
	if target == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}

	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(f)
	case reflect.Slice:
		if target.Elem().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("cannot parse %q into %v", s, target)
		}
		parts := strings.Split(s, ",")
		sl := reflect.MakeSlice(target, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				sl = reflect.Append(sl, reflect.ValueOf(p).Convert(target.Elem()))
			}
		}
		out.Set(sl)
	default:
		return reflect.Value{}, fmt.Errorf("cannot parse %q into %v", s, target)
	}
	return out, nil
}

// convertNumber converts between numeric kinds, refusing any conversion that
// would truncate a fraction, flip a sign or overflow the target.
func convertNumber(rv reflect.Value, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	fail := func(reason string) (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("cannot assign %v (%v) to %v: %s", rv.Interface(), rv.Type(), target, reason)
	}

	switch {
	case rv.CanInt():
		i := rv.Int()
		switch {
		case out.CanInt():
			if out.OverflowInt(i) {
				return fail("overflow")
			}
			out.SetInt(i)
		case out.CanUint():
			if i < 0 {
				return fail("negative value")
			}
			if out.OverflowUint(uint64(i)) {
				return fail("overflow")
			}
			out.SetUint(uint64(i))
		default:
			out.SetFloat(float64(i))
		}

	case rv.CanUint():
		u := rv.Uint()
		switch {
		case out.CanInt():
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return fail("overflow")
			}
			out.SetInt(int64(u))
		case out.CanUint():
			if out.OverflowUint(u) {
				return fail("overflow")
			}
			out.SetUint(u)
		default:
			out.SetFloat(float64(u))
		}

	default:
		f := rv.Float()
		if out.CanFloat() {
			if out.OverflowFloat(f) {
				return fail("overflow")
			}
			out.SetFloat(f)
			return out, nil
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return fail("not a whole number")
		}
		if out.CanInt() {
			if f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return fail("overflow")
			}
			out.SetInt(int64(f))
			return out, nil
		}
		if f < 0 {
			return fail("negative value")
		}
		if f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
			return fail("overflow")
		}
		out.SetUint(uint64(f))
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
