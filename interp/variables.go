package interp

import (
	"strings"

	"github.com/go-applesoft/applesoft/berrors"
	"github.com/go-applesoft/applesoft/value"
)

// array holds one DIMensioned variable: its per-axis extents (inclusive,
// 0-based, as Applesoft allows DIM A(10) to mean indices 0..10) and its
// backing storage addressed by a flattened index.
type array struct {
	dims     []int
	data     []value.Value
	isString bool
}

func newArray(dims []int, isString bool) *array {
	size := 1
	for _, d := range dims {
		size *= d + 1
	}
	zero := value.Num(0)
	if isString {
		zero = value.Str("")
	}
	data := make([]value.Value, size)
	for i := range data {
		data[i] = zero
	}
	return &array{dims: dims, data: data, isString: isString}
}

func (a *array) offset(indices []int) (int, error) {
	if len(indices) != len(a.dims) {
		return 0, berrors.New(berrors.BadSubscript)
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx > a.dims[i] {
			return 0, berrors.New(berrors.BadSubscript)
		}
		off = off*(a.dims[i]+1) + idx
	}
	return off, nil
}

// vars holds scalar and array variable storage for one interpreter.
type vars struct {
	scalars map[string]value.Value
	arrays  map[string]*array
}

func newVars() *vars {
	return &vars{
		scalars: map[string]value.Value{},
		arrays:  map[string]*array{},
	}
}

func (v *vars) clear() {
	v.scalars = map[string]value.Value{}
	v.arrays = map[string]*array{}
}

func normalize(name string) string { return strings.ToUpper(name) }

// get returns a scalar's current value, defaulting to the type implied
// by the trailing sigil: 0 for numeric names, "" for string names ($).
func (v *vars) get(name string) value.Value {
	name = normalize(name)
	if val, ok := v.scalars[name]; ok {
		return val
	}
	if strings.HasSuffix(name, "$") {
		return value.Str("")
	}
	return value.Num(0)
}

func (v *vars) set(name string, val value.Value) {
	v.scalars[normalize(name)] = val
}

// dim explicitly DIMensions name with the given per-axis extents. Per
// spec, redimensioning an already-dimensioned array is a ?BAD SUBSCRIPT
// ERROR rather than being silently allowed or ignored.
func (v *vars) dim(name string, dims []int) error {
	name = normalize(name)
	if _, ok := v.arrays[name]; ok {
		return berrors.New(berrors.BadSubscript)
	}
	v.arrays[name] = newArray(dims, strings.HasSuffix(name, "$"))
	return nil
}

// ensureArray returns name's array, auto-dimensioning it on first use
// to bound 10 (size 11) on every axis, with the axis *count* fixed by
// however many indices this first reference supplied. A later
// reference with a different index count is a bad subscript rather
// than a re-dimension, per the documented open-question decision to
// preserve that behaviour rather than silently fix it.
func (v *vars) ensureArray(name string, indices []int) (*array, error) {
	name = normalize(name)
	a, ok := v.arrays[name]
	if !ok {
		dims := make([]int, len(indices))
		for i := range dims {
			dims[i] = 10
		}
		if len(dims) == 0 {
			dims = []int{10}
		}
		a = newArray(dims, strings.HasSuffix(name, "$"))
		v.arrays[name] = a
		return a, nil
	}
	return a, nil
}

func (v *vars) getElement(name string, indices []int) (value.Value, error) {
	a, err := v.ensureArray(name, indices)
	if err != nil {
		return value.Value{}, err
	}
	off, err := a.offset(indices)
	if err != nil {
		return value.Value{}, err
	}
	return a.data[off], nil
}

func (v *vars) setElement(name string, indices []int, val value.Value) error {
	a, err := v.ensureArray(name, indices)
	if err != nil {
		return err
	}
	off, err := a.offset(indices)
	if err != nil {
		return err
	}
	a.data[off] = val
	return nil
}
