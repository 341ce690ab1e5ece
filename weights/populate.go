package weights

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ace-step/aceinfer/aceerrors"
	"github.com/ace-step/aceinfer/ml"
)

// Populate walks dest by reflection and fills in its `weight:"..."` tagged
// fields from tree, the same struct-tag convention used throughout nn, vae
// and dit. dest must be a pointer to a struct.
//
// Supported field kinds:
//   - *ml.Array: looked up directly, with its physical layout converted
//     according to InferRole of its full dotted key (spec.md §4.9 step 4).
//   - pointer to a tagged struct: populated recursively under the nested
//     key prefix.
//   - slice of pointer to a tagged struct: the checkpoint's repeated-block
//     convention (`layers.0.*`, `layers.1.*`, ...); the slice is grown to
//     cover every contiguous index found under the prefix.
//
// A field tagged `weight:"-"` is a hyperparameter the caller wires in
// afterward (strides, epsilons, layer indices) and is skipped entirely.
func Populate(tree Tree, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return aceerrors.New(aceerrors.WeightFormat, "Populate destination must be a pointer to struct, got %T", dest)
	}
	return populateStruct(tree, v.Elem(), "")
}

type tagSpec struct {
	name     string
	optional bool
	skip     bool
}

func parseTag(raw string) tagSpec {
	if raw == "" {
		return tagSpec{skip: true}
	}
	parts := strings.Split(raw, ",")
	spec := tagSpec{name: parts[0]}
	if spec.name == "-" {
		spec.skip = true
	}
	for _, opt := range parts[1:] {
		if opt == "optional" {
			spec.optional = true
		}
	}
	return spec
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func populateStruct(tree Tree, v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		spec := parseTag(field.Tag.Get("weight"))
		if spec.skip {
			continue
		}
		fieldVal := v.Field(i)
		key := joinKey(prefix, spec.name)

		switch {
		case field.Type == reflect.TypeOf((*ml.Array)(nil)):
			arr, ok := tree[key]
			if !ok {
				if spec.optional {
					continue
				}
				return aceerrors.New(aceerrors.WeightFormat, "checkpoint missing required tensor %q", key)
			}
			fieldVal.Set(reflect.ValueOf(ConvertLayout(arr, InferRole(key))))

		case field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct:
			elem := reflect.New(field.Type.Elem())
			if err := populateStruct(tree, elem.Elem(), key); err != nil {
				return err
			}
			fieldVal.Set(elem)

		case field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.Ptr:
			n := countIndices(tree, key)
			if n == 0 {
				if spec.optional {
					continue
				}
				return aceerrors.New(aceerrors.WeightFormat, "checkpoint has no entries under %q", key)
			}
			slice := reflect.MakeSlice(field.Type, n, n)
			for idx := 0; idx < n; idx++ {
				elem := reflect.New(field.Type.Elem().Elem())
				if err := populateStruct(tree, elem.Elem(), joinKey(key, strconv.Itoa(idx))); err != nil {
					return err
				}
				slice.Index(idx).Set(elem)
			}
			fieldVal.Set(slice)

		case field.Type.Kind() == reflect.Array && field.Type.Elem().Kind() == reflect.Ptr:
			n := field.Type.Len()
			for idx := 0; idx < n; idx++ {
				elem := reflect.New(field.Type.Elem().Elem())
				if err := populateStruct(tree, elem.Elem(), joinKey(key, strconv.Itoa(idx))); err != nil {
					return err
				}
				fieldVal.Index(idx).Set(elem)
			}

		default:
			return aceerrors.New(aceerrors.WeightFormat, "field %s has unsupported weight-tagged type %s", field.Name, field.Type)
		}
	}
	return nil
}

// countIndices returns 1+the highest numeric segment found
// immediately after prefix+"." across tree's keys, or 0 if none exist.
func countIndices(tree Tree, prefix string) int {
	full := prefix + "."
	max := -1
	for k := range tree {
		if !strings.HasPrefix(k, full) {
			continue
		}
		rest := k[len(full):]
		seg := rest
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			seg = rest[:dot]
		}
		idx, err := strconv.Atoi(seg)
		if err != nil {
			continue
		}
		if idx > max {
			max = idx
		}
	}
	return max + 1
}
