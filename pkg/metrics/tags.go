package metrics

import (
	"fmt"
	"path"
	"reflect"
	"strings"
)

// measureSpec is a measure described by the tags of a struct field.
//
// Supported tags are:
//   - metric: the measure name. Fields without this tag are not measures.
//   - group: an extra path element, for nested structs
//   - description: describes the measure and its views
//   - unit: count (the default), milliseconds or events
//   - extraviews: views with other aggregations (count, sum, lastvalue), besides the default view
//   - tags: tag keys recorded by the views
type measureSpec struct {
	name        string
	description string
	unit        string
	extraViews  []string
	tagKeys     []string
}

func specOf(location string, field reflect.StructField) (measureSpec, bool) {
	metric := field.Tag.Get("metric")
	if metric == "" {
		return measureSpec{}, false
	}
	spec := measureSpec{
		name:        path.Join(location, field.Tag.Get("group"), metric),
		description: field.Tag.Get("description"),
		unit:        field.Tag.Get("unit"),
		extraViews:  splitList(field.Tag.Get("extraviews")),
		tagKeys:     splitList(field.Tag.Get("tags")),
	}
	if spec.description == "" {
		if spec.unit == "" || spec.unit == unitCount {
			spec.description = spec.name + " counter"
		} else {
			spec.description = spec.name + " in " + spec.unit
		}
	}
	return spec, true
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// measureBinder allocates a measure for a field of the given type, or returns nil
// when the type is not a supported measure.
type measureBinder func(reflect.Type, measureSpec) interface{}

// bindMeasures allocates all the measures described by m, which must be a pointer to a struct.
// Nested structs are walked, slices and maps are ignored.
func bindMeasures(location string, bind measureBinder, m interface{}) {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("metrics must be described by a pointer to a struct, got: %T", m))
	}
	bindStruct(location, bind, rv.Elem())
}

func bindStruct(location string, bind measureBinder, sv reflect.Value) {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		field, fv := st.Field(i), sv.Field(i)
		if !field.IsExported() {
			continue
		}

		if spec, ok := specOf(location, field); ok {
			if fv.Kind() != reflect.Ptr {
				continue
			}
			if measure := bind(field.Type, spec); measure != nil {
				fv.Set(reflect.ValueOf(measure))
			}
			continue
		}

		if fv.Kind() == reflect.Struct {
			bindStruct(path.Join(location, field.Tag.Get("group")), bind, fv)
		}
	}
}
