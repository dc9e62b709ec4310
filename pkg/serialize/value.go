package serialize

import (
	"fmt"
	"math"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/serialize/status"
)

// ValueDoc is the document form of a value
type ValueDoc struct {
	Kind    string    `json:"kind" yaml:"kind"`
	Bool    *bool     `json:"bool,omitempty" yaml:"bool,omitempty"`
	Int     *int64    `json:"int,omitempty" yaml:"int,omitempty"`
	Double  *float64  `json:"double,omitempty" yaml:"double,omitempty"`
	String  *string   `json:"string,omitempty" yaml:"string,omitempty"`
	Bools   []bool    `json:"bools,omitempty" yaml:"bools,omitempty"`
	Ints    []int64   `json:"ints,omitempty" yaml:"ints,omitempty"`
	Doubles []float64 `json:"doubles,omitempty" yaml:"doubles,omitempty"`
	Strings []string  `json:"strings,omitempty" yaml:"strings,omitempty"`
}

// FromValue builds the document of a value. It returns nil for a nil value.
func FromValue(v model.Value) *ValueDoc {
	if v == nil {
		return nil
	}
	d := &ValueDoc{Kind: v.Kind().String()}
	switch vv := v.(type) {
	case model.Boolean:
		b := bool(vv)
		d.Bool = &b
	case model.Integer:
		i := int64(vv)
		d.Int = &i
	case model.Long:
		i := int64(vv)
		d.Int = &i
	case model.Double:
		f := float64(vv)
		d.Double = &f
	case model.String:
		s := string(vv)
		d.String = &s
	case model.ID:
		s := string(vv)
		d.String = &s
	case model.BooleanList:
		d.Bools = vv.Items()
	case model.IntegerList:
		for _, i := range vv.Items() {
			d.Ints = append(d.Ints, int64(i))
		}
	case model.LongList:
		d.Ints = vv.Items()
	case model.DoubleList:
		d.Doubles = vv.Items()
	case model.StringList:
		d.Strings = vv.Items()
	case model.IDList:
		d.Strings = idStrings(vv.Items())
	case model.StringSet:
		d.Strings = vv.Items()
	case model.IDSet:
		d.Strings = idStrings(vv.Items())
	}
	return d
}

// Value decoded from this document. A nil document is a nil value.
func (d *ValueDoc) Value() (model.Value, error) {
	if d == nil {
		return nil, nil
	}
	kind, ok := model.ParseValueKind(d.Kind)
	if !ok {
		return nil, status.ErrUnknownKind.WrapMessage(d.Kind)
	}

	invalid := func() error {
		return status.ErrInvalidValue.WrapMessage(fmt.Sprintf("missing %s value", d.Kind))
	}
	switch kind {
	case model.BooleanKind:
		if d.Bool == nil {
			return nil, invalid()
		}
		return model.Boolean(*d.Bool), nil
	case model.IntegerKind:
		if d.Int == nil {
			return nil, invalid()
		}
		if *d.Int > math.MaxInt32 || *d.Int < math.MinInt32 {
			return nil, status.ErrInvalidValue.WrapMessage(fmt.Sprintf("integer out of range: %d", *d.Int))
		}
		return model.Integer(*d.Int), nil
	case model.LongKind:
		if d.Int == nil {
			return nil, invalid()
		}
		return model.Long(*d.Int), nil
	case model.DoubleKind:
		if d.Double == nil {
			return nil, invalid()
		}
		return model.Double(*d.Double), nil
	case model.StringKind:
		if d.String == nil {
			return nil, invalid()
		}
		return model.String(*d.String), nil
	case model.IDKind:
		if d.String == nil {
			return nil, invalid()
		}
		id, err := model.NewID(*d.String)
		if err != nil {
			return nil, status.ErrInvalidValue.Wrap(err)
		}
		return id, nil
	case model.BooleanListKind:
		return model.NewBooleanList(d.Bools...), nil
	case model.IntegerListKind:
		items := make([]int32, 0, len(d.Ints))
		for _, i := range d.Ints {
			if i > math.MaxInt32 || i < math.MinInt32 {
				return nil, status.ErrInvalidValue.WrapMessage(fmt.Sprintf("integer out of range: %d", i))
			}
			items = append(items, int32(i))
		}
		return model.NewIntegerList(items...), nil
	case model.LongListKind:
		return model.NewLongList(d.Ints...), nil
	case model.DoubleListKind:
		return model.NewDoubleList(d.Doubles...), nil
	case model.StringListKind:
		return model.NewStringList(d.Strings...), nil
	case model.StringSetKind:
		return model.NewStringSet(d.Strings...), nil
	case model.IDListKind, model.IDSetKind:
		ids, err := parseIDs(d.Strings)
		if err != nil {
			return nil, err
		}
		if kind == model.IDListKind {
			return model.NewIDList(ids...), nil
		}
		return model.NewIDSet(ids...), nil
	default:
		return nil, status.ErrUnknownKind.WrapMessage(d.Kind)
	}
}

func idStrings(ids []model.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func parseIDs(items []string) ([]model.ID, error) {
	ids := make([]model.ID, 0, len(items))
	for _, s := range items {
		id, err := model.NewID(s)
		if err != nil {
			return nil, status.ErrInvalidValue.Wrap(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
