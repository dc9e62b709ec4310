package serialize

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/serialize/status"
)

// ModelDoc is the document form of a model snapshot. Objects and fields are sorted by ID.
type ModelDoc struct {
	Address  string      `json:"address" yaml:"address"`
	Revision int64       `json:"revision" yaml:"revision"`
	Objects  []ObjectDoc `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// ObjectDoc is the document form of an object
type ObjectDoc struct {
	ID       string     `json:"id" yaml:"id"`
	Revision int64      `json:"revision" yaml:"revision"`
	Fields   []FieldDoc `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldDoc is the document form of a field. An empty field has no value.
type FieldDoc struct {
	ID       string    `json:"id" yaml:"id"`
	Revision int64     `json:"revision" yaml:"revision"`
	Value    *ValueDoc `json:"value,omitempty" yaml:"value,omitempty"`
}

// FromModel builds the document of a model
func FromModel(m model.ReadableModel) ModelDoc {
	d := ModelDoc{Address: m.Address().String(), Revision: m.Revision()}
	for _, id := range m.ObjectIDs() {
		d.Objects = append(d.Objects, FromObject(m.Object(id)))
	}
	return d
}

// FromObject builds the document of an object
func FromObject(o model.ReadableObject) ObjectDoc {
	d := ObjectDoc{ID: string(o.ID()), Revision: o.Revision()}
	for _, id := range o.FieldIDs() {
		f := o.Field(id)
		d.Fields = append(d.Fields, FieldDoc{ID: string(id), Revision: f.Revision(), Value: FromValue(f.Value())})
	}
	return d
}

// State decoded from this document
func (d ModelDoc) State() (*model.ModelState, error) {
	addr, err := model.ParseAddress(d.Address)
	if err != nil {
		return nil, status.ErrInvalidSnapshot.Wrap(err)
	}
	if addr.Kind() != model.KindModel {
		return nil, status.ErrInvalidSnapshot.WrapMessage(fmt.Sprintf("%q is not a model address", d.Address))
	}

	m := model.NewModelState(addr, d.Revision)
	for _, od := range d.Objects {
		id, err := model.NewID(od.ID)
		if err != nil {
			return nil, status.ErrInvalidSnapshot.Wrap(err)
		}
		if _, dup := m.Objects[id]; dup {
			return nil, status.ErrInvalidSnapshot.WrapMessage(fmt.Sprintf("duplicate object %q", id))
		}
		o := model.NewObjectState(addr.Child(id), od.Revision)
		for _, fd := range od.Fields {
			fid, err := model.NewID(fd.ID)
			if err != nil {
				return nil, status.ErrInvalidSnapshot.Wrap(err)
			}
			if _, dup := o.Fields[fid]; dup {
				return nil, status.ErrInvalidSnapshot.WrapMessage(fmt.Sprintf("duplicate field %q in %q", fid, id))
			}
			value, err := fd.Value.Value()
			if err != nil {
				return nil, err
			}
			o.Fields[fid] = &model.FieldState{Addr: o.Addr.Child(fid), Rev: fd.Revision, Val: value}
		}
		m.Objects[id] = o
	}
	return m, nil
}

// MarshalModel encodes a model snapshot
func MarshalModel(format Format, m model.ReadableModel) ([]byte, error) {
	return Marshal(format, FromModel(m))
}

// UnmarshalModel decodes a model snapshot
func UnmarshalModel(format Format, data []byte) (*model.ModelState, error) {
	var d ModelDoc
	if err := Unmarshal(format, data, &d); err != nil {
		return nil, status.ErrInvalidSnapshot.Wrap(err)
	}
	return d.State()
}
