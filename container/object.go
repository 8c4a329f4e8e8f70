package container

import (
	"reflect"
	"strings"

	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/lens/errs"
)

// SubContainerSpec declares, per spec.md §4.4's "Object container
// (LensObject)", a nested container that should intercept items before the
// default label→field routing is applied.
type SubContainerSpec struct {
	// FieldName is the exported struct field the sub-container's unwrapped
	// value is ultimately assigned to.
	FieldName string

	// Kind selects whether the sub-container is a list or a map.
	Kind SubContainerKind

	// StoreItemsOfType routes any item whose Raw has one of these Go types
	// to this sub-container.
	StoreItemsOfType []reflect.Type

	// StoreItemsFromLenses routes any item whose OriginLens equals (by ==)
	// one of these lens references to this sub-container.
	StoreItemsFromLenses []any
}

// SubContainerKind selects a SubContainerSpec's underlying container.
type SubContainerKind int

const (
	// SubContainerList routes matched items into a ListContainer.
	SubContainerList SubContainerKind = iota
	// SubContainerMap routes matched items into a MapContainer.
	SubContainerMap
)

// SubContainerProvider lets a struct used as a Group/And/Or/Repeat type
// declare sub-containers, mirroring the teacher's attribute-declaration
// pattern (see DESIGN.md) in a way idiomatic to Go: an optional method
// instead of class-body metaprogramming.
type SubContainerProvider interface {
	LensSubContainers() []SubContainerSpec
}

// ObjectContainer routes items to the named fields of a user struct, the
// spec.md §4.4 "Object container (LensObject)".
type ObjectContainer struct {
	typ        reflect.Type
	fieldOrder []string          // exported, non-excluded field names in declaration order
	labelOf    map[string]string // field name -> label last seen for it (cached inverse mapping)
	fields     map[string]*item.Value
	claimed    map[string]bool
	subs       map[string]Container
	subByLens  map[any]string
	subByType  map[reflect.Type]string

	target    reflect.Value // addressable struct value, set by SetTarget
	hasTarget bool
}

// NewObject returns an empty ObjectContainer for instances of typ, which
// must be a struct type (not a pointer to one).
func NewObject(typ reflect.Type) *ObjectContainer {
	if typ.Kind() != reflect.Struct {
		panic("container: NewObject given a non-struct type")
	}
	oc := &ObjectContainer{
		typ:       typ,
		labelOf:   make(map[string]string),
		fields:    make(map[string]*item.Value),
		claimed:   make(map[string]bool),
		subs:      make(map[string]Container),
		subByLens: make(map[any]string),
		subByType: make(map[reflect.Type]string),
	}

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("lens"); ok && tag == "-" {
			continue
		}
		oc.fieldOrder = append(oc.fieldOrder, f.Name)
	}

	if provider, ok := reflect.New(typ).Interface().(SubContainerProvider); ok {
		for _, spec := range provider.LensSubContainers() {
			var sub Container
			switch spec.Kind {
			case SubContainerMap:
				sub = NewMap()
			default:
				sub = NewList()
			}
			oc.subs[spec.FieldName] = sub
			for _, l := range spec.StoreItemsFromLenses {
				oc.subByLens[l] = spec.FieldName
			}
			for _, t := range spec.StoreItemsOfType {
				oc.subByType[t] = spec.FieldName
			}
		}
	}

	return oc
}

// SetTarget supplies the existing struct instance PrepareForPut should read
// field values from.
func (oc *ObjectContainer) SetTarget(v reflect.Value) {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	oc.target = v
	oc.hasTarget = true
}

// mapLabelToIdentifier converts a concrete-syntax label into the default Go
// field name candidate it should route to: spaces become underscores and
// the result is compared case-insensitively, per spec.md §4.4's
// map_label_to_identifier (default policy: lowercase; spaces→underscores).
func mapLabelToIdentifier(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

func normalizeFieldName(name string) string {
	return strings.ToLower(name)
}

func (oc *ObjectContainer) fieldForLabel(label string) (string, bool) {
	target := mapLabelToIdentifier(label)
	for _, f := range oc.fieldOrder {
		if normalizeFieldName(f) == target {
			return f, true
		}
	}
	return "", false
}

// Store implements Container.
func (oc *ObjectContainer) Store(v item.Value, origin OptionsSource, rd *reader.Reader) error {
	if v.Meta.IsLabel {
		return errs.Assertion("object container: is_label is not supported for struct-typed lenses")
	}

	if fieldName, ok := oc.subByLens[v.Meta.OriginLens]; ok {
		return oc.subs[fieldName].Store(v, origin, rd)
	}
	if fieldName, ok := oc.subByType[reflect.TypeOf(item.Unwrap(v))]; ok {
		return oc.subs[fieldName].Store(v, origin, rd)
	}

	label := v.Meta.AttrLabel
	if label == "" {
		label = v.Meta.Label
	}
	if label == "" {
		return errs.Fatal("object container: item from lens %q has no label to route by", origin.OptName())
	}

	fieldName, ok := oc.fieldForLabel(label)
	if !ok {
		return errs.Fatal("object container: no field of %s matches label %q", oc.typ.Name(), label)
	}

	oc.labelOf[fieldName] = label
	vv := v
	oc.fields[fieldName] = &vv
	return nil
}

// Candidates implements Container. A lens registered (by identity) as a
// sub-container's source draws its candidates from that sub-container
// instead of the struct's own fields.
func (oc *ObjectContainer) Candidates(lens OptionsSource) []*item.Value {
	if fieldName, ok := oc.subByLens[lens]; ok {
		return oc.subs[fieldName].Candidates(lens)
	}

	var avail []*item.Value
	for _, f := range oc.fieldOrder {
		if oc.claimed[f] {
			continue
		}
		if it, ok := oc.fields[f]; ok {
			avail = append(avail, it)
		}
	}
	return orderCandidates(avail, lens)
}

// Remove implements Container.
func (oc *ObjectContainer) Remove(lens OptionsSource, v *item.Value) error {
	if fieldName, ok := oc.subByLens[lens]; ok {
		return oc.subs[fieldName].Remove(lens, v)
	}

	for f, it := range oc.fields {
		if it == v {
			oc.claimed[f] = true
			return nil
		}
	}
	return errNoCandidate(lens)
}

// PrepareForPut implements Container, reading oc.target's current field
// values into items so Candidates/Remove can serve them during PUT.
func (oc *ObjectContainer) PrepareForPut() error {
	if !oc.hasTarget {
		return nil
	}
	oc.fields = make(map[string]*item.Value)
	oc.claimed = make(map[string]bool)
	for _, f := range oc.fieldOrder {
		fv := oc.target.FieldByName(f)
		if !fv.IsValid() {
			continue
		}
		v := item.EnableMeta(fv.Interface())
		if label, ok := oc.labelOf[f]; ok {
			v.Meta.AttrLabel = label
		}
		vv := v
		oc.fields[f] = &vv
	}
	for _, sub := range oc.subs {
		if err := sub.PrepareForPut(); err != nil {
			return err
		}
	}
	return nil
}

// Unwrap implements Container, building a new instance of the target struct
// type with every claimed field populated.
func (oc *ObjectContainer) Unwrap() any {
	out := reflect.New(oc.typ).Elem()
	for f, it := range oc.fields {
		fv := out.FieldByName(f)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		raw := item.Unwrap(*it)
		if raw == nil {
			continue
		}
		rv := reflect.ValueOf(raw)
		if rv.Type().ConvertibleTo(fv.Type()) {
			fv.Set(rv.Convert(fv.Type()))
		}
	}
	for fieldName, sub := range oc.subs {
		fv := out.FieldByName(fieldName)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		raw := sub.Unwrap()
		rv := reflect.ValueOf(raw)
		if rv.IsValid() && rv.Type().ConvertibleTo(fv.Type()) {
			fv.Set(rv.Convert(fv.Type()))
		}
	}
	return out.Interface()
}

// IsFullyConsumed implements Container.
func (oc *ObjectContainer) IsFullyConsumed() bool {
	for f := range oc.fields {
		if !oc.claimed[f] {
			return false
		}
	}
	for _, sub := range oc.subs {
		if !sub.IsFullyConsumed() {
			return false
		}
	}
	return true
}

// Label implements Container: object containers never have a consumable
// label of their own.
func (oc *ObjectContainer) Label() (string, bool) {
	return "", false
}

// SetLabel implements Container. Object containers route by field name, not
// a dynamic label, so this is a no-op.
func (oc *ObjectContainer) SetLabel(label string) {}

type objectSnapshot struct {
	fields  map[string]*item.Value
	labelOf map[string]string
	claimed map[string]bool
	subs    map[string]any
}

// Snapshot implements rollback.Rollbackable.
func (oc *ObjectContainer) Snapshot() any {
	fields := make(map[string]*item.Value, len(oc.fields))
	for k, v := range oc.fields {
		fields[k] = v
	}
	labelOf := make(map[string]string, len(oc.labelOf))
	for k, v := range oc.labelOf {
		labelOf[k] = v
	}
	claimed := make(map[string]bool, len(oc.claimed))
	for k, v := range oc.claimed {
		claimed[k] = v
	}
	subs := make(map[string]any, len(oc.subs))
	for k, v := range oc.subs {
		subs[k] = v.Snapshot()
	}
	return objectSnapshot{fields: fields, labelOf: labelOf, claimed: claimed, subs: subs}
}

// Equal implements the comparableSnapshot contract documented in
// internal/rollback, since fields, labelOf, claimed, and subs make
// objectSnapshot uncomparable with plain ==.
func (s objectSnapshot) Equal(other any) bool {
	o, ok := other.(objectSnapshot)
	if !ok {
		return false
	}
	if len(s.fields) != len(o.fields) {
		return false
	}
	for k, v := range s.fields {
		if o.fields[k] != v {
			return false
		}
	}
	if len(s.labelOf) != len(o.labelOf) {
		return false
	}
	for k, v := range s.labelOf {
		if ov, present := o.labelOf[k]; !present || ov != v {
			return false
		}
	}
	if len(s.claimed) != len(o.claimed) {
		return false
	}
	for k, v := range s.claimed {
		if ov, present := o.claimed[k]; !present || ov != v {
			return false
		}
	}
	if len(s.subs) != len(o.subs) {
		return false
	}
	for k, v := range s.subs {
		ov, present := o.subs[k]
		if !present || !snapshotEqual(v, ov) {
			return false
		}
	}
	return true
}

// snapshotEqual compares two opaque sub-container snapshots, preferring a
// manual Equal (subs may themselves be uncomparable listSnapshot/
// objectSnapshot values) over plain ==.
func snapshotEqual(a, b any) bool {
	if ce, ok := a.(interface{ Equal(other any) bool }); ok {
		return ce.Equal(b)
	}
	return a == b
}

// Restore implements rollback.Rollbackable.
func (oc *ObjectContainer) Restore(state any) {
	s, ok := state.(objectSnapshot)
	if !ok {
		panic("ObjectContainer: Restore given a snapshot of unexpected type")
	}
	oc.fields = s.fields
	oc.labelOf = s.labelOf
	oc.claimed = s.claimed
	for k, sub := range oc.subs {
		sub.Restore(s.subs[k])
	}
}
