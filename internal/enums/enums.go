// ABOUTME: Canonical enumerations with per-vendor extension bands.
// ABOUTME: Extensions live at values >= 100000 so vendors never collide.
package enums

import (
	"fmt"
	"sort"
)

// ExtensionBandStart is the first value reserved for vendor extensions.
// Canonical members must stay below it; each vendor claims fixed values at
// or above it (100000, 100001, ...).
const ExtensionBandStart = 100000

// Unknown is the member name every enum must resolve unmapped values to.
const Unknown = "unknown"

// Member is one symbolic name / numeric value pair.
type Member struct {
	Name  string
	Value int
}

// Enum is an ordered mapping of symbolic names to small integers, addressable
// by either name or raw value.
type Enum struct {
	name    string
	members []Member
	byName  map[string]int
	byValue map[int]string
}

// New builds an enum from ordered members. Names and values must be unique
// and canonical values must sit below the extension band.
func New(name string, members []Member) (*Enum, error) {
	e := &Enum{
		name:    name,
		byName:  make(map[string]int, len(members)),
		byValue: make(map[int]string, len(members)),
	}
	for _, m := range members {
		if err := e.add(m, false); err != nil {
			return nil, fmt.Errorf("enum %s: %w", name, err)
		}
	}
	return e, nil
}

// MustNew is New for enums defined in code, where a failure is a programming
// error caught by tests.
func MustNew(name string, members []Member) *Enum {
	e, err := New(name, members)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum) add(m Member, extension bool) error {
	if extension {
		if m.Value < ExtensionBandStart {
			return fmt.Errorf("extension member %s=%d below extension band %d", m.Name, m.Value, ExtensionBandStart)
		}
	} else if m.Value >= ExtensionBandStart {
		return fmt.Errorf("canonical member %s=%d overlaps extension band %d", m.Name, m.Value, ExtensionBandStart)
	}
	if _, dup := e.byName[m.Name]; dup {
		return fmt.Errorf("duplicate member name %s", m.Name)
	}
	if _, dup := e.byValue[m.Value]; dup {
		return fmt.Errorf("duplicate member value %d", m.Value)
	}
	e.members = append(e.members, m)
	e.byName[m.Name] = m.Value
	e.byValue[m.Value] = m.Name
	return nil
}

// Derive merges a canonical enum with vendor extension members. Extension
// values must fall in the reserved band and must not collide with the base or
// each other. A non-empty prefix is prepended to every canonical member name;
// extension names are taken as given. The result always carries an "unknown"
// member (value 100000 by convention when the caller does not supply one).
func Derive(name string, base *Enum, extras map[string]int, prefix string) (*Enum, error) {
	e := &Enum{
		name:    name,
		byName:  make(map[string]int),
		byValue: make(map[int]string),
	}
	for _, m := range base.members {
		if err := e.add(Member{Name: prefix + m.Name, Value: m.Value}, m.Value >= ExtensionBandStart); err != nil {
			return nil, fmt.Errorf("enum %s: %w", name, err)
		}
	}

	// Deterministic insertion order for map-supplied extras.
	names := make([]string, 0, len(extras))
	for n := range extras {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if extras[names[i]] != extras[names[j]] {
			return extras[names[i]] < extras[names[j]]
		}
		return names[i] < names[j]
	})
	for _, n := range names {
		if err := e.add(Member{Name: n, Value: extras[n]}, true); err != nil {
			return nil, fmt.Errorf("enum %s: %w", name, err)
		}
	}

	if _, ok := e.byName[Unknown]; !ok {
		if err := e.add(Member{Name: Unknown, Value: ExtensionBandStart}, true); err != nil {
			return nil, fmt.Errorf("enum %s: no usable %s member: %w", name, Unknown, err)
		}
	}
	return e, nil
}

// MustDerive is Derive for enums defined in code.
func MustDerive(name string, base *Enum, extras map[string]int, prefix string) *Enum {
	e, err := Derive(name, base, extras, prefix)
	if err != nil {
		panic(err)
	}
	return e
}

// Name returns the enum's name.
func (e *Enum) Name() string {
	return e.name
}

// Members returns the members in definition order.
func (e *Enum) Members() []Member {
	out := make([]Member, len(e.members))
	copy(out, e.members)
	return out
}

// FromName resolves a symbolic name across canonical and extension members.
func (e *Enum) FromName(name string) (Member, bool) {
	v, ok := e.byName[name]
	if !ok {
		return Member{}, false
	}
	return Member{Name: name, Value: v}, true
}

// FromValue resolves a raw value. Values with no mapping resolve to the
// unknown member so forward-compatible vendor data never aborts ingestion.
func (e *Enum) FromValue(value int) Member {
	if n, ok := e.byValue[value]; ok {
		return Member{Name: n, Value: value}
	}
	if v, ok := e.byName[Unknown]; ok {
		return Member{Name: Unknown, Value: v}
	}
	// Base enums without an unknown member keep the raw value visible.
	return Member{Name: Unknown, Value: value}
}

// Has reports whether the symbolic name is a member.
func (e *Enum) Has(name string) bool {
	_, ok := e.byName[name]
	return ok
}
