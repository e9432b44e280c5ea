package registry

import (
	"reflect"
	"sort"
	"strings"
)

// Marker is an order-independent tag attached to a Key.
// Two keys with the same markers in any order compare equal.
type Marker string

// markerSep cannot appear in a sensible marker name.
const markerSep = "\x00"

// Key identifies a binding or the requirement of an injection point.
// Keys are comparable and can be used as map keys.
type Key struct {
	// Type is the declared type being requested (e.g., the Module interface)
	Type reflect.Type

	// Qualifier optionally disambiguates bindings of the same type
	Qualifier string

	// markers holds the canonical, sorted and deduplicated marker set
	markers string
}

// NewKey creates a Key for the given type, qualifier and markers.
func NewKey(t reflect.Type, qualifier string, markers ...Marker) Key {
	return Key{Type: t, Qualifier: qualifier, markers: canonicalMarkers(markers)}
}

func canonicalMarkers(markers []Marker) string {
	if len(markers) == 0 {
		return ""
	}
	set := make(map[string]struct{}, len(markers))
	names := make([]string, 0, len(markers))
	for _, m := range markers {
		if m == "" {
			continue
		}
		if _, seen := set[string(m)]; seen {
			continue
		}
		set[string(m)] = struct{}{}
		names = append(names, string(m))
	}
	sort.Strings(names)
	return strings.Join(names, markerSep)
}

// Markers returns the key's markers in sorted order.
func (k Key) Markers() []Marker {
	if k.markers == "" {
		return nil
	}
	parts := strings.Split(k.markers, markerSep)
	markers := make([]Marker, len(parts))
	for i, p := range parts {
		markers[i] = Marker(p)
	}
	return markers
}

// HasMarker reports whether the key carries the given marker.
func (k Key) HasMarker(m Marker) bool {
	for _, existing := range k.Markers() {
		if existing == m {
			return true
		}
	}
	return false
}

// WithQualifier returns a copy of the key with a different qualifier.
func (k Key) WithQualifier(qualifier string) Key {
	k.Qualifier = qualifier
	return k
}

// WithMarkers returns a copy of the key with the given markers added.
func (k Key) WithMarkers(markers ...Marker) Key {
	k.markers = canonicalMarkers(append(k.Markers(), markers...))
	return k
}

// IsZero reports whether the key has no type.
func (k Key) IsZero() bool {
	return k.Type == nil
}

// covers reports whether every marker of k is also present on other.
func (k Key) covers(other Key) bool {
	for _, m := range k.Markers() {
		if !other.HasMarker(m) {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	var b strings.Builder
	if k.Type == nil {
		b.WriteString("<nil>")
	} else {
		b.WriteString(k.Type.String())
	}
	if k.Qualifier != "" {
		b.WriteString("(name=")
		b.WriteString(k.Qualifier)
		b.WriteString(")")
	}
	if k.markers != "" {
		b.WriteString("[")
		b.WriteString(strings.ReplaceAll(k.markers, markerSep, ","))
		b.WriteString("]")
	}
	return b.String()
}
