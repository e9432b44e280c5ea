package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey_MarkerOrderIndependent(t *testing.T) {
	a := NewKey(testType, "q", "b", "a")
	b := NewKey(testType, "q", "a", "b", "a")

	assert.Equal(t, a, b)
	assert.Equal(t, []Marker{"a", "b"}, a.Markers())

	m := map[Key]int{a: 1}
	assert.Equal(t, 1, m[b])
}

func TestKey_HasMarker(t *testing.T) {
	k := NewKey(testType, "", "empty")
	assert.True(t, k.HasMarker("empty"))
	assert.False(t, k.HasMarker("singleton"))
	assert.Nil(t, NewKey(testType, "").Markers())
}

func TestKey_WithQualifierAndMarkers(t *testing.T) {
	k := NewKey(testType, "a")
	k2 := k.WithQualifier("b").WithMarkers("x", "")

	assert.Equal(t, "a", k.Qualifier)
	assert.Equal(t, "b", k2.Qualifier)
	assert.Equal(t, []Marker{"x"}, k2.Markers())
	assert.Nil(t, k.Markers())
}

func TestKey_String(t *testing.T) {
	k := NewKey(testType, "module1", "empty", "alpha")
	assert.Equal(t, "registry.testInterface(name=module1)[alpha,empty]", k.String())
	assert.Equal(t, "<nil>", Key{}.String())
	assert.True(t, Key{}.IsZero())
}

func TestKey_Covers(t *testing.T) {
	binding := NewKey(testType, "", "a")
	assert.True(t, binding.covers(NewKey(testType, "", "a", "b")))
	assert.False(t, binding.covers(NewKey(testType, "", "b")))
	assert.True(t, NewKey(testType, "").covers(binding))
}
