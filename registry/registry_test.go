package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types for registry tests
type testInterface interface {
	DoSomething()
}

type otherInterface interface {
	DoOther()
}

var (
	testType  = reflect.TypeOf((*testInterface)(nil)).Elem()
	otherType = reflect.TypeOf((*otherInterface)(nil)).Elem()
)

func TestNew(t *testing.T) {
	reg := New(false)
	require.NotNil(t, reg)
	assert.NotNil(t, reg.bindings)
	assert.False(t, reg.Strict())
}

func TestRegister_Success(t *testing.T) {
	reg := New(false)
	key := NewKey(testType, "")

	previous, err := reg.Register(&Binding{Key: key})
	require.NoError(t, err)
	assert.Nil(t, previous)
	assert.True(t, reg.Has(key))
}

func TestRegister_NilBinding(t *testing.T) {
	reg := New(false)
	_, err := reg.Register(nil)
	assert.Error(t, err)

	_, err = reg.Register(&Binding{})
	assert.Error(t, err)
}

func TestRegister_OverwriteByDefault(t *testing.T) {
	reg := New(false)
	key := NewKey(testType, "primary")
	first := &Binding{Key: key, Scope: ScopeNone}
	second := &Binding{Key: key, Scope: ScopeShared}

	_, err := reg.Register(first)
	require.NoError(t, err)
	previous, err := reg.Register(second)
	require.NoError(t, err)
	assert.Same(t, first, previous)

	got, err := reg.Lookup(key)
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Len(t, reg.All(), 1)
}

func TestRegister_DuplicateInStrictMode(t *testing.T) {
	reg := New(true)
	key := NewKey(testType, "primary")

	_, err := reg.Register(&Binding{Key: key})
	require.NoError(t, err)

	_, err = reg.Register(&Binding{Key: key})
	var dup *BindingAlreadyExistsError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, key, dup.Key)
}

func TestRegister_ImplicitNeverShadowsExplicit(t *testing.T) {
	reg := New(true)
	key := NewKey(testType, "")
	explicit := &Binding{Key: key}

	_, err := reg.Register(explicit)
	require.NoError(t, err)
	_, err = reg.Register(&Binding{Key: key, Implicit: true})
	require.NoError(t, err)

	got, _ := reg.Get(key)
	assert.Same(t, explicit, got)
}

func TestRegister_ExplicitReplacesImplicitInStrictMode(t *testing.T) {
	reg := New(true)
	key := NewKey(testType, "")

	_, err := reg.Register(&Binding{Key: key, Implicit: true})
	require.NoError(t, err)
	explicit := &Binding{Key: key}
	_, err = reg.Register(explicit)
	require.NoError(t, err)

	got, _ := reg.Get(key)
	assert.Same(t, explicit, got)
}

func TestLookup_ExactMatch(t *testing.T) {
	reg := New(false)
	one := &Binding{Key: NewKey(testType, "module1")}
	two := &Binding{Key: NewKey(testType, "module2")}
	_, _ = reg.Register(one)
	_, _ = reg.Register(two)

	got, err := reg.Lookup(NewKey(testType, "module2"))
	require.NoError(t, err)
	assert.Same(t, two, got)
}

func TestLookup_UnnamedBindingMatchesAnyQualifier(t *testing.T) {
	reg := New(false)
	wildcard := &Binding{Key: NewKey(testType, "", "empty")}
	_, _ = reg.Register(wildcard)

	got, err := reg.Lookup(NewKey(testType, "essentials", "empty"))
	require.NoError(t, err)
	assert.Same(t, wildcard, got)
}

func TestLookup_MarkersMustBeSubset(t *testing.T) {
	reg := New(false)
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "", "empty")})

	_, err := reg.Lookup(NewKey(testType, "essentials"))
	var nf *BindingNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestLookup_PrefersSameQualifierOverWildcard(t *testing.T) {
	reg := New(false)
	wildcard := &Binding{Key: NewKey(testType, "", "empty")}
	named := &Binding{Key: NewKey(testType, "guard")}
	_, _ = reg.Register(wildcard)
	_, _ = reg.Register(named)

	got, err := reg.Lookup(NewKey(testType, "guard", "empty"))
	require.NoError(t, err)
	assert.Same(t, named, got)
}

func TestLookup_PrefersMoreMarkers(t *testing.T) {
	reg := New(false)
	plain := &Binding{Key: NewKey(testType, "")}
	marked := &Binding{Key: NewKey(testType, "", "empty")}
	_, _ = reg.Register(plain)
	_, _ = reg.Register(marked)

	got, err := reg.Lookup(NewKey(testType, "x", "empty", "other"))
	require.NoError(t, err)
	assert.Same(t, marked, got)
}

func TestLookup_AmbiguousMarkers(t *testing.T) {
	reg := New(false)
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "", "a")})
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "", "b")})

	_, err := reg.Lookup(NewKey(testType, "x", "a", "b"))
	var amb *AmbiguousBindingError
	require.True(t, errors.As(err, &amb))
	assert.Len(t, amb.Candidates, 2)
	assert.Contains(t, amb.Error(), "ambiguous binding")
}

func TestLookup_UnqualifiedRequestWithSeveralNamedBindings(t *testing.T) {
	reg := New(false)
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "module1")})
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "module2")})

	_, err := reg.Lookup(NewKey(testType, ""))
	var amb *AmbiguousBindingError
	assert.True(t, errors.As(err, &amb))
}

func TestLookup_UnqualifiedRequestWithSingleNamedBinding(t *testing.T) {
	reg := New(false)
	only := &Binding{Key: NewKey(testType, "module1")}
	_, _ = reg.Register(only)

	got, err := reg.Lookup(NewKey(testType, ""))
	require.NoError(t, err)
	assert.Same(t, only, got)
}

func TestLookup_DifferentQualifierDoesNotMatch(t *testing.T) {
	reg := New(false)
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "module1")})

	_, err := reg.Lookup(NewKey(testType, "module2"))
	var nf *BindingNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Error(), "module2")
}

func TestLookup_TypeIsolation(t *testing.T) {
	reg := New(false)
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "")})

	assert.False(t, reg.Has(NewKey(otherType, "")))
}

func TestReset(t *testing.T) {
	reg := New(false)
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "")})
	reg.Reset()

	assert.Empty(t, reg.All())
	assert.False(t, reg.Has(NewKey(testType, "")))
}

func TestAll_RegistrationOrder(t *testing.T) {
	stringType := reflect.TypeOf("")
	intType := reflect.TypeOf(0)
	order := []Key{
		NewKey(otherType, "b"),
		NewKey(testType, "a"),
		NewKey(stringType, ""),
		NewKey(otherType, "a"),
		NewKey(intType, ""),
		NewKey(testType, "b"),
	}

	for i := 0; i < 20; i++ {
		reg := New(false)
		for _, key := range order {
			_, err := reg.Register(&Binding{Key: key})
			require.NoError(t, err)
		}
		// replacing a binding keeps its position
		_, err := reg.Register(&Binding{Key: NewKey(otherType, "b"), Scope: ScopeShared})
		require.NoError(t, err)

		var keys []Key
		for _, b := range reg.All() {
			keys = append(keys, b.Key)
		}
		assert.Equal(t, []Key{
			NewKey(otherType, "b"),
			NewKey(otherType, "a"),
			NewKey(testType, "a"),
			NewKey(testType, "b"),
			NewKey(stringType, ""),
			NewKey(intType, ""),
		}, keys)
	}
}

func TestReset_ForgetsTypeOrder(t *testing.T) {
	reg := New(false)
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "")})
	_, _ = reg.Register(&Binding{Key: NewKey(otherType, "")})
	reg.Reset()

	_, _ = reg.Register(&Binding{Key: NewKey(otherType, "")})
	_, _ = reg.Register(&Binding{Key: NewKey(testType, "")})

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, otherType, all[0].Key.Type)
	assert.Equal(t, testType, all[1].Key.Type)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	reg := New(false)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.Register(&Binding{Key: NewKey(testType, fmt.Sprintf("n%d", i))})
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.Lookup(NewKey(testType, fmt.Sprintf("n%d", i)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, reg.All(), 50)
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "none", ScopeNone.String())
	assert.Equal(t, "shared", ScopeShared.String())
	assert.Equal(t, "scope(7)", Scope(7).String())
}
