package diorite

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainService struct {
	Logger  Logger
	DB      Database
	Modules *Provider[Widget]
	hidden  Logger
}

func (s *plainService) Start() error { return nil }

func (s *plainService) Configure(l Logger, db Database) {}

func (s *plainService) Pair() (int, error) { return 0, nil }

func (s *plainService) WithArg(int) {}

func (s *plainService) Prepare(*Session) error { return nil }

func build(t *testing.T, fn func(b *ClassBuilder)) (*Class, error) {
	t.Helper()
	b := newClassBuilder(reflect.TypeOf(&plainService{}))
	fn(b)
	return b.build()
}

func TestClassBuilder_Fields(t *testing.T) {
	class, err := build(t, func(b *ClassBuilder) {
		b.Field("DB", Named("primary"), WithMarkers("rw", "pooled"), AsSingleton(), AsFinal()).
			Field("Logger", NamedAuto(), Optional(), HookAlias("log")).
			Field("Modules", NamedAuto())
	})
	require.NoError(t, err)
	require.Len(t, class.Points, 3)

	db := class.Points[0]
	assert.Equal(t, "DB", db.Name)
	assert.Equal(t, FieldPoint, db.Kind)
	assert.Equal(t, KeyOf[Database]("primary", "pooled", "rw"), db.Key())
	assert.True(t, db.Singleton)
	assert.True(t, db.Final)

	logger := class.Points[1]
	assert.Equal(t, "logger", logger.Qualifier)
	assert.True(t, logger.Optional)
	assert.Equal(t, "log", logger.HookTarget())

	modules := class.Points[2]
	assert.True(t, modules.Lazy)
	assert.Equal(t, typeOf[Widget](), modules.Type)
	assert.Equal(t, KeyOf[Widget]("modules"), modules.Key())
}

func TestClassBuilder_NamedOverridesAuto(t *testing.T) {
	class, err := build(t, func(b *ClassBuilder) {
		b.Field("Logger", NamedAuto(), Named("audit"))
	})
	require.NoError(t, err)
	assert.Equal(t, "audit", class.Points[0].Qualifier)
}

func TestClassBuilder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		describe func(b *ClassBuilder)
	}{
		{"unknown field", func(b *ClassBuilder) { b.Field("Missing") }},
		{"unexported field", func(b *ClassBuilder) { b.Field("hidden") }},
		{"duplicate point", func(b *ClassBuilder) { b.Field("DB").Field("db") }},
		{"unknown method", func(b *ClassBuilder) { b.Method("Missing", nil) }},
		{"parameter count", func(b *ClassBuilder) { b.Method("Configure", []ParamSpec{Param("l")}) }},
		{"method results", func(b *ClassBuilder) { b.Method("Pair", nil) }},
		{"unknown hook", func(b *ClassBuilder) { b.BeforeInject("", "Missing") }},
		{"hook arguments", func(b *ClassBuilder) { b.AfterInject("", "WithArg") }},
		{"hook results", func(b *ClassBuilder) { b.AfterInject("", "Pair") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.describe)
			var invalid *InvalidDescriptorError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestClassBuilder_SessionHook(t *testing.T) {
	class, err := build(t, func(b *ClassBuilder) {
		b.Field("DB").
			BeforeInject("db", "Prepare").
			AfterInject("", "Start")
	})
	require.NoError(t, err)
	require.Len(t, class.Hooks, 2)

	assert.True(t, class.Hooks[0].withSession)
	assert.True(t, class.Hooks[0].returnsError)
	assert.False(t, class.Hooks[1].withSession)
}

func TestClassBuilder_Method(t *testing.T) {
	class, err := build(t, func(b *ClassBuilder) {
		b.Method("Configure", []ParamSpec{
			Param("audit"),
			Param("db", Named("primary")),
		}, NamedAuto(), AsSingleton(), WithMarkers("tx"))
	})
	require.NoError(t, err)
	require.Len(t, class.Methods, 1)

	m := class.Methods[0]
	assert.Equal(t, MethodPoint, m.Kind)
	require.Len(t, m.Params, 2)

	assert.Equal(t, ParameterPoint, m.Params[0].Kind)
	assert.Equal(t, KeyOf[Logger]("audit", "tx"), m.Params[0].Key())
	assert.True(t, m.Params[0].Singleton)
	assert.Equal(t, KeyOf[Database]("primary", "tx"), m.Params[1].Key())
}

func TestClassBuilder_MethodDefaultParamNames(t *testing.T) {
	class, err := build(t, func(b *ClassBuilder) {
		b.Method("Configure", nil)
	})
	require.NoError(t, err)

	params := class.Methods[0].Params
	assert.Equal(t, "arg0", params[0].Name)
	assert.Equal(t, "arg1", params[1].Name)
	assert.Equal(t, KeyOf[Database](""), params[1].Key())
}

func TestClassBuilder_Hooks(t *testing.T) {
	class, err := build(t, func(b *ClassBuilder) {
		b.Field("Logger", HookAlias("log")).
			BeforeInject("", "Start").
			AfterInject("LOG", "Start")
	})
	require.NoError(t, err)
	require.Len(t, class.Hooks, 2)

	assert.True(t, class.Hooks[0].Global())
	assert.Equal(t, "log", class.Hooks[1].Target)
	assert.True(t, class.Hooks[1].Matches(class.Points[0]))
	assert.False(t, class.Hooks[0].Matches(class.Points[0]))
}

type tagged struct {
	First  Logger   `inject:"name=audit,marker=a|b"`
	Second Database `inject:"optional"`
	Third  Logger   `inject:"-"`
	Fourth Logger
}

func TestClassBuilder_TaggedKeepsExplicitPoints(t *testing.T) {
	b := newClassBuilder(reflect.TypeOf(&tagged{}))
	b.Field("Second", Named("explicit")).Tagged()
	class, err := b.build()
	require.NoError(t, err)

	require.Len(t, class.Points, 2)
	assert.Equal(t, "Second", class.Points[0].Name)
	assert.Equal(t, "explicit", class.Points[0].Qualifier)
	assert.False(t, class.Points[0].Optional)
	assert.Equal(t, KeyOf[Logger]("audit", "b", "a"), class.Points[1].Key())
}

func TestDerivedName(t *testing.T) {
	assert.Equal(t, "module1", derivedName("Module1", false))
	assert.Equal(t, "someModule", derivedName("SomeModuleProvider", true))
	assert.Equal(t, "someModuleProvider", derivedName("SomeModuleProvider", false))
	assert.Equal(t, "provider", derivedName("Provider", true))
	assert.Equal(t, "", lowerFirst(""))
	assert.Equal(t, "élan", lowerFirst("Élan"))
}

func TestPointKindAndPhaseStrings(t *testing.T) {
	assert.Equal(t, "field", FieldPoint.String())
	assert.Equal(t, "parameter", ParameterPoint.String())
	assert.Equal(t, "method", MethodPoint.String())
	assert.Equal(t, "kind(9)", PointKind(9).String())
	assert.Equal(t, "before", BeforeInject.String())
	assert.Equal(t, "after", AfterInject.String())
}

func TestMetadataRegistry_Sources(t *testing.T) {
	c := New()

	// Describer
	class, err := c.Class((*hooked)(nil))
	require.NoError(t, err)
	assert.Len(t, class.Points, 3)

	// tags
	class, err = c.Class(reflect.TypeOf(&tagged{}))
	require.NoError(t, err)
	assert.Len(t, class.Points, 2)

	// external description replaces a cached class
	require.NoError(t, c.Describe((*tagged)(nil), func(b *ClassBuilder) {
		b.Field("Fourth", NamedAuto())
	}))
	class, err = c.Class((*tagged)(nil))
	require.NoError(t, err)
	require.Len(t, class.Points, 1)
	assert.Equal(t, "Fourth", class.Points[0].Name)
}

func TestMetadataRegistry_Cached(t *testing.T) {
	m := newMetadataRegistry()
	typ := reflect.TypeOf(&hooked{})

	var wg sync.WaitGroup
	classes := make([]*Class, 20)
	for i := range classes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			classes[i], _ = m.getOrBuild(typ)
		}(i)
	}
	wg.Wait()

	for _, class := range classes {
		assert.Same(t, classes[0], class)
	}
}

func TestMetadataRegistry_Injectable(t *testing.T) {
	m := newMetadataRegistry()

	assert.True(t, m.injectable(reflect.TypeOf(&hooked{})))
	assert.True(t, m.injectable(reflect.TypeOf(&tagged{})))
	assert.False(t, m.injectable(reflect.TypeOf(&plainService{})))
	assert.False(t, m.injectable(reflect.TypeOf(tagged{})))
	assert.False(t, m.injectable(typeOf[Logger]()))

	m.describe(reflect.TypeOf(&plainService{}), func(b *ClassBuilder) {})
	assert.True(t, m.injectable(reflect.TypeOf(&plainService{})))
}

func TestDescribe_Invalid(t *testing.T) {
	c := New()
	var invalid *InvalidDescriptorError

	assert.ErrorAs(t, c.Describe(plainService{}, func(*ClassBuilder) {}), &invalid)
	assert.ErrorAs(t, c.Describe((*plainService)(nil), nil), &invalid)

	_, err := c.Class(42)
	assert.ErrorAs(t, err, &invalid)
}
