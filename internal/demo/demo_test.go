package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diorite "github.com/toutaio/toutago-diorite-injector"
)

func newContainer(t *testing.T) *diorite.Container {
	t.Helper()
	c := diorite.New(diorite.WithStrict())
	require.NoError(t, c.InstallModule(Binder{}))
	return c
}

func TestExampleObject(t *testing.T) {
	c := newContainer(t)

	obj := &ExampleObject{}
	require.NoError(t, c.Initialize(obj))
	require.NoError(t, obj.Verify())

	assert.Equal(t, ExampleInvokedPattern, obj.Invoked())
	assert.Equal(t, "Module1 & Module1 & Module2 & essentials & idk & indirect", obj.String())
}

func TestExampleObject_SharedModule2(t *testing.T) {
	c := newContainer(t)

	first, second := &ExampleObject{}, &ExampleObject{}
	require.NoError(t, c.Initialize(first))
	require.NoError(t, c.Initialize(second))

	assert.Same(t, first.Module2, second.Module2)
	assert.NotSame(t, first.Module0, second.Module0)
	assert.NotSame(t, first.Module1, second.Module1)
}

func TestExampleObject_FinalPoints(t *testing.T) {
	c := newContainer(t)

	obj := &ExampleObject{}
	require.NoError(t, c.Initialize(obj))

	var final *diorite.FinalReassignmentError
	require.ErrorAs(t, c.Initialize(obj), &final)
	assert.Equal(t, "Module3", final.Point)
}

func TestExampleObject_MissingBindings(t *testing.T) {
	c := diorite.New()

	obj := &ExampleObject{}
	err := c.Initialize(obj)

	var notFound *diorite.BindingNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Nil(t, obj.Module0)
	assert.Equal(t, []string{"beforeAll"}, obj.Invoked())
}

func TestMethodExampleObject(t *testing.T) {
	c := newContainer(t)

	obj := &MethodExampleObject{}
	require.NoError(t, c.Initialize(obj))
	require.NoError(t, obj.Verify())

	assert.Equal(t, MethodInvokedPattern, obj.Invoked())

	first, err := obj.SomeModuleProvider.GetNotNull()
	require.NoError(t, err)
	second, err := obj.SomeModuleProvider.GetNotNull()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRun(t *testing.T) {
	report, err := Run(diorite.New())
	require.NoError(t, err)

	assert.Equal(t, ExampleInvokedPattern, report.Example)
	assert.Equal(t, MethodInvokedPattern, report.Method)
	assert.Equal(t, "someModule", report.SomeModule)
}

func TestClasses(t *testing.T) {
	classes, err := Classes(diorite.New())
	require.NoError(t, err)
	require.Len(t, classes, 2)

	example := classes[0]
	require.Len(t, example.Points, 6)
	idk, ok := example.Point("idk")
	require.True(t, ok)
	assert.Equal(t, diorite.KeyOf[Module]("idk", Empty), idk.Key())

	method := classes[1]
	require.Len(t, method.Methods, 1)
	assert.Equal(t, "moreModules", method.Methods[0].HookTarget())
	assert.Len(t, method.Methods[0].Params, 5)
}

func TestBinder_NamedModule(t *testing.T) {
	c := newContainer(t)

	m, err := diorite.Make[Module](c, "anything", Empty)
	require.NoError(t, err)
	assert.Equal(t, "anything", m.Name())

	one, err := diorite.Make[Module](c, "module1")
	require.NoError(t, err)
	assert.IsType(t, &ModuleOne{}, one)
}
