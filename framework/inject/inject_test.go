package inject_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/inject"
)

type Clock struct {
	Zone string
}

type Audit struct{}

type Greeter struct {
	Greeting string `value:"Hello ${user}"`
	Port     int    `value:"${port}"`
	Clock    *Clock `inject:""`
	clock    *Clock `inject:"clock"`
	Audit    *Audit `inject:",optional"`
	Plain    string
}

type Legacy struct {
	Name  string
	Clock *Clock
}

type conflicting struct {
	Both string `value:"x" inject:""`
}

type needsAudit struct {
	Audit *Audit `inject:""`
}

type Chicken struct {
	Egg *Egg `inject:"egg"`
}

type Egg struct {
	Chicken *Chicken `inject:""`
}

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	t.Cleanup(inject.Reset)

	c := container.New()
	c.AddValueResolver(strings.NewReplacer("${user}", "Ada", "${port}", "8080").Replace)
	c.AddExtension(inject.NewAutowired(c))
	c.Register("clock", container.NewDefinition(container.TypeOf[*Clock](),
		container.WithProperty("Zone", "UTC"),
	))
	return c
}

// ── Describe ──────────────────────────────────────────────────────────────────

func TestDescribe_ReadsTags(t *testing.T) {
	t.Cleanup(inject.Reset)

	d, err := inject.Describe(reflect.TypeOf(&Greeter{}))
	require.NoError(t, err)

	fields := d.Fields()
	require.Len(t, fields, 5)

	tests := []struct {
		name      string
		kind      inject.Kind
		expr      string
		qualifier string
		optional  bool
	}{
		{"Greeting", inject.KindValue, "Hello ${user}", "", false},
		{"Port", inject.KindValue, "${port}", "", false},
		{"Clock", inject.KindDependency, "", "", false},
		{"clock", inject.KindDependency, "", "clock", false},
		{"Audit", inject.KindDependency, "", "", true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields[i]
			assert.Equal(t, tt.name, f.Name)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.expr, f.Expr)
			assert.Equal(t, tt.qualifier, f.Qualifier)
			assert.Equal(t, tt.optional, f.Optional)
		})
	}
}

func TestDescribe_IsCached(t *testing.T) {
	t.Cleanup(inject.Reset)

	a, err := inject.Describe(reflect.TypeOf(Greeter{}))
	require.NoError(t, err)
	b, err := inject.Describe(reflect.TypeOf(&Greeter{}))
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestDescribe_Errors(t *testing.T) {
	t.Cleanup(inject.Reset)

	_, err := inject.Describe(reflect.TypeOf(conflicting{}))
	assert.Error(t, err)

	_, err = inject.Describe(reflect.TypeOf(42))
	assert.Error(t, err)
}

func TestRegister_ExplicitDescriptor(t *testing.T) {
	t.Cleanup(inject.Reset)

	err := inject.Register(reflect.TypeOf(Legacy{}), inject.NewDescriptor().
		Value("name", "${user}").
		Inject("Clock", "clock"))
	require.NoError(t, err)

	d, err := inject.Describe(reflect.TypeOf(&Legacy{}))
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, "Name", d.Fields()[0].Name)
	assert.Equal(t, []int{0}, d.Fields()[0].Index)
}

func TestRegister_UnknownField(t *testing.T) {
	t.Cleanup(inject.Reset)

	err := inject.Register(reflect.TypeOf(Legacy{}), inject.NewDescriptor().Value("Missing", "x"))
	assert.Error(t, err)
}

// ── Autowired ─────────────────────────────────────────────────────────────────

func TestAutowired_InjectsMarkedFields(t *testing.T) {
	c := newContainer(t)
	c.Register("greeter", container.NewDefinition(container.TypeOf[*Greeter]()))

	g, err := container.Resolve[*Greeter](c, "greeter")
	require.NoError(t, err)

	clock, err := container.Resolve[*Clock](c, "clock")
	require.NoError(t, err)

	assert.Equal(t, "Hello Ada", g.Greeting)
	assert.Equal(t, 8080, g.Port)
	assert.Same(t, clock, g.Clock)
	assert.Same(t, clock, g.clock)
	assert.Nil(t, g.Audit)
	assert.Empty(t, g.Plain)
}

func TestAutowired_ExplicitDescriptor(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, inject.Register(reflect.TypeOf(Legacy{}), inject.NewDescriptor().
		Value("Name", "${user}").
		Inject("Clock", "clock")))
	c.Register("legacy", container.NewDefinition(container.TypeOf[*Legacy]()))

	l, err := container.Resolve[*Legacy](c, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "Ada", l.Name)
	require.NotNil(t, l.Clock)
	assert.Equal(t, "UTC", l.Clock.Zone)
}

func TestAutowired_MissingRequiredDependency(t *testing.T) {
	c := newContainer(t)
	c.Register("needy", container.NewDefinition(container.TypeOf[*needsAudit]()))

	_, err := c.Resolve("needy")
	assert.ErrorIs(t, err, container.ErrPropertyAssignment)
	assert.ErrorIs(t, err, container.ErrAmbiguousType)
}

func TestAutowired_CircularDependencyFails(t *testing.T) {
	tests := []struct {
		name  string
		start string
	}{
		{"by name first", "chicken"},
		{"by type first", "egg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContainer(t)
			c.Register("chicken", container.NewDefinition(container.TypeOf[*Chicken]()))
			c.Register("egg", container.NewDefinition(container.TypeOf[*Egg]()))

			_, err := c.Resolve(tt.start)
			require.Error(t, err)
			assert.ErrorIs(t, err, container.ErrCircularDependency)
			assert.ErrorIs(t, err, container.ErrPropertyAssignment)
			assert.False(t, c.ContainsSingleton("chicken"))
			assert.False(t, c.ContainsSingleton("egg"))
		})
	}
}

func TestAutowired_ResolvesOutsideConstruction(t *testing.T) {
	c := newContainer(t)
	g := &Greeter{}

	pvs, err := inject.NewAutowired(c).ProcessProperties(container.NewPropertyValues(), g, "manual")
	require.NoError(t, err)
	assert.Equal(t, "UTC", g.Clock.Zone)
	assert.Same(t, g.Clock, g.clock)
	assert.Equal(t, 4, pvs.Len())
}

func TestAutowired_AsDefinitionReceivesContainer(t *testing.T) {
	t.Cleanup(inject.Reset)

	c := container.New()
	c.Register("autowired", container.NewDefinition(container.TypeOf[*inject.Autowired]()))
	c.Register("clock", container.NewDefinition(container.TypeOf[*Clock]()))
	c.Register("legacy", container.NewDefinition(container.TypeOf[*Legacy]()))
	require.NoError(t, inject.Register(reflect.TypeOf(Legacy{}), inject.NewDescriptor().Inject("Clock", "")))

	ext, err := container.Resolve[*inject.Autowired](c, "autowired")
	require.NoError(t, err)
	c.AddExtension(ext)

	l, err := container.Resolve[*Legacy](c, "legacy")
	require.NoError(t, err)
	assert.NotNil(t, l.Clock)
}
