package source_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/source"
)

type Engine struct {
	Cylinders int
}

type Car struct {
	Brand   string
	Engine  *Engine
	started bool
}

func (c *Car) Start() { c.started = true }
func (c *Car) Stop() error { return nil }

type HTTPServer struct{}

func newTypes(t *testing.T) *source.TypeRegistry {
	t.Helper()
	types := source.NewTypeRegistry()
	require.NoError(t, source.Add[*Engine](types, ""))
	require.NoError(t, source.Add[*Car](types, ""))
	return types
}

// ── TypeRegistry ──────────────────────────────────────────────────────────────

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "engine", source.DefaultName(reflect.TypeOf(&Engine{})))
	assert.Equal(t, "hTTPServer", source.DefaultName(reflect.TypeOf(HTTPServer{})))
}

func TestTypeRegistry(t *testing.T) {
	types := newTypes(t)
	assert.Equal(t, []string{"car", "engine"}, types.Aliases())

	_, err := types.Lookup("truck")
	assert.ErrorIs(t, err, source.ErrUnknownType)

	assert.Error(t, types.Register("bad", reflect.TypeOf(Engine{})))
}

// ── YAMLSource ────────────────────────────────────────────────────────────────

func TestYAMLSource_LoadsDefinitions(t *testing.T) {
	c := container.New()
	src := source.NewYAMLSource(newTypes(t), "testdata/garage.yaml")
	require.NoError(t, src.LoadDefinitions(c))

	assert.Equal(t, []string{"car", "engine", "spare"}, c.SortedNames())

	car, err := c.Definition("car")
	require.NoError(t, err)
	assert.Equal(t, container.TypeOf[*Car](), car.Type)
	assert.Equal(t, container.AutowireByName, car.Autowire)
	assert.Equal(t, "Start", car.InitMethod)
	assert.Equal(t, "Stop", car.DestroyMethod)
	ref, ok := car.Properties.Get("Engine")
	require.True(t, ok)
	assert.Equal(t, container.Reference{Name: "engine"}, ref)

	spare, err := c.Definition("spare")
	require.NoError(t, err)
	assert.True(t, spare.IsPrototype())
	assert.True(t, spare.Lazy)
}

func TestYAMLSource_ComponentsResolve(t *testing.T) {
	c := container.New()
	require.NoError(t, source.NewYAMLSource(newTypes(t), "testdata/garage.yaml").LoadDefinitions(c))

	car, err := container.Resolve[*Car](c, "car")
	require.NoError(t, err)
	assert.Equal(t, "porsche", car.Brand)
	assert.True(t, car.started)
	require.NotNil(t, car.Engine)
	assert.Equal(t, 8, car.Engine.Cylinders)
}

func TestYAMLSource_RejectsDuplicateNames(t *testing.T) {
	c := container.New()
	src := source.NewYAMLSource(newTypes(t), "testdata/garage.yaml", "testdata/duplicate.yaml")

	err := src.LoadDefinitions(c)
	assert.ErrorIs(t, err, source.ErrDuplicateName)
}

func TestYAMLSource_MissingFile(t *testing.T) {
	err := source.NewYAMLSource(newTypes(t), "testdata/nope.yaml").LoadDefinitions(container.New())
	assert.Error(t, err)
}

func TestLoad_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing type",
			doc:     "components:\n  - name: x\n",
			wantErr: source.ErrInvalidDefinition,
			wantMsg: "components[0].type is required",
		},
		{
			name:    "bad scope",
			doc:     "components:\n  - type: engine\n    scope: request\n",
			wantErr: source.ErrInvalidDefinition,
			wantMsg: "scope must be one of",
		},
		{
			name:    "ref and value",
			doc:     "components:\n  - type: car\n    properties:\n      - name: Engine\n        ref: engine\n        value: x\n",
			wantErr: source.ErrInvalidDefinition,
			wantMsg: "cannot be combined",
		},
		{
			name:    "neither ref nor value",
			doc:     "components:\n  - type: car\n    properties:\n      - name: Engine\n",
			wantErr: source.ErrInvalidDefinition,
			wantMsg: "required without",
		},
		{
			name:    "unknown type",
			doc:     "components:\n  - type: truck\n",
			wantErr: source.ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := source.Load(container.New(), newTypes(t), strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDecode_UnknownKey(t *testing.T) {
	_, err := source.Decode(strings.NewReader("components:\n  - type: engine\n    colour: red\n"))
	assert.Error(t, err)
}

func TestDecode_EmptyDocument(t *testing.T) {
	doc, err := source.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Components)
}
