package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-beans/framework/container"
)

// Document is the root of a YAML definition file.
type Document struct {
	Components []Component `yaml:"components" validate:"dive"`
}

// Component is one definition entry.
type Component struct {
	Name          string     `yaml:"name"`
	Type          string     `yaml:"type" validate:"required"`
	Scope         string     `yaml:"scope" validate:"omitempty,oneof=singleton prototype"`
	Lazy          bool       `yaml:"lazy"`
	InitMethod    string     `yaml:"init"`
	DestroyMethod string     `yaml:"destroy"`
	Autowire      string     `yaml:"autowire" validate:"omitempty,oneof=no byName"`
	Properties    []Property `yaml:"properties" validate:"dive"`
}

// Property is either a literal value or a ref to another component.
type Property struct {
	Name  string     `yaml:"name" validate:"required"`
	Value *yaml.Node `yaml:"value"`
	Ref   string     `yaml:"ref"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(Property)
		switch {
		case p.Ref != "" && p.Value != nil:
			sl.ReportError(p.Ref, "ref", "Ref", "excluded_with", "value")
		case p.Ref == "" && p.Value == nil:
			sl.ReportError(p.Value, "value", "Value", "required_without", "ref")
		}
	}, Property{})
	return v
}

// ── YAMLSource ────────────────────────────────────────────────────────────────

// YAMLSource loads definitions from YAML files.
//
//	src := source.NewYAMLSource(types, "config/beans.yaml")
//	application := app.New(app.WithSources(src))
type YAMLSource struct {
	types *TypeRegistry
	paths []string
}

func NewYAMLSource(types *TypeRegistry, paths ...string) *YAMLSource {
	return &YAMLSource{types: types, paths: paths}
}

// LoadDefinitions reads every file in order. A name already present in reg,
// from this or any earlier source, is rejected with ErrDuplicateName.
func (s *YAMLSource) LoadDefinitions(reg container.Registry) error {
	for _, path := range s.paths {
		if err := s.loadFile(reg, path); err != nil {
			return err
		}
	}
	return nil
}

func (s *YAMLSource) loadFile(reg container.Registry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	defer f.Close()

	if err := Load(reg, s.types, f); err != nil {
		return fmt.Errorf("source %s: %w", path, err)
	}
	return nil
}

// Load decodes one YAML document from r and registers its components.
func Load(reg container.Registry, types *TypeRegistry, r io.Reader) error {
	doc, err := Decode(r)
	if err != nil {
		return err
	}
	for i, comp := range doc.Components {
		name, def, err := comp.Definition(types)
		if err != nil {
			return fmt.Errorf("components[%d]: %w", i, err)
		}
		if reg.Contains(name) {
			return fmt.Errorf("components[%d]: %w: %q", i, ErrDuplicateName, name)
		}
		reg.Register(name, def)
	}
	return nil
}

// Decode parses and validates a document. Unknown keys are errors.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, formatValidationError(err)
	}
	return &doc, nil
}

// Definition builds the named definition the entry describes.
func (c Component) Definition(types *TypeRegistry) (string, *container.Definition, error) {
	t, err := types.Lookup(c.Type)
	if err != nil {
		return "", nil, err
	}
	name := c.Name
	if name == "" {
		name = DefaultName(t)
	}

	opts := []container.DefinitionOption{
		container.WithInitMethod(c.InitMethod),
		container.WithDestroyMethod(c.DestroyMethod),
	}
	if c.Scope != "" {
		opts = append(opts, container.WithScope(container.Scope(c.Scope)))
	}
	if c.Lazy {
		opts = append(opts, container.Lazy())
	}
	if c.Autowire == container.AutowireByName.String() {
		opts = append(opts, container.WithAutowire(container.AutowireByName))
	}
	for _, p := range c.Properties {
		if p.Ref != "" {
			opts = append(opts, container.WithReference(p.Name, p.Ref))
			continue
		}
		var value any
		if err := p.Value.Decode(&value); err != nil {
			return "", nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		opts = append(opts, container.WithProperty(p.Name, value))
	}
	return name, container.NewDefinition(t, opts...), nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Document.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, e.Param())
	case "required_without":
		return fmt.Sprintf("%s is required without %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
