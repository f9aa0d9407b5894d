package config

import (
	"github.com/km-arc/go-beans/framework/container"
)

// PlaceholderConfigurer is the container extension that substitutes ${key}
// placeholders in string properties of every definition, then registers the
// same resolution on the container for value markers resolved later.
//
//	app.New(app.WithContainerExtension(&config.PlaceholderConfigurer{
//	    Location:       "config/app.env",
//	    UseEnvironment: true,
//	}))
type PlaceholderConfigurer struct {
	// Location is a comma-separated list of KEY=VALUE files.
	Location string
	// UseEnvironment falls back to the process environment for keys the
	// files do not define.
	UseEnvironment bool
}

func (p *PlaceholderConfigurer) PostProcessContainer(c *container.Container) error {
	values, err := LoadValues(SplitList(p.Location)...)
	if err != nil {
		return err
	}
	lookup := values.Lookup
	if p.UseEnvironment {
		lookup = values.WithEnvironment()
	}

	for _, name := range c.SortedNames() {
		def, err := c.Definition(name)
		if err != nil {
			return err
		}
		if def.Properties == nil {
			continue
		}

		var resolved []container.PropertyValue
		for prop, value := range def.Properties.All() {
			if s, ok := value.(string); ok {
				resolved = append(resolved, container.PropertyValue{Name: prop, Value: ResolvePlaceholders(s, lookup)})
			}
		}
		for _, pv := range resolved {
			def.Properties.Add(pv)
		}
	}

	c.AddValueResolver(func(s string) string { return ResolvePlaceholders(s, lookup) })
	c.Logger().Debug("placeholders configured")
	return nil
}
