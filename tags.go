package diorite

import (
	"strings"
)

const injectTag = "inject"

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip      bool     // Don't inject this field
	optional  bool     // Leave zero if binding not found
	named     bool     // Use the field name as qualifier
	singleton bool     // Point-local singleton
	final     bool     // Never overwrite an assigned value
	name      string   // Named binding to use
	hook      string   // Hook alias
	markers   []Marker // Markers added to the key
}

// parseInjectTag parses an inject struct tag and returns options.
// Supported formats:
//   - `inject:""` - basic injection
//   - `inject:"-"` - skipped
//   - `inject:"optional"` - optional injection
//   - `inject:"name=foo"` - named binding
//   - `inject:"named"` - named after the field
//   - `inject:"singleton"` - one instance for this field
//   - `inject:"final"` - assigned only while zero
//   - `inject:"marker=a|b"` - markers
//   - `inject:"hook=alias"` - hook target alias
//   - `inject:"optional,name=foo"` - combined options
func parseInjectTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "" {
		return opts
	}

	if tag == "-" {
		opts.skip = true
		return opts
	}

	// Split by comma for multiple options
	parts := strings.Split(tag, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)

		switch {
		case part == "optional":
			opts.optional = true
		case part == "named":
			opts.named = true
		case part == "singleton":
			opts.singleton = true
		case part == "final":
			opts.final = true
		case strings.HasPrefix(part, "name="):
			opts.name = strings.TrimPrefix(part, "name=")
		case strings.HasPrefix(part, "hook="):
			opts.hook = strings.TrimPrefix(part, "hook=")
		case strings.HasPrefix(part, "marker="):
			for _, m := range strings.Split(strings.TrimPrefix(part, "marker="), "|") {
				if m = strings.TrimSpace(m); m != "" {
					opts.markers = append(opts.markers, Marker(m))
				}
			}
		}
	}

	return opts
}

// pointOptions converts tag options into point options.
func (o tagOptions) pointOptions() []PointOption {
	var opts []PointOption
	if o.named {
		opts = append(opts, NamedAuto())
	}
	if o.name != "" {
		opts = append(opts, Named(o.name))
	}
	if len(o.markers) > 0 {
		opts = append(opts, WithMarkers(o.markers...))
	}
	if o.singleton {
		opts = append(opts, AsSingleton())
	}
	if o.final {
		opts = append(opts, AsFinal())
	}
	if o.optional {
		opts = append(opts, Optional())
	}
	if o.hook != "" {
		opts = append(opts, HookAlias(o.hook))
	}
	return opts
}
