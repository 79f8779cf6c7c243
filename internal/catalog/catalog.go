// Package catalog holds the static registry of rule properties per
// application. The registry is decoded once from an embedded TOML file and is
// immutable afterwards, so it is safe for concurrent use.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/hbollon/go-edlib"
)

//go:embed properties.toml
var propertiesTOML string

var (
	// ErrUnsupportedProperty indicates a property id or name that the
	// application does not declare.
	ErrUnsupportedProperty = errors.New("unsupported property")

	// ErrUnknownApplication indicates an application that is not registered.
	ErrUnknownApplication = errors.New("unknown application")

	// ErrDuplicateProperty indicates two descriptors sharing an id or name
	// within one application.
	ErrDuplicateProperty = errors.New("duplicate property")
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.8

// ApplicationID identifies the provider application a property belongs to.
type ApplicationID int

// ApplicationPlex is the Plex media server application.
const ApplicationPlex ApplicationID = 0

// ValueType is the type of value a property resolves to.
type ValueType string

const (
	TypeDate     ValueType = "date"
	TypeNumber   ValueType = "number"
	TypeText     ValueType = "text"
	TypeTextList ValueType = "text_list"
	TypeBool     ValueType = "bool"
)

// MediaScope states which library kinds a property applies to.
type MediaScope string

const (
	MediaMovie MediaScope = "movie"
	MediaShow  MediaScope = "show"
	MediaBoth  MediaScope = "both"
)

// Descriptor describes one property.
type Descriptor struct {
	ID            int           `toml:"id"`
	Name          string        `toml:"name"`
	HumanName     string        `toml:"human_name"`
	Type          ValueType     `toml:"type"`
	Media         MediaScope    `toml:"media"`
	ApplicationID ApplicationID `toml:"-"`
}

// Application groups the properties of one provider application.
type Application struct {
	ID         ApplicationID `toml:"id"`
	Key        string        `toml:"key"`
	Name       string        `toml:"name"`
	Properties []Descriptor  `toml:"property"`
}

type file struct {
	Version      int           `toml:"version"`
	Applications []Application `toml:"application"`
}

type registry struct {
	app    Application
	byID   map[int]Descriptor
	byName map[string]Descriptor
}

// Catalog is an immutable property registry.
type Catalog struct {
	version int
	apps    map[ApplicationID]*registry
	keys    map[string]ApplicationID
}

// Load decodes the embedded property list.
func Load() (*Catalog, error) {
	return Parse(propertiesTOML)
}

// Parse decodes a property list in TOML form.
func Parse(data string) (*Catalog, error) {
	var f file
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(f.Version, f.Applications)
}

// New builds a catalog from application definitions. Ids and names must be
// unique within an application.
func New(version int, apps []Application) (*Catalog, error) {
	c := &Catalog{
		version: version,
		apps:    make(map[ApplicationID]*registry, len(apps)),
		keys:    make(map[string]ApplicationID, len(apps)),
	}

	for _, app := range apps {
		if _, ok := c.apps[app.ID]; ok {
			return nil, fmt.Errorf("application %d defined twice", app.ID)
		}
		reg := &registry{
			app:    app,
			byID:   make(map[int]Descriptor, len(app.Properties)),
			byName: make(map[string]Descriptor, len(app.Properties)),
		}
		for _, d := range app.Properties {
			d.ApplicationID = app.ID
			if _, ok := reg.byID[d.ID]; ok {
				return nil, fmt.Errorf("%s id %d: %w", app.Name, d.ID, ErrDuplicateProperty)
			}
			if _, ok := reg.byName[d.Name]; ok {
				return nil, fmt.Errorf("%s name %q: %w", app.Name, d.Name, ErrDuplicateProperty)
			}
			reg.byID[d.ID] = d
			reg.byName[d.Name] = d
		}
		c.apps[app.ID] = reg
		if app.Key != "" {
			c.keys[app.Key] = app.ID
		}
	}
	return c, nil
}

// Version returns the version of the property list.
func (c *Catalog) Version() int {
	return c.version
}

// ApplicationByKey resolves an application key such as "plex".
func (c *Catalog) ApplicationByKey(key string) (ApplicationID, error) {
	id, ok := c.keys[key]
	if !ok {
		return 0, fmt.Errorf("%q: %w", key, ErrUnknownApplication)
	}
	return id, nil
}

// Lookup returns the descriptor with the given id.
func (c *Catalog) Lookup(app ApplicationID, id int) (Descriptor, error) {
	reg, ok := c.apps[app]
	if !ok {
		return Descriptor{}, fmt.Errorf("application %d: %w", app, ErrUnknownApplication)
	}
	d, ok := reg.byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%s property %d: %w", reg.app.Name, id, ErrUnsupportedProperty)
	}
	return d, nil
}

// LookupName returns the descriptor with the given canonical name.
func (c *Catalog) LookupName(app ApplicationID, name string) (Descriptor, error) {
	reg, ok := c.apps[app]
	if !ok {
		return Descriptor{}, fmt.Errorf("application %d: %w", app, ErrUnknownApplication)
	}
	d, ok := reg.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%s property %q: %w", reg.app.Name, name, ErrUnsupportedProperty)
	}
	return d, nil
}

// Properties returns the descriptors of an application ordered by id.
func (c *Catalog) Properties(app ApplicationID) []Descriptor {
	reg, ok := c.apps[app]
	if !ok {
		return nil
	}
	out := make([]Descriptor, 0, len(reg.byID))
	for _, d := range reg.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Suggest returns the closest known property name for a mistyped one.
func (c *Catalog) Suggest(app ApplicationID, name string) (string, bool) {
	reg, ok := c.apps[app]
	if !ok || name == "" {
		return "", false
	}

	var best string
	var bestScore float32
	for candidate := range reg.byName {
		score := edlib.JaroWinklerSimilarity(name, candidate)
		if score > bestScore || (score == bestScore && candidate < best) {
			best, bestScore = candidate, score
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}
