package survival

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"

	"loopplanner/internal/domain/arearesource"
	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/worldevent"
)

const DefaultActionTime = 1.0

// ItemList accepts either a single item name or a list of names.
type ItemList []string

func (l *ItemList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		if one == "" {
			*l = nil
			return nil
		}
		*l = ItemList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("inventory must be a string or a list of strings")
	}
	*l = many
	return nil
}

type ActionDefinition struct {
	Time                float64                  `json:"time,omitempty" jsonschema:"minimum=0,description=Base duration in seconds"`
	Location            string                   `json:"location,omitempty" jsonschema:"description=Location the action moves the actor to"`
	LocationRequirement string                   `json:"locationRequirement,omitempty" jsonschema:"description=Location the actor must be in"`
	Inventory           ItemList                 `json:"inventory,omitempty" jsonschema:"description=Items granted on completion"`
	ExtraConsumption    map[Vital]float64        `json:"extraConsumption,omitempty" jsonschema:"description=Additional per-second drain by vital"`
	LearningType        familiarity.LearningType `json:"learningType,omitempty" jsonschema:"enum=fast,enum=slow"`
}

type ResourceSpec struct {
	Initial float64  `json:"initial"`
	Maximum *float64 `json:"maximum,omitempty"`
}

type AreaResourceConfig struct {
	Resources  map[string]ResourceSpec `json:"resources,omitempty"`
	Generators map[string]float64      `json:"generators,omitempty"`
}

// LocationDefinition accepts a bare name or an object with a name field.
type LocationDefinition struct {
	Name          string              `json:"name"`
	AreaResources *AreaResourceConfig `json:"areaResources,omitempty"`
}

func (d *LocationDefinition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*d = LocationDefinition{Name: name}
		return nil
	}
	type plain LocationDefinition
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = LocationDefinition(p)
	return nil
}

// Catalog is the read-only game data a simulation runs against.
type Catalog struct {
	Actions   map[string]ActionDefinition `json:"actions"`
	Locations []LocationDefinition        `json:"locations"`
	Events    []worldevent.Definition     `json:"events"`

	normalized bool
}

// Normalize returns a copy with action defaults resolved.
func (c Catalog) Normalize() Catalog {
	out := Catalog{
		Actions:    make(map[string]ActionDefinition, len(c.Actions)),
		Locations:  append([]LocationDefinition(nil), c.Locations...),
		Events:     append([]worldevent.Definition(nil), c.Events...),
		normalized: true,
	}
	for name, def := range c.Actions {
		out.Actions[name] = normalizeAction(def)
	}
	return out
}

func normalizeAction(def ActionDefinition) ActionDefinition {
	if def.Time <= 0 {
		def.Time = DefaultActionTime
	}
	def.LearningType = def.LearningType.Normalize()
	def.Inventory = append(ItemList(nil), def.Inventory...)
	if len(def.ExtraConsumption) > 0 {
		extra := make(map[Vital]float64, len(def.ExtraConsumption))
		for k, v := range def.ExtraConsumption {
			extra[k] = v
		}
		def.ExtraConsumption = extra
	}
	return def
}

func (c Catalog) Action(name string) (ActionDefinition, bool) {
	def, ok := c.Actions[name]
	if !ok {
		return normalizeAction(ActionDefinition{}), false
	}
	if !c.normalized {
		def = normalizeAction(def)
	}
	return def, true
}

func (c Catalog) HasAction(name string) bool {
	_, ok := c.Actions[name]
	return ok
}

func (c Catalog) ActionNames() []string {
	names := make([]string, 0, len(c.Actions))
	for name := range c.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Catalog) LocationNames() []string {
	names := make([]string, 0, len(c.Locations))
	for _, loc := range c.Locations {
		names = append(names, loc.Name)
	}
	return names
}

// HasLocation is strict: an empty location catalog knows no locations.
func (c Catalog) HasLocation(name string) bool {
	for _, loc := range c.Locations {
		if loc.Name == name {
			return true
		}
	}
	return false
}

// AreaPools flattens every location's shared resources. fallback is used only
// when the location catalog is empty.
func (c Catalog) AreaPools(fallback []arearesource.PoolConfig) []arearesource.PoolConfig {
	if len(c.Locations) == 0 {
		return append([]arearesource.PoolConfig(nil), fallback...)
	}
	var out []arearesource.PoolConfig
	for _, loc := range c.Locations {
		if loc.AreaResources == nil {
			continue
		}
		resources := make([]string, 0, len(loc.AreaResources.Resources))
		for r := range loc.AreaResources.Resources {
			resources = append(resources, r)
		}
		sort.Strings(resources)
		for _, r := range resources {
			pool := loc.AreaResources.Resources[r]
			out = append(out, arearesource.PoolConfig{
				Location:       loc.Name,
				Resource:       r,
				Initial:        pool.Initial,
				Maximum:        pool.Maximum,
				GenerationRate: loc.AreaResources.Generators[r],
			})
		}
	}
	return out
}
