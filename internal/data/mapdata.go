package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mercia/server/internal/world"
)

// MapZone paints a rectangle of tiles with flags: arenas, no-fight
// ground, underwater, walls.
type MapZone struct {
	X1    int      `yaml:"x1"`
	Y1    int      `yaml:"y1"`
	X2    int      `yaml:"x2"`
	Y2    int      `yaml:"y2"`
	Flags []string `yaml:"flags"`

	flagMask uint64
}

// TempleSpec marks the resurrection temple characters recall to.
type TempleSpec struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type mapFile struct {
	Zones  []MapZone  `yaml:"zones"`
	Temple TempleSpec `yaml:"temple"`
}

// MapData is the loaded zone list plus landmark tiles.
type MapData struct {
	Zones  []MapZone
	Temple TempleSpec
}

// LoadMapData loads the zone file.
func LoadMapData(path string) (*MapData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map data: %w", err)
	}
	var f mapFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse map data: %w", err)
	}
	for i := range f.Zones {
		z := &f.Zones[i]
		if z.flagMask, err = parseFlags(z.Flags, mapFlagByName, "map"); err != nil {
			return nil, fmt.Errorf("zone %d: %w", i, err)
		}
	}
	return &MapData{Zones: f.Zones, Temple: f.Temple}, nil
}

// Count returns the number of zones.
func (m *MapData) Count() int {
	return len(m.Zones)
}

// Paint applies every zone's flags to the grid.
func (m *MapData) Paint(g *world.Grid) {
	for _, z := range m.Zones {
		for y := z.Y1; y <= z.Y2; y++ {
			for x := z.X1; x <= z.X2; x++ {
				if t := g.Tile(x, y); t != nil {
					t.Flags |= z.flagMask
				}
			}
		}
	}
}
