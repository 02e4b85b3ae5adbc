package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mercia/server/internal/world"
)

// StatSpec is the YAML form of a six-value stat tuple. Only base, max and
// difficulty are data; bonus and the computed slots start at zero.
type StatSpec struct {
	Base int `yaml:"base"`
	Max  int `yaml:"max"`
	Diff int `yaml:"diff"`
}

func (s StatSpec) tuple() world.Stat {
	return world.Stat{s.Base, 0, s.Max, s.Diff, 0, 0}
}

// CharTemplate holds static data for a character archetype loaded from
// YAML, players and NPCs alike.
type CharTemplate struct {
	ID      int      `yaml:"id"`
	Name    string   `yaml:"name"`
	Kindred []string `yaml:"kindred"`
	Flags   []string `yaml:"flags"`

	Braveness StatSpec `yaml:"braveness"`
	Willpower StatSpec `yaml:"willpower"`
	Intuition StatSpec `yaml:"intuition"`
	Agility   StatSpec `yaml:"agility"`
	Strength  StatSpec `yaml:"strength"`

	HP   StatSpec `yaml:"hp"`
	End  StatSpec `yaml:"end"`
	Mana StatSpec `yaml:"mana"`

	Skills map[int]StatSpec `yaml:"skills"`

	Luck      int    `yaml:"luck"`
	Mode      string `yaml:"mode"` // slow / normal / fast
	GethitDam int    `yaml:"gethit_dam"`
	Sprite    int    `yaml:"sprite"`
	HelpGroup int    `yaml:"help_group"`

	kindredMask uint64
	flagMask    uint64
}

// SpawnEntry places one character template on the map at boot.
type SpawnEntry struct {
	TemplateID int      `yaml:"template_id"`
	X          int      `yaml:"x"`
	Y          int      `yaml:"y"`
	Dir        int      `yaml:"dir"`
	Patrol     [][2]int `yaml:"patrol"`
}

type charListFile struct {
	Characters []CharTemplate `yaml:"characters"`
}

type spawnListFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// CharTemplateTable holds all character templates indexed by ID.
type CharTemplateTable struct {
	templates map[int]*CharTemplate
}

// LoadCharTemplates loads character templates from a YAML file.
func LoadCharTemplates(path string) (*CharTemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read char templates: %w", err)
	}
	var f charListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse char templates: %w", err)
	}
	t := &CharTemplateTable{templates: make(map[int]*CharTemplate, len(f.Characters))}
	for i := range f.Characters {
		tmpl := &f.Characters[i]
		if tmpl.kindredMask, err = parseFlags(tmpl.Kindred, kindredByName, "kindred"); err != nil {
			return nil, fmt.Errorf("template %d: %w", tmpl.ID, err)
		}
		if tmpl.flagMask, err = parseFlags(tmpl.Flags, charFlagByName, "character"); err != nil {
			return nil, fmt.Errorf("template %d: %w", tmpl.ID, err)
		}
		t.templates[tmpl.ID] = tmpl
	}
	return t, nil
}

// Get returns a template by ID, or nil.
func (t *CharTemplateTable) Get(id int) *CharTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *CharTemplateTable) Count() int {
	return len(t.templates)
}

// Apply fills a character sheet from the template. Position and
// inventory stay untouched.
func (tmpl *CharTemplate) Apply(ch *world.Character) {
	ch.Name = tmpl.Name
	ch.Kindred = tmpl.kindredMask
	ch.Flags = tmpl.flagMask

	ch.Attrib[world.AtBraveness] = tmpl.Braveness.tuple()
	ch.Attrib[world.AtWillpower] = tmpl.Willpower.tuple()
	ch.Attrib[world.AtIntuition] = tmpl.Intuition.tuple()
	ch.Attrib[world.AtAgility] = tmpl.Agility.tuple()
	ch.Attrib[world.AtStrength] = tmpl.Strength.tuple()

	ch.HP = tmpl.HP.tuple()
	ch.End = tmpl.End.tuple()
	ch.Mana = tmpl.Mana.tuple()

	for nr, spec := range tmpl.Skills {
		if nr >= 0 && nr < world.MaxSkill {
			ch.Skill[nr] = spec.tuple()
		}
	}

	ch.Luck = tmpl.Luck
	ch.GethitBonus = tmpl.GethitDam
	ch.Data[world.DataHelpGroup] = tmpl.HelpGroup

	switch tmpl.Mode {
	case "slow":
		ch.Mode = world.ModeSlow
	case "fast":
		ch.Mode = world.ModeFast
	default:
		ch.Mode = world.ModeNormal
	}
}

// LoadSpawnList loads the boot-time spawn placements.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	return f.Spawns, nil
}
