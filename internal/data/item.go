package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mercia/server/internal/world"
)

// BonusSpec is a two-tier item bonus: worn/inactive tier and active tier.
type BonusSpec struct {
	Passive int `yaml:"passive"`
	Active  int `yaml:"active"`
}

func (b BonusSpec) pair() [2]int {
	return [2]int{b.Passive, b.Active}
}

// ItemTemplate holds static data for an item type loaded from YAML.
type ItemTemplate struct {
	ID    int      `yaml:"id"`
	Name  string   `yaml:"name"`
	Flags []string `yaml:"flags"`

	Armor     BonusSpec `yaml:"armor"`
	Weapon    BonusSpec `yaml:"weapon"`
	GethitDam BonusSpec `yaml:"gethit_dam"`
	Light     BonusSpec `yaml:"light"`

	MaxDamage int `yaml:"max_damage"`

	Braveness BonusSpec `yaml:"braveness"`
	Willpower BonusSpec `yaml:"willpower"`
	Intuition BonusSpec `yaml:"intuition"`
	Agility   BonusSpec `yaml:"agility"`
	Strength  BonusSpec `yaml:"strength"`

	HP   BonusSpec `yaml:"hp"`
	End  BonusSpec `yaml:"end"`
	Mana BonusSpec `yaml:"mana"`

	Skills map[int]BonusSpec `yaml:"skills"`

	Active   int   `yaml:"active"`
	Duration int   `yaml:"duration"`
	Temp     int   `yaml:"temp"`
	Power    int   `yaml:"power"`
	Driver   int   `yaml:"driver"`
	Data     []int `yaml:"data"`
	Value    int   `yaml:"value"`
	Sprite   int   `yaml:"sprite"`

	flagMask uint64
}

type itemListFile struct {
	Items []ItemTemplate `yaml:"items"`
}

// ItemTemplateTable holds all item templates indexed by ID.
type ItemTemplateTable struct {
	templates map[int]*ItemTemplate
}

// LoadItemTemplates loads item templates from a YAML file.
func LoadItemTemplates(path string) (*ItemTemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item templates: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item templates: %w", err)
	}
	t := &ItemTemplateTable{templates: make(map[int]*ItemTemplate, len(f.Items))}
	for i := range f.Items {
		tmpl := &f.Items[i]
		if tmpl.flagMask, err = parseFlags(tmpl.Flags, itemFlagByName, "item"); err != nil {
			return nil, fmt.Errorf("item %d: %w", tmpl.ID, err)
		}
		t.templates[tmpl.ID] = tmpl
	}
	return t, nil
}

// Get returns an item template by ID, or nil.
func (t *ItemTemplateTable) Get(id int) *ItemTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *ItemTemplateTable) Count() int {
	return len(t.templates)
}

// Apply fills an item instance from the template.
func (tmpl *ItemTemplate) Apply(it *world.Item) {
	it.Name = tmpl.Name
	it.Template = tmpl.ID
	it.Flags = tmpl.flagMask

	it.Armor = tmpl.Armor.pair()
	it.Weapon = tmpl.Weapon.pair()
	it.GethitDam = tmpl.GethitDam.pair()
	it.Light = tmpl.Light.pair()
	it.MaxDamage = tmpl.MaxDamage

	it.Attrib[world.AtBraveness] = tmpl.Braveness.pair()
	it.Attrib[world.AtWillpower] = tmpl.Willpower.pair()
	it.Attrib[world.AtIntuition] = tmpl.Intuition.pair()
	it.Attrib[world.AtAgility] = tmpl.Agility.pair()
	it.Attrib[world.AtStrength] = tmpl.Strength.pair()

	it.HP = tmpl.HP.pair()
	it.End = tmpl.End.pair()
	it.Mana = tmpl.Mana.pair()

	for nr, spec := range tmpl.Skills {
		if nr >= 0 && nr < world.MaxSkill {
			it.Skill[nr] = spec.pair()
		}
	}

	it.Active = tmpl.Active
	it.Duration = tmpl.Duration
	it.Temp = tmpl.Temp
	it.Power = tmpl.Power
	it.Driver = tmpl.Driver
	for i, v := range tmpl.Data {
		if i < len(it.Data) {
			it.Data[i] = v
		}
	}
	it.Value = tmpl.Value
	it.Sprite = tmpl.Sprite
}
