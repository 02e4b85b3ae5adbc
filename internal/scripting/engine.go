package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the tunable game formulas:
// experience scaling, spell endurance costs, rank level-up gains.
// Single-goroutine access only (game loop). Every entry point has a Go
// fallback so a missing or broken script never stops the simulation.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory is fine; all formulas then run on the
// built-in defaults.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "combat", "stats"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// expScaleTab is the built-in experience multiplier by rank difference,
// indexed by victim_rank - attacker_rank + 24 clamped to [0,48].
var expScaleTab = [49]float64{
	0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01,
	0.02, 0.03, 0.04, 0.05, 0.06, 0.07,
	0.10, 0.15, 0.20, 0.25, 0.33,
	0.50, 0.70, 0.80, 0.90,
	1.00, 1.02, 1.04, 1.08, 1.16, 1.32,
	1.50, 1.75, 2.00, 2.25, 2.50, 2.75, 3.00, 3.25, 3.50, 3.75,
	4.00, 4.00, 4.00, 4.00, 4.00, 4.00, 4.00, 4.00, 4.00,
}

// ExpScale returns the experience multiplier for a kill where the victim
// outranks the attacker by diff ranks (negative when weaker). Lua hook:
// exp_scale(diff) -> number.
func (e *Engine) ExpScale(diff int) float64 {
	idx := diff + 24
	if idx < 0 {
		idx = 0
	}
	if idx > 48 {
		idx = 48
	}
	fallback := expScaleTab[idx]

	fn := e.vm.GetGlobal("exp_scale")
	if fn == lua.LNil {
		return fallback
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LNumber(diff)); err != nil {
		e.log.Error("lua exp_scale error", zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		e.log.Error("lua exp_scale returned non-number")
		return fallback
	}
	return float64(n)
}

// Spell skill numbers the cost table knows. Kept in sync with the skill
// table; the world package owns the canonical constants.
const (
	skMShield  = 11
	skLight    = 14
	skRecall   = 15
	skStun     = 17
	skCurse    = 18
	skBless    = 19
	skIdentify = 20
	skBlast    = 21
	skHeal     = 23
	skGhost    = 24
	skProtect  = 31
	skEnhance  = 32
)

// spellCost is the built-in endurance cost per spell skill.
func spellCost(skill, value int) int {
	switch skill {
	case skBlast:
		return value / 5
	case skIdentify:
		return 50
	case skCurse:
		return 35
	case skBless:
		return 35
	case skEnhance:
		return 15
	case skProtect:
		return 15
	case skLight:
		return 5
	case skStun:
		return 20
	case skHeal:
		return 25
	case skGhost:
		return 45
	case skMShield:
		return 25
	case skRecall:
		return 15
	}
	return 255
}

// SpellCost returns the endurance cost of casting a spell skill at the
// given effective value. Lua hook: spell_cost(skill, value) -> number.
func (e *Engine) SpellCost(skill, value int) int {
	fallback := spellCost(skill, value)

	fn := e.vm.GetGlobal("spell_cost")
	if fn == lua.LNil {
		return fallback
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LNumber(skill), lua.LNumber(value)); err != nil {
		e.log.Error("lua spell_cost error", zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		e.log.Error("lua spell_cost returned non-number")
		return fallback
	}
	return int(n)
}

// RankGainContext describes a character reaching a new rank.
type RankGainContext struct {
	Kindred string // "templar", "harakim", "mercenary", ...
	Rank    int
}

// RankGainResult is the permanent hp/end/mana bonus for one rank.
type RankGainResult struct {
	HP, End, Mana int
}

// RankGain returns the per-rank bonus for a kindred. The caller passes
// the built-in default for the kindred. Lua hook:
// rank_gain(ctx) -> {hp=, end=, mana=}.
func (e *Engine) RankGain(ctx RankGainContext, fallback RankGainResult) RankGainResult {
	fn := e.vm.GetGlobal("rank_gain")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("kindred", lua.LString(ctx.Kindred))
	t.RawSetString("rank", lua.LNumber(ctx.Rank))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua rank_gain error", zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	rt, ok := ret.(*lua.LTable)
	if !ok {
		e.log.Error("lua rank_gain returned non-table")
		return fallback
	}
	return RankGainResult{
		HP:   lInt(rt, "hp"),
		End:  lInt(rt, "end"),
		Mana: lInt(rt, "mana"),
	}
}

// PlayerTickHook runs the optional per-idle-tick player script, slotted
// between the skill and walk goal priorities. It returns true when the
// script consumed the character's turn. Lua hook: player_tick(ctx) -> bool.
func (e *Engine) PlayerTickHook(cn, x, y, status int) bool {
	fn := e.vm.GetGlobal("player_tick")
	if fn == lua.LNil {
		return false
	}

	t := e.vm.NewTable()
	t.RawSetString("cn", lua.LNumber(cn))
	t.RawSetString("x", lua.LNumber(x))
	t.RawSetString("y", lua.LNumber(y))
	t.RawSetString("status", lua.LNumber(status))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua player_tick error", zap.Error(err))
		return false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret == lua.LTrue
}

func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
