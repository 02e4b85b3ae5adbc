package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func newEngine(t *testing.T, scripts map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestExpScaleFallback(t *testing.T) {
	e := newEngine(t, nil)
	assert.InDelta(t, 1.0, e.ExpScale(0), 1e-9)
	assert.InDelta(t, 0.01, e.ExpScale(-24), 1e-9)
	assert.InDelta(t, 4.0, e.ExpScale(24), 1e-9)
	// Out-of-table differences clamp to the edges.
	assert.InDelta(t, 0.01, e.ExpScale(-100), 1e-9)
	assert.InDelta(t, 4.0, e.ExpScale(100), 1e-9)
}

func TestExpScaleFallbackMonotonic(t *testing.T) {
	e := newEngine(t, nil)
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(-30, 30).Draw(t, "a")
		b := rapid.IntRange(-30, 30).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		require.LessOrEqual(t, e.ExpScale(a), e.ExpScale(b))
	})
}

func TestExpScaleLuaOverride(t *testing.T) {
	e := newEngine(t, map[string]string{
		"stats/exp.lua": `function exp_scale(diff) return 2.5 end`,
	})
	assert.InDelta(t, 2.5, e.ExpScale(0), 1e-9)
}

func TestExpScaleBadLuaFallsBack(t *testing.T) {
	e := newEngine(t, map[string]string{
		"stats/exp.lua": `function exp_scale(diff) return "oops" end`,
	})
	assert.InDelta(t, 1.0, e.ExpScale(0), 1e-9)
}

func TestSpellCostFallback(t *testing.T) {
	e := newEngine(t, nil)
	assert.Equal(t, 20, e.SpellCost(skBlast, 100))
	assert.Equal(t, 5, e.SpellCost(skLight, 50))
	assert.Equal(t, 45, e.SpellCost(skGhost, 50))
	assert.Equal(t, 255, e.SpellCost(3, 50), "non-spell skills are priced out")
}

func TestSpellCostLuaOverride(t *testing.T) {
	e := newEngine(t, map[string]string{
		"combat/cost.lua": `function spell_cost(skill, value) return skill + value end`,
	})
	assert.Equal(t, 71, e.SpellCost(skBlast, 50))
}

func TestRankGainFallback(t *testing.T) {
	e := newEngine(t, nil)
	got := e.RankGain(RankGainContext{Kindred: "templar", Rank: 3},
		RankGainResult{HP: 15, End: 10, Mana: 5})
	assert.Equal(t, RankGainResult{HP: 15, End: 10, Mana: 5}, got)
}

func TestRankGainLua(t *testing.T) {
	e := newEngine(t, map[string]string{
		"stats/rank.lua": `
function rank_gain(ctx)
  if ctx.kindred == "harakim" then
    return {hp = 5, ["end"] = 10, mana = 15}
  end
  return {hp = 10, ["end"] = 10, mana = 10}
end`,
	})
	got := e.RankGain(RankGainContext{Kindred: "harakim", Rank: 2}, RankGainResult{})
	assert.Equal(t, RankGainResult{HP: 5, End: 10, Mana: 15}, got)
}

func TestPlayerTickHookDefaultsFalse(t *testing.T) {
	e := newEngine(t, nil)
	assert.False(t, e.PlayerTickHook(1, 10, 10, 0))
}

func TestPlayerTickHookConsumesTurn(t *testing.T) {
	e := newEngine(t, map[string]string{
		"core/tick.lua": `function player_tick(ctx) return ctx.x == 10 end`,
	})
	assert.True(t, e.PlayerTickHook(1, 10, 10, 0))
	assert.False(t, e.PlayerTickHook(1, 11, 10, 0))
}

func TestLoadDirOnlyReadsKnownSubdirs(t *testing.T) {
	e := newEngine(t, map[string]string{
		"ignored/boom.lua": `error("never loaded")`,
		"core/ok.lua":      `loaded = true`,
	})
	assert.NotNil(t, e)
}

func TestBrokenScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "core", "bad.lua"), []byte("this is not lua ("), 0o644))
	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}
