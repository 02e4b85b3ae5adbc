package system

import (
	"go.uber.org/zap"

	"github.com/mercia/server/internal/data"
	"github.com/mercia/server/internal/scripting"
	"github.com/mercia/server/internal/world"
)

// Game bundles the simulation state with everything the systems need to
// run it: formula scripts, data tables, logging. It is the wiring hub
// the tick systems hang off.
type Game struct {
	S     *world.State
	Lua   *scripting.Engine
	Chars *data.CharTemplateTable
	Items *data.ItemTemplateTable
	Log   *zap.Logger

	// Temple is where the gods drop saved and resurrected characters.
	TempleX, TempleY int
}

func NewGame(s *world.State, lua *scripting.Engine, chars *data.CharTemplateTable, items *data.ItemTemplateTable, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	return &Game{
		S:     s,
		Lua:   lua,
		Chars: chars,
		Items: items,
		Log:   log,
	}
}

// SpawnCharacter creates a character from a template and places it.
// Returns 0 when the slot table or the tile is full.
func (g *Game) SpawnCharacter(templateID, x, y int) int {
	tmpl := g.Chars.Get(templateID)
	if tmpl == nil {
		g.Log.Warn("spawn of unknown template", zap.Int("template", templateID))
		return 0
	}
	cn := g.S.AllocChar()
	if cn == 0 {
		return 0
	}
	ch := g.S.Ch(cn)
	tmpl.Apply(ch)
	ch.Dir = world.DxDown
	ch.Data[world.DataTemplate] = templateID
	ch.Data[world.DataSpawnX] = x
	ch.Data[world.DataSpawnY] = y
	ch.Data[world.DataTempleX] = g.TempleX
	ch.Data[world.DataTempleY] = g.TempleY

	g.UpdateChar(cn)
	ch.AHP = ch.HP.Value() * world.PointScale
	ch.AEnd = ch.End.Value() * world.PointScale
	ch.AMana = ch.Mana.Value() * world.PointScale
	ch.PointsTot = CalcPointsTot(ch)
	ch.Data[world.DataRank] = Points2Rank(ch.PointsTot)

	if !g.S.PlaceChar(cn, x, y) {
		*ch = world.Character{}
		return 0
	}
	return cn
}

// CreateItem instantiates an item template off-map.
func (g *Game) CreateItem(templateID int) int {
	tmpl := g.Items.Get(templateID)
	if tmpl == nil {
		g.Log.Warn("create of unknown item template", zap.Int("template", templateID))
		return 0
	}
	in := g.S.AllocItem()
	if in == 0 {
		return 0
	}
	tmpl.Apply(g.S.It(in))
	return in
}

// DropItem puts an item on a tile. Fails when one already lies there.
func (g *Game) DropItem(in, x, y int) bool {
	t := g.S.Map.Tile(x, y)
	if t == nil || t.It != 0 {
		return false
	}
	it := g.S.It(in)
	it.X, it.Y = x, y
	it.Carried = 0
	it.Decay = world.GroundDecay
	t.It = in
	if it.Light[0] != 0 {
		g.S.AddLight(x, y, it.Light[0])
	}
	return true
}

// WearItem puts an item into a character's worn slot and refreshes the
// sheet. The previous occupant, if any, goes back to the inventory.
func (g *Game) WearItem(cn, in, slot int) bool {
	if slot < 0 || slot >= world.WornSlots {
		return false
	}
	ch := g.S.Ch(cn)
	if old := ch.Worn[slot]; old != 0 {
		if !g.invAdd(ch, old) {
			return false
		}
	}
	ch.Worn[slot] = in
	g.S.It(in).Carried = cn
	g.UpdateChar(cn)
	return true
}

// GiveItem puts an item into a character's inventory.
func (g *Game) GiveItem(cn, in int) bool {
	ch := g.S.Ch(cn)
	if !g.invAdd(ch, in) {
		return false
	}
	g.S.It(in).Carried = cn
	return true
}

func (g *Game) invAdd(ch *world.Character, in int) bool {
	for i := 0; i < world.InvSlots; i++ {
		if ch.Item[i] == 0 {
			ch.Item[i] = in
			return true
		}
	}
	return false
}

// AddSpell attaches a spell item to a character's spell slots, replacing
// an older casting of the same skill. Returns false when all slots are
// taken.
func (g *Game) AddSpell(cn, in int) bool {
	ch := g.S.Ch(cn)
	it := g.S.It(in)
	for i := 0; i < world.SpellSlots; i++ {
		sn := ch.Spell[i]
		if sn != 0 && g.S.It(sn).Temp == it.Temp {
			g.S.FreeItem(sn)
			ch.Spell[i] = in
			it.Carried = cn
			g.UpdateChar(cn)
			return true
		}
	}
	for i := 0; i < world.SpellSlots; i++ {
		if ch.Spell[i] == 0 {
			ch.Spell[i] = in
			it.Carried = cn
			g.UpdateChar(cn)
			return true
		}
	}
	return false
}
