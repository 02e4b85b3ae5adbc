package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercia/server/internal/world"
)

func sampleChar() *world.Character {
	ch := &world.Character{
		Used:    true,
		Name:    "Cirrus",
		Kindred: world.KinMale | world.KinPurple | world.KinTemplar,
		X:       512, Y: 520,
		Dir:       world.DxLeft,
		Points:    1234,
		PointsTot: 56789,
		Luck:      40,
		Mode:      world.ModeFast,
		AHP:       87000, AEnd: 65000, AMana: 31000,
	}
	for z := 0; z < world.AttribCount; z++ {
		ch.Attrib[z] = world.Stat{40 + z, 0, 120, 2, 0, 0}
	}
	ch.HP = world.Stat{90, 20, 250, 2, 0, 0}
	ch.End = world.Stat{80, 20, 250, 2, 0, 0}
	ch.Mana = world.Stat{60, 10, 250, 3, 0, 0}
	ch.Skill[world.SkSword] = world.Stat{35, 0, 100, 2, 0, 0}
	ch.Skill[world.SkMeditate] = world.Stat{12, 0, 90, 3, 0, 0}
	ch.Data[world.DataRank] = 4
	ch.Data[world.DataGodSaves] = 2
	ch.Data[world.DataTempleX] = 512
	ch.Data[world.DataTempleY] = 512
	return ch
}

func TestSheetRowRoundTrip(t *testing.T) {
	ch := sampleChar()
	row := NewSheetRow(ch)

	var back world.Character
	back.Used = true
	row.Apply(&back)

	assert.Equal(t, ch.Name, back.Name)
	assert.Equal(t, ch.Kindred, back.Kindred)
	assert.Equal(t, ch.X, back.X)
	assert.Equal(t, ch.Dir, back.Dir)
	assert.Equal(t, ch.Points, back.Points)
	assert.Equal(t, ch.PointsTot, back.PointsTot)
	assert.Equal(t, ch.Luck, back.Luck)
	assert.Equal(t, ch.Mode, back.Mode)
	assert.Equal(t, ch.AHP, back.AHP)
	assert.Equal(t, ch.Attrib, back.Attrib)
	assert.Equal(t, ch.HP, back.HP)
	assert.Equal(t, ch.Skill[world.SkSword], back.Skill[world.SkSword])
	assert.Equal(t, ch.Data[world.DataRank], back.Data[world.DataRank])
	assert.Equal(t, ch.Data[world.DataTempleX], back.Data[world.DataTempleX])
}

func TestSheetRowSkipsUntrainedSkills(t *testing.T) {
	ch := sampleChar()
	row := NewSheetRow(ch)
	assert.Len(t, row.Skills, 2, "only trained skills travel")
	_, ok := row.Skills[world.SkBlast]
	assert.False(t, ok)
}

func TestStatsBlobRoundTrip(t *testing.T) {
	row := NewSheetRow(sampleChar())
	raw, err := row.statsJSON()
	require.NoError(t, err)

	decoded := &SheetRow{}
	require.NoError(t, decoded.setStats(raw))
	assert.Equal(t, row.Attribs, decoded.Attribs)
	assert.Equal(t, row.HP, decoded.HP)
	assert.Equal(t, row.End, decoded.End)
	assert.Equal(t, row.Mana, decoded.Mana)
	assert.Equal(t, row.Skills, decoded.Skills)
}

func TestSetStatsRejectsGarbage(t *testing.T) {
	row := &SheetRow{}
	assert.Error(t, row.setStats([]byte("{broken")))
}
