package system

import "github.com/mercia/server/internal/world"

// rankThresholds holds the lifetime-points floor of each rank.
var rankThresholds = [24]int{
	0, 50, 850, 4900, 17700, 48950, 113750, 233800,
	438600, 766650, 1266650, 1998700, 3035500, 4463550,
	6384350, 8915600, 12192400, 16368450, 21617250, 28133300,
	36133300, 49014500, 63000600, 80977100,
}

// rankNames runs Private through Warlord.
var rankNames = [24]string{
	"Private", "Private First Class", "Lance Corporal", "Corporal",
	"Sergeant", "Staff Sergeant", "Master Sergeant", "First Sergeant",
	"Sergeant Major", "Second Lieutenant", "First Lieutenant", "Captain",
	"Major", "Lieutenant Colonel", "Colonel", "Brigadier General",
	"Major General", "Lieutenant General", "General", "Field Marshal",
	"Knight", "Baron", "Earl", "Warlord",
}

// Points2Rank converts lifetime experience points to a rank.
func Points2Rank(points int) int {
	for r := len(rankThresholds) - 1; r > 0; r-- {
		if points >= rankThresholds[r] {
			return r
		}
	}
	return 0
}

// RankName returns the title for a rank.
func RankName(rank int) string {
	if rank < 0 {
		rank = 0
	}
	if rank >= len(rankNames) {
		rank = len(rankNames) - 1
	}
	return rankNames[rank]
}

// Raise cost formulas. v is the current base value, diff the stat's
// difficulty slot; the cost is the price of going from v to v+1.

func AttribNeeded(v, diff int) int {
	return v * v * v * diff / 20
}

func HPNeeded(v, diff int) int {
	return v * diff
}

func EndNeeded(v, diff int) int {
	return v * diff / 2
}

func ManaNeeded(v, diff int) int {
	return v * diff
}

func SkillNeeded(v, diff int) int {
	n := v * v * v * diff / 40
	if n < v {
		return v
	}
	return n
}

// CalcPointsTot recomputes lifetime points from the sheet: what it
// would have cost to train every base value up from its floor.
func CalcPointsTot(ch *world.Character) int {
	pts := 0
	for z := 0; z < world.AttribCount; z++ {
		pts += ch.Attrib[z].Base()
	}
	for m := 50; m < ch.HP.Base(); m++ {
		pts += m/10 + 1
	}
	for m := 50; m < ch.End.Base(); m++ {
		pts += m/10 + 1
	}
	for m := 50; m < ch.Mana.Base(); m++ {
		pts += m/10 + 1
	}
	for z := 0; z < world.MaxSkill; z++ {
		for m := 0; m < ch.Skill[z].Base(); m++ {
			pts += m/10 + 1
		}
	}
	return pts
}
