package persist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mercia/server/internal/world"
)

// SheetRow is the stored form of a player character sheet. The stat
// tuples travel as JSONB so the schema survives balance changes to the
// skill list.
type SheetRow struct {
	ID          int32
	AccountName string
	Name        string
	Kindred     int64
	X           int32
	Y           int32
	Dir         int16
	Points      int64
	PointsTot   int64
	Rank        int16
	Luck        int32
	GodSaves    int32
	Mode        int16
	AHP         int32
	AEnd        int32
	AMana       int32
	Attribs     [world.AttribCount]world.Stat
	HP          world.Stat
	End         world.Stat
	Mana        world.Stat
	Skills      map[int]world.Stat
	TempleX     int32
	TempleY     int32
}

// NewSheetRow captures the persistent subset of a live character.
func NewSheetRow(ch *world.Character) *SheetRow {
	row := &SheetRow{
		Name:      ch.Name,
		Kindred:   int64(ch.Kindred),
		X:         int32(ch.X),
		Y:         int32(ch.Y),
		Dir:       int16(ch.Dir),
		Points:    int64(ch.Points),
		PointsTot: int64(ch.PointsTot),
		Rank:      int16(ch.Data[world.DataRank]),
		Luck:      int32(ch.Luck),
		GodSaves:  int32(ch.Data[world.DataGodSaves]),
		Mode:      int16(ch.Mode),
		AHP:       int32(ch.AHP),
		AEnd:      int32(ch.AEnd),
		AMana:     int32(ch.AMana),
		Attribs:   ch.Attrib,
		HP:        ch.HP,
		End:       ch.End,
		Mana:      ch.Mana,
		Skills:    map[int]world.Stat{},
		TempleX:   int32(ch.Data[world.DataTempleX]),
		TempleY:   int32(ch.Data[world.DataTempleY]),
	}
	for z := 0; z < world.MaxSkill; z++ {
		if ch.Skill[z][0] != 0 {
			row.Skills[z] = ch.Skill[z]
		}
	}
	return row
}

// Apply writes the stored sheet back onto a live character. Derived
// values are left for the stat engine to rebuild.
func (row *SheetRow) Apply(ch *world.Character) {
	ch.Name = row.Name
	ch.Kindred = uint64(row.Kindred)
	ch.X, ch.Y = int(row.X), int(row.Y)
	ch.Dir = int(row.Dir)
	ch.Points = int(row.Points)
	ch.PointsTot = int(row.PointsTot)
	ch.Data[world.DataRank] = int(row.Rank)
	ch.Luck = int(row.Luck)
	ch.Data[world.DataGodSaves] = int(row.GodSaves)
	ch.Mode = int(row.Mode)
	ch.AHP = int(row.AHP)
	ch.AEnd = int(row.AEnd)
	ch.AMana = int(row.AMana)
	ch.Attrib = row.Attribs
	ch.HP = row.HP
	ch.End = row.End
	ch.Mana = row.Mana
	for z, st := range row.Skills {
		if z >= 0 && z < world.MaxSkill {
			ch.Skill[z] = st
		}
	}
	ch.Data[world.DataTempleX] = int(row.TempleX)
	ch.Data[world.DataTempleY] = int(row.TempleY)
}

type statsBlob struct {
	Attribs [world.AttribCount]world.Stat `json:"attribs"`
	HP      world.Stat                    `json:"hp"`
	End     world.Stat                    `json:"end"`
	Mana    world.Stat                    `json:"mana"`
	Skills  map[int]world.Stat            `json:"skills"`
}

func (row *SheetRow) statsJSON() ([]byte, error) {
	return json.Marshal(statsBlob{
		Attribs: row.Attribs,
		HP:      row.HP,
		End:     row.End,
		Mana:    row.Mana,
		Skills:  row.Skills,
	})
}

func (row *SheetRow) setStats(raw []byte) error {
	var blob statsBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return err
	}
	row.Attribs = blob.Attribs
	row.HP = blob.HP
	row.End = blob.End
	row.Mana = blob.Mana
	row.Skills = blob.Skills
	if row.Skills == nil {
		row.Skills = map[int]world.Stat{}
	}
	return nil
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

const sheetColumns = `id, account_name, name, kindred, x, y, dir,
	        points, points_tot, rank, luck, god_saves, mode,
	        a_hp, a_end, a_mana, temple_x, temple_y, stats`

func scanSheet(row pgx.Row) (*SheetRow, error) {
	c := &SheetRow{}
	var raw []byte
	err := row.Scan(
		&c.ID, &c.AccountName, &c.Name, &c.Kindred, &c.X, &c.Y, &c.Dir,
		&c.Points, &c.PointsTot, &c.Rank, &c.Luck, &c.GodSaves, &c.Mode,
		&c.AHP, &c.AEnd, &c.AMana, &c.TempleX, &c.TempleY, &raw,
	)
	if err != nil {
		return nil, err
	}
	if err := c.setStats(raw); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*SheetRow, error) {
	c, err := scanSheet(r.db.Pool.QueryRow(ctx,
		`SELECT `+sheetColumns+`
		 FROM characters WHERE name = $1 AND deleted_at IS NULL`, name,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CharacterRepo) LoadByAccount(ctx context.Context, accountName string) ([]*SheetRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+sheetColumns+`
		 FROM characters
		 WHERE account_name = $1 AND deleted_at IS NULL
		 ORDER BY id`, accountName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*SheetRow
	for rows.Next() {
		c, err := scanSheet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *CharacterRepo) Create(ctx context.Context, c *SheetRow) error {
	stats, err := c.statsJSON()
	if err != nil {
		return err
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (
			account_name, name, kindred, x, y, dir,
			points, points_tot, rank, luck, god_saves, mode,
			a_hp, a_end, a_mana, temple_x, temple_y, stats
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,
			$13,$14,$15,$16,$17,$18
		) RETURNING id`,
		c.AccountName, c.Name, c.Kindred, c.X, c.Y, c.Dir,
		c.Points, c.PointsTot, c.Rank, c.Luck, c.GodSaves, c.Mode,
		c.AHP, c.AEnd, c.AMana, c.TempleX, c.TempleY, stats,
	).Scan(&c.ID)
}

// Save rewrites every mutable sheet field.
func (r *CharacterRepo) Save(ctx context.Context, c *SheetRow) error {
	stats, err := c.statsJSON()
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx,
		`UPDATE characters SET
			kindred = $1, x = $2, y = $3, dir = $4,
			points = $5, points_tot = $6, rank = $7,
			luck = $8, god_saves = $9, mode = $10,
			a_hp = $11, a_end = $12, a_mana = $13,
			temple_x = $14, temple_y = $15, stats = $16
		WHERE name = $17`,
		c.Kindred, c.X, c.Y, c.Dir,
		c.Points, c.PointsTot, c.Rank,
		c.Luck, c.GodSaves, c.Mode,
		c.AHP, c.AEnd, c.AMana,
		c.TempleX, c.TempleY, stats,
		c.Name,
	)
	return err
}

func (r *CharacterRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE name = $1)`, name,
	).Scan(&exists)
	return exists, err
}

func (r *CharacterRepo) CountByAccount(ctx context.Context, accountName string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM characters WHERE account_name = $1 AND deleted_at IS NULL`,
		accountName,
	).Scan(&count)
	return count, err
}

func (r *CharacterRepo) SoftDelete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET deleted_at = NOW() + INTERVAL '7 days' WHERE name = $1 AND deleted_at IS NULL`,
		name,
	)
	return err
}

func (r *CharacterRepo) HardDelete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM characters WHERE name = $1`, name,
	)
	return err
}
