package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mercia/server/internal/config"
	coresys "github.com/mercia/server/internal/core/system"
	"github.com/mercia/server/internal/data"
	"github.com/mercia/server/internal/persist"
	"github.com/mercia/server/internal/scripting"
	"github.com/mercia/server/internal/system"
	"github.com/mercia/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Mercia  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       tick-synchronous world server       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("MERCIA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations. An empty DSN runs
	// the world without persistence, which is what the tools and the
	// tests want.
	var charRepo *persist.CharacterRepo
	if cfg.Database.DSN != "" {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		charRepo = persist.NewCharacterRepo(db)
	}

	// 4. World state and static data
	printSection("data")

	ws := world.NewState(cfg.Simulation.MapX, cfg.Simulation.MapY, cfg.Simulation.Seed, log)

	mapData, err := data.LoadMapData(filepath.Join(cfg.Data.Dir, "map.yaml"))
	if err != nil {
		return fmt.Errorf("load map data: %w", err)
	}
	mapData.Paint(ws.Map)
	printStat("map zones", mapData.Count())

	charTable, err := data.LoadCharTemplates(filepath.Join(cfg.Data.Dir, "characters.yaml"))
	if err != nil {
		return fmt.Errorf("load character templates: %w", err)
	}
	printStat("character templates", charTable.Count())

	itemTable, err := data.LoadItemTemplates(filepath.Join(cfg.Data.Dir, "items.yaml"))
	if err != nil {
		return fmt.Errorf("load item templates: %w", err)
	}
	printStat("item templates", itemTable.Count())

	spawns, err := data.LoadSpawnList(filepath.Join(cfg.Data.Dir, "spawns.yaml"))
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}

	// 5. Lua scripting engine
	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua scripts loaded")

	// 6. Game and initial population
	game := system.NewGame(ws, luaEngine, charTable, itemTable, log)
	game.TempleX = mapData.Temple.X
	game.TempleY = mapData.Temple.Y

	npcCount := spawnAll(game, spawns, log)
	printStat("npcs spawned", npcCount)
	fmt.Println()

	// 7. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventSystem(game))
	runner.Register(system.NewDriverSystem(game))
	runner.Register(system.NewAnimateSystem(game))
	runner.Register(system.NewRegenSystem(game))
	persistSys := system.NewPersistenceSystem(game, charRepo, log, world.Ticks*60*5)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(game))

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("world %dx%d, seed %d", cfg.Simulation.MapX, cfg.Simulation.MapY, cfg.Simulation.Seed))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			persistSys.SaveAllPlayers()
			log.Info("server stopped")
			return nil
		}
	}
}

// spawnAll places every spawn-list entry on the map and wires its
// patrol route into the character data slots.
func spawnAll(game *system.Game, spawns []data.SpawnEntry, log *zap.Logger) int {
	count := 0
	for _, sp := range spawns {
		cn := game.SpawnCharacter(sp.TemplateID, sp.X, sp.Y)
		if cn == 0 {
			log.Warn("spawn failed",
				zap.Int("template", sp.TemplateID),
				zap.Int("x", sp.X), zap.Int("y", sp.Y))
			continue
		}
		ch := game.S.Ch(cn)
		if sp.Dir != 0 {
			ch.Dir = sp.Dir
		}
		for i, wp := range sp.Patrol {
			if i >= 8 {
				break
			}
			ch.Data[world.DataPatrolBase+i*2] = wp[0]
			ch.Data[world.DataPatrolBase+i*2+1] = wp[1]
		}
		count++
	}
	return count
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
