package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arenaworks/server/internal/config"
	"github.com/arenaworks/server/internal/core/event"
	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/data"
	"github.com/arenaworks/server/internal/gameloop"
	"github.com/arenaworks/server/internal/handler"
	gonet "github.com/arenaworks/server/internal/net"
	"github.com/arenaworks/server/internal/net/protocol"
	"github.com/arenaworks/server/internal/persist"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/scripting"
	"github.com/arenaworks/server/internal/system"
	"github.com/arenaworks/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              Arena  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      authoritative physics game server    \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
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

func printSkip(msg string) {
	fmt.Printf("  \033[90m-\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(config.ConfigPath("config/server.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 1. Physics
	printSection("physics")
	pc := cfg.Physics
	adapter, err := physics.NewAdapter(mgl64.Vec3{pc.Gravity[0], pc.Gravity[1], pc.Gravity[2]}, pc.Timestep)
	if err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	printOK(fmt.Sprintf("world ready (step %.4fs)", pc.Timestep))
	fmt.Println()

	worldState := world.NewState(cfg.Game.ChatLogLimit)
	bus := event.NewBus()

	// 2. Optional chat archive
	printSection("database")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var archive *persist.Archive
	if cfg.Database.DSN != "" {
		initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
		defer initCancel()

		db, err := persist.NewDB(initCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(initCtx, db.Pool)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("migrations applied (version %d)", version))

		chatRepo := persist.NewChatRepo(db)
		history, err := chatRepo.LoadRecent(initCtx, cfg.Game.ChatLogLimit)
		if err != nil {
			return fmt.Errorf("load chat history: %w", err)
		}
		worldState.RestoreChat(chatHistory(history))
		printStat("chat history", len(history))

		archive = persist.NewArchive(chatRepo, 64, log)
		go archive.Run(ctx)
	} else {
		printSkip("chat archive disabled (no dsn)")
	}
	fmt.Println()

	// 3. Data and scripts
	printSection("data")
	spawnTable := data.DefaultSpawnTable()
	if cfg.Data.SpawnList != "" {
		spawnTable, err = data.LoadSpawnTable(cfg.Data.SpawnList)
		if err != nil {
			return fmt.Errorf("load spawn table: %w", err)
		}
	}
	printStat("enemy spawns", spawnTable.Count())

	var damage system.ContactDamager = system.FixedDamage(cfg.Game.ContactDamage)
	if cfg.Scripting.Dir != "" {
		luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		damage = system.ScriptedDamage{Engine: luaEngine, Base: cfg.Game.ContactDamage}
		printOK("Lua scripts loaded")
	} else {
		printSkip("scripting disabled")
	}
	fmt.Println()

	// 4. Handlers
	deps := &handler.Deps{
		Config:      cfg,
		Log:         log,
		World:       worldState,
		Physics:     adapter,
		Bus:         bus,
		Broadcaster: handler.NewStateBroadcaster(worldState, log),
		Now:         time.Now,
	}
	reg := protocol.NewRegistry(log)
	handler.RegisterAll(reg, deps)

	// 5. Network
	netServer := gonet.NewServer(cfg.Network, log)
	if err := netServer.Listen(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- netServer.Serve() }()

	// 6. Systems
	system.SubscribeLogging(bus, log)
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewSpawnSystem(worldState, adapter, bus, spawnTable, time.Time{}, time.Now))
	runner.Register(system.NewPhysicsSystem(adapter))
	runner.Register(system.NewCombatSystem(adapter, system.NewCombatResolver(worldState, adapter, bus, damage, log)))
	runner.Register(system.NewTransformSyncSystem(worldState, adapter))
	runner.Register(system.NewActionExpirySystem(worldState, time.Now))
	runner.Register(system.NewOutputSystem(deps.Broadcaster))
	var archiveSys *system.ChatArchiveSystem
	if archive != nil {
		archiveSys = system.NewChatArchiveSystem(bus, archive, cfg.Database.FlushInterval)
		runner.Register(archiveSys)
	}

	loop := gameloop.New(runner, netServer.Events(), reg, handler.NewConnectionRegistry(deps), cfg.Game.TickRate, log)

	// 7. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	printSection("ready")
	printReady(fmt.Sprintf("listening on ws://%s%s", netServer.Addr().String(), cfg.Network.Path))
	printReady(fmt.Sprintf("game loop started (tick: %s, max players: %d)", cfg.Game.TickRate, cfg.Game.MaxPlayers))
	fmt.Println()

	loopCtx, stopLoop := context.WithCancel(ctx)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(loopCtx) }()

	var runErr error
	select {
	case sig := <-shutdownCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serveErr:
		runErr = fmt.Errorf("network: %w", err)
	}

	stopLoop()
	<-loopDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := netServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn("network shutdown", zap.Error(err))
	}

	if archiveSys != nil {
		// deliver chat posted since the last tick, then hand everything over
		bus.SwapBuffers()
		bus.DispatchAll()
		archiveSys.Flush()
		cancel()
		<-archive.Done()
	}

	log.Info("server stopped",
		zap.Uint64("ticks", runner.Ticks()),
		zap.Uint64("physics_steps", adapter.Steps()),
		zap.Int("bodies", adapter.BodyCount()),
	)
	return runErr
}

func chatHistory(rows []persist.ChatRow) []world.ChatMessage {
	out := make([]world.ChatMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, world.ChatMessage{
			PlayerID:  physics.Handle(r.PlayerID),
			Message:   r.Message,
			Timestamp: r.SentAt,
		})
	}
	return out
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
