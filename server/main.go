package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blackjack-roguelike/server/config"
	"blackjack-roguelike/server/content"
	"blackjack-roguelike/server/engine"
	"blackjack-roguelike/server/meta"
	"blackjack-roguelike/server/store"
	"blackjack-roguelike/server/survival"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//
// ===== pretty printing =====
//

var useColor bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
	colCyan   = "\033[36m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func cyan(s string) string { return c(colCyan, s) }
func section(title string) { fmt.Printf("\n%s %s %s\n", dim("──"), bold(title), dim("──")) }

func winnerTag(w engine.Participant) string {
	switch w {
	case engine.Player:
		return good("WIN ")
	case engine.Enemy:
		return bad("LOSS")
	}
	return warn("DRAW")
}

//
// ===== bootstrap =====
//

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	useColor = (os.Getenv("NO_COLOR") == "") && (strings.TrimSpace(os.Getenv("USE_COLOR")) != "0")

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	var migrate, duel, run bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--duel":
			duel = true
		case "--survival":
			run = true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	cat, err := content.Load(cfg.ContentPath)
	if err != nil {
		log.Fatal("load content", zap.Error(err))
	}

	kv, err := store.Connect(cfg.StoreDriver, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal("connect store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer kv.Close()

	if db, ok := kv.(*store.DB); ok && (migrate || cfg.AutoMigrate) {
		if err := store.Migrate(ctx, db); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		log.Info("migrated")
	}
	if migrate {
		return
	}

	app := &App{Cfg: cfg, Catalog: cat, Meta: meta.NewService(kv, cat, log), Log: log}

	switch {
	case duel:
		if err := runDuel(ctx, app, cfg.DuelEnemy, cfg.DuelBattles); err != nil {
			log.Fatal("duel", zap.Error(err))
		}
	case run:
		out, err := app.Survival(ctx, cfg.ProfileID, cfg.DeckSeed)
		if err != nil {
			log.Fatal("survival", zap.Error(err))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		serve(ctx, app)
	}
}

func serve(ctx context.Context, app *App) {
	srv := &http.Server{
		Addr:         ":" + app.Cfg.Port,
		Handler:      Router(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	app.Log.Info("listening", zap.String("addr", "http://localhost:"+app.Cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.Log.Fatal("serve", zap.Error(err))
	}
}

func watchSignals(cancel context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	cancel()
}

//
// ===== duel arena =====
//

// runDuel replays n independent battles of the profile's player against
// enemyID and reports win rate, HP margin and an Elo pair.
func runDuel(ctx context.Context, app *App, enemyID string, n int) error {
	section("DUEL")
	if n <= 0 {
		n = 1
	}
	base, err := app.Cfg.Seed()
	if err != nil {
		return err
	}
	p, err := app.Meta.Load(ctx, app.Cfg.ProfileID)
	if err != nil {
		return err
	}
	player, err := app.Catalog.NewPlayer(meta.ApplyUpgrades(app.Catalog, p))
	if err != nil {
		return err
	}
	enemy, err := app.Catalog.NewEnemy(enemyID)
	if err != nil {
		return err
	}
	fmt.Printf("%s vs %s  %s\n", cyan(player.Name), warn(enemy.Name), dim(fmt.Sprintf("seed=%d battles=%d", base, n)))

	var stats DuelStats
	elo := NewElo(1500, app.Cfg.EloK)
	opts := survival.BattleOptions{MaxRounds: app.Cfg.MaxBattleRounds}
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			fmt.Println(warn("stopped early"))
			break
		}
		res, err := survival.RunBattle(app.system(base+int64(i)), player, enemy, opts)
		if err != nil {
			return fmt.Errorf("battle %d: %w", i+1, err)
		}
		m := stats.Add(res, player.MaxHP, enemy.MaxHP)
		dp, _ := elo.UpdateBattle(m, len(res.Rounds))
		if n <= 20 || (i+1)%(n/10) == 0 {
			fmt.Printf("%s #%-4d rounds=%-3d hp=%d/%d margin=%+.2f elo%+.1f\n",
				winnerTag(res.Winner), i+1, len(res.Rounds), res.PlayerHP, res.EnemyHP, m, dp)
		}
	}
	if stats.Battles == 0 {
		return nil
	}

	section("RESULT")
	lo, hi := WilsonCI95(stats.Wins, stats.Draws, stats.Battles)
	mlo, mhi := BootstrapCI95(stats.Margins, 1000, rand.New(rand.NewSource(base)))
	fmt.Printf("win rate   %s  %s\n", bold(fmt.Sprintf("%.1f%%", 100*stats.WinRate())), dim(fmt.Sprintf("95%% CI [%.1f%%, %.1f%%]", 100*lo, 100*hi)))
	fmt.Printf("record     %d-%d-%d  capped=%d\n", stats.Wins, stats.Losses, stats.Draws, stats.Capped)
	fmt.Printf("hp margin  %+.3f  %s\n", stats.MeanMargin(), dim(fmt.Sprintf("95%% CI [%+.3f, %+.3f]", mlo, mhi)))
	fmt.Printf("rounds     %.1f per battle, %d bust wins\n", stats.RoundsPerBattle(), stats.BustWins)
	fmt.Printf("elo        %s %.0f  %s %.0f\n", cyan(player.Name), elo.Player, warn(enemy.Name), elo.Enemy)
	return nil
}
