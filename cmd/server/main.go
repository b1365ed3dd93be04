// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mlundberg/foursouls/internal/cards"
	"github.com/mlundberg/foursouls/internal/config"
	"github.com/mlundberg/foursouls/internal/history"
	"github.com/mlundberg/foursouls/internal/lobby"
	"github.com/mlundberg/foursouls/internal/middleware"
	"github.com/mlundberg/foursouls/internal/netio"
	"github.com/mlundberg/foursouls/internal/registry"
	"github.com/mlundberg/foursouls/internal/ws"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// The catalogue is loaded once and immutable; a bad file is fatal.
	catalog, err := cards.Load(cfg.CardsPath)
	if err != nil {
		log.Fatalf("failed to load card catalogue: %v", err)
	}
	logger.Infof("loaded %d loot templates (%d cards)", len(catalog.LootTemplates()), catalog.DeckSize())

	var historian *history.Publisher
	if cfg.RedisAddr != "" {
		historian, err = history.NewPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.HistorianQueue)
		if err != nil {
			log.Fatalf("failed to connect historian: %v", err)
		}
		defer historian.Close()
		logger.Infof("action history enabled on %s", cfg.RedisAddr)
	}

	// Outbound path: every actor enqueues commands, the command loop
	// is the single writer to the sinks.
	commands := netio.NewCommandChannel()
	manager := netio.NewConnectionManager()
	go netio.RunCommandLoop(commands, manager)

	reg := registry.New(commands, catalog, historian, cfg.ReliablePrivateState)

	lobbyActor := lobby.NewActor(reg, commands, cfg.QuickStart)
	reg.RegisterLobby(lobbyActor.Inbox())
	go lobbyActor.Run()
	if cfg.QuickStart {
		logger.Warn("QUICK_START enabled: games start on the first ready")
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		ws.Handler(logger, reg, commands),
	)))

	addr := ":" + cfg.Port
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
