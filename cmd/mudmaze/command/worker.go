package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pixil98/go-mudmaze/internal/commands"
	"github.com/pixil98/go-mudmaze/internal/driver"
	"github.com/pixil98/go-mudmaze/internal/game"
	"github.com/pixil98/go-mudmaze/internal/listener"
	"github.com/pixil98/go-mudmaze/internal/logging"
	"github.com/pixil98/go-mudmaze/internal/messaging"
	"github.com/pixil98/go-mudmaze/internal/metrics"
	"github.com/pixil98/go-mudmaze/internal/records"
	"github.com/pixil98/go-mudmaze/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}
	ctx := context.Background()

	logger, logCloser, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	slog.SetDefault(logger)

	m := metrics.New()

	// Messaging
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	relay := messaging.NewRelay(natsServer, messaging.WithDeliveryObserver(m))

	// Escape log
	store, err := cfg.Records.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	history, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading escape records: %w", err)
	}
	writer := records.NewWriter(store)

	// World
	maze, err := cfg.Maze.buildMaze()
	if err != nil {
		return nil, fmt.Errorf("creating maze: %w", err)
	}
	filter, err := cfg.Maze.buildChatFilter()
	if err != nil {
		return nil, fmt.Errorf("creating chat filter: %w", err)
	}
	worldOpts, err := cfg.Game.worldOpts()
	if err != nil {
		return nil, fmt.Errorf("configuring game: %w", err)
	}
	worldOpts = append(worldOpts,
		game.WithNotifier(relay),
		game.WithObserver(m),
		game.WithEscapeSink(writer),
		game.WithEscapeHistory(history),
	)
	world, err := game.NewWorld(maze, worldOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}
	slog.Info("maze loaded", "maze", maze.Name(), "escapes", len(history))

	handler, err := commands.NewHandler(world, commands.WithFilter(filter), commands.WithObserver(m))
	if err != nil {
		return nil, fmt.Errorf("creating command handler: %w", err)
	}

	greeting := fmt.Sprintf("You stand before %s.", maze.Name())
	sessions := session.NewManager(handler, natsServer,
		session.WithNameFilter(filter),
		session.WithOutbox(relay),
		session.WithGreeting(greeting),
	)
	cm := listener.NewConnectionManager(sessions, listener.WithConnectionObserver(m))

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm, greeting)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	tick, err := time.ParseDuration(cfg.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}
	d := driver.NewDriver(
		driver.WithTickLength(tick),
		driver.WithManager("metrics", m),
		driver.WithManager("audit", game.NewAuditor(world)),
	)

	workers := service.WorkerList{
		"logging":   closeOnDone{logCloser},
		"nats":      natsServer,
		"relay":     relay,
		"records":   writer,
		"driver":    d,
		"listeners": &listeners,
	}
	if cfg.Metrics.enabled() {
		workers["metrics"] = metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), cfg.Metrics.Path, m)
	}

	return workers, nil
}

// closeOnDone releases a resource when the app shuts down.
type closeOnDone struct {
	c io.Closer
}

func (w closeOnDone) Start(ctx context.Context) error {
	<-ctx.Done()
	return w.c.Close()
}
