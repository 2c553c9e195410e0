package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AaronLay10/WishEngine/internal/api"
	"github.com/AaronLay10/WishEngine/internal/config"
	"github.com/AaronLay10/WishEngine/internal/events"
	"github.com/AaronLay10/WishEngine/internal/fortune"
	"github.com/AaronLay10/WishEngine/internal/logging"
	"github.com/AaronLay10/WishEngine/internal/mqtt"
	"github.com/AaronLay10/WishEngine/internal/remote"
	"github.com/AaronLay10/WishEngine/internal/storage"
	"github.com/AaronLay10/WishEngine/internal/storage/postgres"
	"github.com/AaronLay10/WishEngine/internal/storage/sqlite"
	"github.com/AaronLay10/WishEngine/internal/version"
)

const defaultSQLitePath = "wish_events.db"

func main() {
	configPath := flag.String("config", "configs/service.yaml", "path to service.yaml or service.toml (empty for env only)")
	upstream := flag.String("upstream", "", "forward draws to the evaluator at this base URL instead of drawing locally")
	flag.Parse()

	logging.Init("wish-api")

	if err := run(*configPath, *upstream); err != nil {
		log.Fatal().Err(err).Msg("wish-api failed")
	}
}

func run(configPath, upstream string) error {
	cfg, err := config.LoadServiceConfig(configPath)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api.SetServiceName(cfg.Name())
	api.SetCatalog(catalog)
	if upstream != "" {
		api.SetDrawer(remote.NewClient(upstream, nil), api.ModeRemote)
		log.Info().Str("upstream", upstream).Msg("draws delegated to remote evaluator")
	} else {
		engine, err := fortune.NewEngine(catalog)
		if err != nil {
			return err
		}
		api.SetDrawer(engine, api.ModeLocal)
	}

	events.Emit("info", events.CatalogLoaded, "", map[string]interface{}{
		"machines": len(catalog.Machines),
		"scenes":   len(catalog.Scenes),
		"source":   catalogSource(cfg),
	})
	api.RegisterCheck("catalog", false, func() bool { return true })

	journal, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
	}

	if cfg.MQTTEnabled() {
		client, err := startPublisher(cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect()
	}

	if err := api.InitAuth(); err != nil {
		return err
	}
	api.InitTLS()
	api.InitAlerts(api.AlertConfig{
		WebhookURL: cfg.Alerts.WebhookURL,
		Cooldown:   cfg.AlertCooldown(),
	})
	api.StartAlertMonitor(ctx, 10*time.Second)

	events.Emit("info", events.SystemStartup, "", map[string]interface{}{
		"service": cfg.Name(),
		"version": version.String(),
		"port":    cfg.HTTPPort(),
	})

	err = api.Run(ctx, cfg.HTTPPort())
	events.Emit("info", events.SystemShutdown, "", nil)
	return err
}

func loadCatalog(cfg *config.ServiceConfig) (*fortune.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return config.DefaultCatalog(), nil
	}
	return config.LoadCatalog(cfg.Catalog.Path)
}

func catalogSource(cfg *config.ServiceConfig) string {
	if cfg.Catalog.Path == "" {
		return "embedded"
	}
	return cfg.Catalog.Path
}

// openJournal connects the configured journal and attaches it to the event
// stream. A nil journal with a nil error means none is configured, or an
// optional one could not be opened.
func openJournal(ctx context.Context, cfg *config.ServiceConfig) (storage.Journal, error) {
	var (
		journal storage.Journal
		err     error
	)

	switch cfg.Journal.Driver {
	case "":
		return nil, nil
	case "postgres":
		journal, err = postgres.New(ctx, postgres.Options{DSN: cfg.Journal.DSN, Service: cfg.Name()})
	case "sqlite":
		path := cfg.Journal.DSN
		if path == "" {
			path = defaultSQLitePath
		}
		journal, err = sqlite.Open(path)
	}

	if err != nil {
		if !cfg.Journal.Optional {
			return nil, err
		}
		log.Warn().Err(err).Str("driver", cfg.Journal.Driver).Msg("journal unavailable, continuing without it")
		events.Emit("error", events.JournalError, "", map[string]interface{}{
			"driver": cfg.Journal.Driver,
			"error":  err.Error(),
		})
		return nil, nil
	}

	events.AddSink(journal)
	api.SetJournal(journal)
	name := journal.Name()
	api.RegisterCheck("journal", cfg.Journal.Optional, func() bool {
		return events.Default().SinkHealthy(name)
	})
	log.Info().Str("driver", name).Msg("event journal attached")
	return journal, nil
}

func startPublisher(cfg *config.ServiceConfig) (*mqtt.Client, error) {
	password, err := config.ResolveSecret("WISH_MQTT_PASS")
	if err != nil {
		return nil, err
	}

	client := mqtt.NewClient(mqtt.Options{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTTClientID(),
		Username: cfg.MQTT.Username,
		Password: password,

		PublishTimeout: cfg.MQTT.PublishTimeout,
	})
	client.StartWithRetry()

	events.AddSink(mqtt.NewPublisher(client, cfg.MQTTTopicPrefix()))
	api.RegisterCheck("mqtt", true, client.IsConnected)
	return client, nil
}
