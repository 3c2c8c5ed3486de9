package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sd "github.com/coreos/go-systemd/v22/daemon"

	"remindd/internal/channel"
	"remindd/internal/channel/intents"
	"remindd/internal/channel/local"
	"remindd/internal/config"
	"remindd/internal/engine"
	"remindd/internal/eventbus"
	"remindd/internal/reminder"
	"remindd/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	boot := logx.NewConsole("info")
	mgr := config.NewManager(cfgPath, boot)
	cfg, err := mgr.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	logSvc, log := logx.New(logxConfig(cfg))
	defer logSvc.Close()

	bus := eventbus.New()
	events, unsub := bus.Subscribe(64)
	defer unsub()
	go func() {
		for e := range events {
			if e.Type == eventbus.TypeDispatchFailed {
				log.Warn("dispatch failure observed", logx.String("type", e.Type), logx.Any("data", e.Data))
				continue
			}
			log.Debug("engine event", logx.String("type", e.Type), logx.Any("data", e.Data))
		}
	}()

	store, err := intents.Open(intentsConfig(cfg), log)
	if err != nil {
		log.Error("intent store open failed", logx.Err(err))
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	localCh := local.New(localConfig(cfg), log, nil)
	source := reminder.NewMemorySource()

	var cloud channel.Cloud
	if store != nil {
		cloud = intents.NewChannel(store, log)
	}

	eng := engine.New(engineConfig(cfg), engine.Options{
		Local:  localCh,
		Cloud:  cloud,
		Store:  store,
		Source: source,
		Bus:    bus,
	}, log)

	if err := eng.Initialize(ctx); err != nil {
		log.Error("engine init failed", logx.Err(err))
		os.Exit(1)
	}

	mgr.OnChange = func(c *config.Config) {
		logSvc.Apply(logxConfig(c))
		eng.Apply(engineConfig(c))
	}
	go mgr.Watch(ctx)

	_, _ = sd.SdNotify(false, sd.SdNotifyReady)
	log.Info("remindd started", logx.String("config", cfgPath))

	<-ctx.Done()
	_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
	eng.Cleanup(context.Background())
	log.Info("remindd stopped")
}
