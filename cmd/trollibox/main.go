// Command trollibox connects to an MPD server and keeps a local record of
// what was played.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/polyfloyd/trollibox/src/config"
	"github.com/polyfloyd/trollibox/src/history"
	"github.com/polyfloyd/trollibox/src/mpd"
	"github.com/polyfloyd/trollibox/src/mpd/client"
	"github.com/polyfloyd/trollibox/src/persist"
)

var configPath = flag.String("config", "./trollibox.yaml", "Path to configuration file")

func main() {
	flag.Parse()
	log := logrus.StandardLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("unable to load config")
	}

	if level, parseErr := logrus.ParseLevel(cfg.Logging.Level); parseErr == nil {
		log.SetLevel(level)
	} else {
		log.WithError(parseErr).Warn("unrecognized logging level, defaulting to info")
	}

	store, err := persist.Open(cfg.Persistence.Path)
	if err != nil {
		log.WithError(err).Fatal("unable to open history database")
	}
	defer store.Close()

	mpdCfg := cfg.Mpd
	dial := func() (*client.Session, error) {
		session, err := client.Connect(mpdCfg.Network, mpdCfg.Address)
		if err != nil {
			return nil, err
		}
		if mpdCfg.Password != nil {
			if err := session.Password(*mpdCfg.Password); err != nil {
				session.Close()
				return nil, err
			}
		}
		return session, nil
	}

	handle := mpd.NewHandle(dial, log)
	subHandle := mpd.NewSubscriptionHandle(handle)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	keeper := history.NewKeeper(handle, subHandle, store, log)
	go func() {
		if err := keeper.Run(ctx); err != nil {
			log.WithError(err).Error("history keeper stopped")
		}
	}()

	log.WithField("mpd", mpdCfg.Address).Info("trollibox running")
	<-ctx.Done()
	log.Info("shutting down")
}
