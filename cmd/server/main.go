package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sugarbeard/sugarbeardd/internal/alarmschedule"
	"github.com/sugarbeard/sugarbeardd/internal/authseam"
	"github.com/sugarbeard/sugarbeardd/internal/config"
	"github.com/sugarbeard/sugarbeardd/internal/daemonconfig"
	"github.com/sugarbeard/sugarbeardd/internal/eventbus"
	"github.com/sugarbeard/sugarbeardd/internal/history"
	"github.com/sugarbeard/sugarbeardd/internal/hostsensors"
	"github.com/sugarbeard/sugarbeardd/internal/httpapi"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/mdns"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/internal/orchestrator"
	"github.com/sugarbeard/sugarbeardd/internal/rtc"
	"github.com/sugarbeard/sugarbeardd/internal/transport/tcp"
	"github.com/sugarbeard/sugarbeardd/pkg/debug"
	"github.com/sugarbeard/sugarbeardd/pkg/version"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configFile  = flag.String("config", "", "Path to daemon.yaml")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		os.Exit(0)
	}

	log := newLogger()
	log.Infof("starting sugarbeardd %s", version.GetFullVersion())
	if version.IsDevBuild() {
		log.Warn("running a dev build with no release tag set via ldflags")
	}

	dcfg, err := daemonconfig.Load(*configFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load daemon configuration")
	}
	applyLogLevel(log, dcfg.Logging)

	mdl, err := model.ParseModel(dcfg.Bus.Model)
	if err != nil {
		log.WithError(err).Warn("unrecognized model in daemon config, defaulting to PiSugar 3")
		mdl = model.V3
	}

	batAddr := mdl.DefaultBatteryAddr()
	bus, err := i2cbus.Open(dcfg.Bus.Index, batAddr)
	if err != nil {
		log.WithError(err).Fatal("failed to open i2c bus")
	}
	defer bus.Close()

	policy, err := config.Load(dcfg.Policy.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to load policy document")
	}

	trace := debug.New(log, debug.Config{Enabled: dcfg.Debug.Enabled, Components: dcfg.Debug.Components})
	events := eventbus.New()

	core := orchestrator.New(mdl, bus, policy, dcfg.Policy.Path, events, log, trace)
	core.SetTemperatureReader(hostsensors.New())
	core.SetAlarmScheduler(alarmSchedulerAdapter{})

	metrics := httpapi.NewMetrics()
	core.OnTick(metrics.ObservePollDuration)

	secret, err := loadOrCreateJWTSecret(dcfg.Auth.SecretPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load jwt signing secret")
	}
	seam := authseam.New(secret)

	var store *history.Store
	if dcfg.History.Path != "" {
		store, err = history.Open(dcfg.History.Path, dcfg.History.MigrationsPath, dcfg.History.Retention, log)
		if err != nil {
			log.WithError(err).Warn("failed to open telemetry history store, continuing without it")
			store = nil
		} else {
			defer store.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go core.Run()
	defer core.Stop()

	if store != nil {
		go recordHistory(ctx, core, store, log)
	}

	wireServer := tcp.New(dcfg.Listen.TCP, core, events, log)
	go func() {
		if err := wireServer.Serve(ctx); err != nil {
			log.WithError(err).Error("tcp wire server stopped")
		}
	}()

	router := httpapi.NewRouter(core, events, seam, metrics, log)
	httpSrv := &http.Server{
		Addr:         dcfg.Listen.HTTP,
		Handler:      router.Engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.WithField("addr", dcfg.Listen.HTTP).Info("http status server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	var advertiser *mdns.Advertiser
	if dcfg.Listen.MDNS {
		advertiser, err = startMDNS(dcfg, log)
		if err != nil {
			log.WithError(err).Warn("mdns advertisement failed to start")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if advertiser != nil {
		advertiser.Shutdown()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server forced to shutdown")
	}

	cancel()
	log.Info("shutdown complete")
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

func applyLogLevel(log *logrus.Logger, cfg daemonconfig.LoggingConfig) {
	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.WithError(err).Warn("invalid log level, keeping info")
		return
	}
	log.SetLevel(lvl)
	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// loadOrCreateJWTSecret reads a persisted signing secret, generating and
// saving a fresh 32-byte one on first run so every restart doesn't
// invalidate outstanding session tokens.
func loadOrCreateJWTSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil && len(data) > 0 {
		return data, nil
	}
	if !os.IsNotExist(err) && err != nil {
		return nil, err
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, err
	}
	return secret, nil
}

func startMDNS(dcfg *daemonconfig.Config, log *logrus.Logger) (*mdns.Advertiser, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "sugarbeardd"
	}
	wirePort, httpPort, err := parsePorts(dcfg.Listen.TCP, dcfg.Listen.HTTP)
	if err != nil {
		return nil, err
	}
	adv, err := mdns.Start(hostname, wirePort, httpPort)
	if err != nil {
		return nil, err
	}
	log.WithField("instance", hostname).Info("advertising mdns services")
	return adv, nil
}

func parsePorts(tcpAddr, httpAddr string) (int, int, error) {
	wirePort, err := portOf(tcpAddr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse tcp listen addr %q: %w", tcpAddr, err)
	}
	httpPort, err := portOf(httpAddr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse http listen addr %q: %w", httpAddr, err)
	}
	return wirePort, httpPort, nil
}

func portOf(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}

func recordHistory(ctx context.Context, core *orchestrator.Orchestrator, store *history.Store, log *logrus.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	pruneTicker := time.NewTicker(time.Hour)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := store.Record(ctx, core.Snapshot(), now); err != nil {
				log.WithError(err).Debug("failed to record history sample")
			}
		case now := <-pruneTicker.C:
			if _, err := store.Prune(ctx, now); err != nil {
				log.WithError(err).Debug("failed to prune history")
			}
		}
	}
}

// alarmSchedulerAdapter adapts the package-level alarmschedule function to
// the orchestrator.AlarmScheduler interface.
type alarmSchedulerAdapter struct{}

func (alarmSchedulerAdapter) NextOccurrences(t model.RawTime, mask rtc.WeekdayMask, now time.Time, n int) ([]time.Time, error) {
	return alarmschedule.NextOccurrences(t, mask, now, n)
}
