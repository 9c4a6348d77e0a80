package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chamberctl/internal/f4t"
	"chamberctl/internal/handlers"
	"chamberctl/internal/logger"
	"chamberctl/internal/mqtt"
	"chamberctl/internal/repository"
	"chamberctl/internal/repository/db"
	"chamberctl/internal/server"
	"chamberctl/internal/service"

	"github.com/spf13/viper"
)

// @title        chamberctl API
// @version      1.0
// @description  HTTP front end for a Watlow F4T environmental chamber controller.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		panic("error reading config: " + err.Error())
	}
	log := logger.New(viper.GetString("log.level"))

	// open DB
	sqldb, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqldb.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// connect to the chamber controller
	dev, closeDev, err := openChamber(log)
	if err != nil {
		log.Fatalw("failed to connect to chamber", "err", err)
	}
	defer closeDev()

	// telemetry publisher (optional)
	pub, closePub := openPublisher(log)
	defer closePub()

	// wire dependencies
	repos := repository.NewRepository(sqldb)
	services := service.NewService(repos, dev, pub, log, service.Config{
		Loops:          viper.GetIntSlice("chamber.loops"),
		TelemetryTopic: viper.GetString("mqtt.topic"),
		SigningKey:     viper.GetString("auth.signing_key"),
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the telemetry poller (via composed service)
	go services.Poller.Run(ctx, pollInterval())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "chamberctl.db")
	viper.SetDefault("chamber.addr", "localhost:5025")
	viper.SetDefault("chamber.timeout", "1500ms")
	viper.SetDefault("chamber.loops", []int{1, 2})
	viper.SetDefault("poll.interval", "5s")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// openChamber dials the controller's SCPI port and builds the device client.
func openChamber(log *logger.Logger) (*f4t.Controller, func(), error) {
	addr := viper.GetString("chamber.addr")
	timeout := viper.GetDuration("chamber.timeout")
	ch, err := f4t.DialTCP(addr, timeout)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("connected to chamber", "addr", addr, "timeout", timeout)
	dev := f4t.New(ch, log, f4t.Config{Timeout: timeout})
	closeFn := func() {
		if cerr := ch.Close(); cerr != nil {
			log.Errorw("failed to close chamber connection", "err", cerr)
		}
	}
	return dev, closeFn, nil
}

// openPublisher connects to the MQTT broker when one is configured; readings
// are only persisted locally otherwise.
func openPublisher(log *logger.Logger) (mqtt.Publisher, func()) {
	broker := viper.GetString("mqtt.broker")
	if broker == "" {
		log.Infow("mqtt.broker not set; telemetry publishing disabled")
		return mqtt.Noop{}, func() {}
	}
	client, err := mqtt.New(broker, viper.GetString("mqtt.client_id"))
	if err != nil {
		log.Errorw("mqtt connect failed; telemetry publishing disabled", "broker", broker, "err", err)
		return mqtt.Noop{}, func() {}
	}
	log.Infow("connected to mqtt broker", "broker", broker)
	return client, client.Close
}

func pollInterval() time.Duration {
	if d := viper.GetDuration("poll.interval"); d > 0 {
		return d
	}
	return 5 * time.Second
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
