package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-pos-client/internal/config"
	"github.com/jrsteele09/go-pos-client/internal/utils"
	"github.com/jrsteele09/go-pos-client/mockapi"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("running mock api")
	}
	log.Info().Msg("mock api stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	utils.SetupLogger(os.Stderr, c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName() + " mock")

	server, err := mockapi.New(mockapi.DefaultFixtures(time.Now()), mockapi.Options{
		Secret:  []byte(c.GetMockAPISecret()),
		Latency: c.GetMockAPILatency(),
	})
	if err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- listen(server, c.GetMockAPIPort()) }()

	select {
	case err := <-listenErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listen(server *mockapi.Server, addr string) error {
	log.Info().Str("addr", addr).Msg("mock api listening")
	if err := server.Listen(addr); err != nil {
		return fmt.Errorf("server.Listen %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *mockapi.Server) error {
	if err := server.ShutdownWithTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
