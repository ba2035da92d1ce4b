package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-pos-client/internal/config"
	"github.com/jrsteele09/go-pos-client/internal/utils"
	"github.com/rs/zerolog/log"
)

const usage = `usage: posclient <command> [flags]

commands:
  login    -u <username> [-p <password>]   log in and store the session
  logout                                   clear the stored session
  whoami                                   show the logged in user
  stock    [-q term] [-pages n] [-all]     list stock entries
  sales    [-from yyyy-mm-dd] [-to yyyy-mm-dd] [-end-of-day]
                                           list sales, filtered by date
  summary  [-shop id]                      show a shop's performance
`

var errUsage = errors.New("invalid usage")

func main() {
	_ = godotenv.Load()
	c := config.New()
	utils.SetupLogger(os.Stderr, c.GetLogLevel(), c.GetEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, c config.Config, args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}

	a, err := newApp(c, out)
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd(ctx, a, args[1:])
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
