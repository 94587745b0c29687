package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "datascope:", err)
		os.Exit(1)
	}
}

// logLevel reads DATASCOPE_LOG. Results print to stdout as JSON, so the
// default keeps stderr to warnings and worse; set DATASCOPE_LOG=info or
// debug to watch an analysis run.
func logLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(os.Getenv("DATASCOPE_LOG"))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}
