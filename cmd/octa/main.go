// Spins up the octa server, compatible w/ the Redis protocol. With --convert_file it instead converts a single
// decimal numeral file to octal, logs both forms and exits.

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nobletooth/octa/pkg/config"
	"github.com/nobletooth/octa/pkg/numio"
	"github.com/nobletooth/octa/pkg/port"
	"github.com/nobletooth/octa/pkg/storage"
	"github.com/nobletooth/octa/pkg/utils"
)

var (
	printVersion = flag.Bool("print_version", false, "Print the version and exit.")
	convertFile  = flag.String("convert_file", "", "Convert the decimal numeral in this file to octal and exit.")
)

// convert loads the numeral file at `path` and logs its octal digits next to the decimal value they hold.
func convert(path string) error {
	list, err := numio.Load(path)
	if err != nil {
		return err
	}
	slog.Info("Converted numeral file.", "path", path, "octal", list.String(), "digits", list.Len(),
		"decimal", list.ToDecimalString())
	return nil
}

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Octa build info.", "version", utils.Version, "commit", utils.Commit, "build", utils.BuildTime)
		return
	}

	if *convertFile != "" {
		if err := convert(*convertFile); err != nil {
			slog.Error("Failed to convert numeral file.", "path", *convertFile, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() { // Log the termination signal once it arrives.
		<-ctx.Done()
		slog.Info("Received termination signal, cancelling server context.")
	}()

	backend, err := port.NewNumberBackend(storage.NewInMemoryNumberStore())
	if err != nil {
		slog.Error("Failed to create the number backend.", "error", err)
		os.Exit(1)
	}
	if err := port.RunRedisServer(ctx, backend); err != nil {
		slog.Error("Octa server stopped.", "error", err)
		os.Exit(1)
	}
}
