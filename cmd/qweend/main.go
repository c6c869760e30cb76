// Command qweend runs the qween mirror daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"qween/internal/config"
	"qween/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Override logging.level")
	diagnostic := flag.Bool("diagnostic", false, "Debug logging tagged with a run id")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel:   *logLevel,
		Diagnostic: *diagnostic,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
