// Command server runs the calendar backend: the gRPC row store plus the
// HTTP health and poster endpoints.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cal/internal/server"
	"github.com/dmitrijs2005/cal/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	if cfg.PrintKeys {
		if err := server.PrintKeys(os.Stdout, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "print keys:", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "start:", err)
		os.Exit(1)
	}
	app.Run(ctx)
}
