package main

import (
	"context"
	"log"
	"os"

	"github.com/daybook-app/daybook/internal/buildinfo"
	"github.com/daybook-app/daybook/internal/client/cli"
	"github.com/daybook-app/daybook/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
