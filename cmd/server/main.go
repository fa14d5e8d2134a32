package main

import (
	"context"
	"log"

	"github.com/daybook-app/daybook/internal/server"
	"github.com/daybook-app/daybook/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
