package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/medvault/internal/server"
	"github.com/dmitrijs2005/medvault/internal/server/config"
)

func main() {
	// A missing .env file is fine; deployments set real environment variables.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
