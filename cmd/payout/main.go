package main

import (
	"context"
	"log"
	"os"

	"expenses/internal/buildinfo"
	"expenses/internal/payout/cli"
	"expenses/internal/payout/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
