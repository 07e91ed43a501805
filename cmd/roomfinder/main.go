package main

import (
	"context"
	"os"

	"roomfinder/internal"
	"roomfinder/internal/cli"
)

func main() {
	factory := func(ctx context.Context, envPath string) (*cli.Services, func() error, error) {
		app, err := internal.NewApp(ctx, envPath)
		if err != nil {
			return nil, nil, err
		}
		return app.Services(), app.Close, nil
	}

	os.Exit(cli.Execute(context.Background(), factory, os.Args[1:], os.Stdout, os.Stderr))
}
