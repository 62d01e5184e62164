package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	server "gallery/src/server"
)

func main() {
	config, log, err := server.Bootstrap("user-service")
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := server.NewClaimSource(ctx, config)
	if err != nil {
		log.WithError(err).Fatal("can not set up authentication")
	}

	router := server.NewUserRouter(config, log, source)
	if err := server.Run(ctx, config, router, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
