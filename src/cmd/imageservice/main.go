package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	app "gallery/src/app"
	server "gallery/src/server"
)

func main() {
	config, log, err := server.Bootstrap("image-service")
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := server.NewClaimSource(ctx, config)
	if err != nil {
		log.WithError(err).Fatal("can not set up authentication")
	}
	presigner, err := app.NewMinioS3Client(config.S3)
	if err != nil {
		log.WithError(err).Fatal("can not set up presigner")
	}
	store, err := server.NewStore(ctx, config, log)
	if err != nil {
		log.WithError(err).Fatal("can not set up database access")
	}

	images := app.NewImageService(presigner, store, config.S3.Bucket, config.CloudFront.Domain, log)
	router := server.NewImageRouter(config, log, source, images)
	if err := server.Run(ctx, config, router, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
