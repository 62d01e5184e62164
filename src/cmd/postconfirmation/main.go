package main

import (
	"context"

	app "gallery/src/app"
	server "gallery/src/server"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	config, log, err := server.Bootstrap("post-confirmation")
	if err != nil {
		panic(err)
	}

	store, err := server.NewStore(context.Background(), config, log)
	if err != nil {
		log.WithError(err).Fatal("can not set up database access")
	}

	lambda.Start(app.NewSignupRecorder(store, log).HandlePostConfirmation)
}
