package main

import (
	"fmt"
	"os"

	"gallery/src/infra"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

func main() {
	defer jsii.Close()

	settings, err := infra.ReadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "can not read settings: %v\n", err)
		os.Exit(1)
	}
	props := awscdk.StackProps{Env: settings.Env()}
	name := settings.SystemName

	app := awscdk.NewApp(nil)

	database := infra.NewDatabaseStack(app, name+"-database", &infra.DatabaseStackProps{
		StackProps:   props,
		DatabaseName: settings.DatabaseName,
		Username:     settings.DatabaseUser,
	})
	auth := infra.NewAuthStack(app, name+"-auth", &infra.AuthStackProps{
		StackProps: props,
		Settings:   settings,
		Database:   database,
	})
	images := infra.NewImagesCDNStack(app, name+"-images", &infra.ImagesCDNStackProps{
		StackProps: props,
		Settings:   settings,
	})
	infra.NewImageAPIStack(app, name+"-image-api", &infra.ImageAPIStackProps{
		StackProps: props,
		Settings:   settings,
		Database:   database,
		Auth:       auth,
		Images:     images,
	})
	infra.NewUserAPIStack(app, name+"-user-api", &infra.UserAPIStackProps{
		StackProps: props,
		Settings:   settings,
		Auth:       auth,
	})

	app.Synth(nil)
}
