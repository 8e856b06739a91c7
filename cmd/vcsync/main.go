package main

import (
	"fmt"
	"log"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/vcsync/vcsync/internal/commands"
	"github.com/vcsync/vcsync/internal/config"
	lambdapkg "github.com/vcsync/vcsync/internal/lambda"
)

var (
	GitSHA   string
	GitDirty string
)

func main() {
	cfg := config.FromEnvironment()

	app, err := commands.NewApp(cfg, GitSHA, GitDirty)
	if err != nil {
		log.Fatalf("Error initializing application: %v", err)
	}

	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		awslambda.Start(lambdapkg.NewHandler(app))
	} else {
		rootCmd := app.NewRootCommand()
		if err := rootCmd.Execute(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := app.SaveCache(); err != nil {
			log.Fatalf("Error saving cache: %v", err)
		}
	}
}
