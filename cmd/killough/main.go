// Package main is the killough command itself.
package main

import (
	"context"
	"os"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"go.viam.com/killough/cli"
)

var logger = golog.NewDevelopmentLogger("killough")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	return cli.NewApp(os.Stdout, os.Stderr).RunContext(ctx, args)
}
