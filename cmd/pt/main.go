package main

import (
	"context"
	"os"

	"pivotalcli/utils"
)

var version = "dev"

func main() {
	defer utils.Sync()

	root := newRootCmd(os.Stdout)
	root.Version = version
	if err := root.ExecuteContext(context.Background()); err != nil {
		utils.LogError("%v", err)
		utils.Sync()
		os.Exit(1)
	}
}
