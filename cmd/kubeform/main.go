package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kubeform/kubeform/cmd/kubeform/commands"
	"github.com/kubeform/kubeform/version"
)

func main() {
	app := cli.NewApp()
	app.Name = "kubeform"
	app.Usage = "Provision managed Kubernetes clusters"
	app.EnableBashCompletion = true
	app.Version = version.Version
	commandSets := [][]*cli.Command{
		commands.ProvisionCommands,
		commands.InfoCommands,
	}
	for _, cmds := range commandSets {
		app.Commands = append(app.Commands, cmds...)
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
