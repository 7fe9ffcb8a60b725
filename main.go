// Package main is the entry point for the mpx application.
package main

import (
	"github.com/mpx-cli/mpx/cmd"
	"github.com/mpx-cli/mpx/config"
	"github.com/mpx-cli/mpx/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
