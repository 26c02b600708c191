package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/berith-foundation/posnode/config"
)

var dumpConfigCommand = cli.Command{
	Action:    dumpConfig,
	Name:      "dumpconfig",
	Usage:     "show configuration values",
	ArgsUsage: "",
	Flags:     []cli.Flag{configFileFlag},
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfigFromFlags(ctx)
	if err != nil {
		return err
	}
	out, err := config.Encode(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
