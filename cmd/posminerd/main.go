// Command posminerd is the node's CLI entrypoint. Its default action loads
// the TOML configuration, logs startup and waits for SIGINT/SIGTERM; it does
// not construct or start the miner, status tracker, or pessimistic
// portfolios. Command layout (global flags, dumpconfig subcommand, TOML
// config file) follows the reference node's cmd/berith entrypoint.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/berith-foundation/posnode/config"
	"github.com/berith-foundation/posnode/log"
)

var configFileFlag = cli.StringFlag{
	Name:  "config",
	Usage: "TOML configuration file",
}

var verboseFlag = cli.BoolFlag{
	Name:  "verbose",
	Usage: "enable debug logging",
}

func main() {
	app := cli.NewApp()
	app.Name = "posminerd"
	app.Usage = "proof-of-stake key-block/micro-block forging node"
	app.Flags = []cli.Flag{configFileFlag, verboseFlag}
	app.Commands = []cli.Command{dumpConfigCommand, statusCommand}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfigFromFlags(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := config.Load(file, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func run(ctx *cli.Context) error {
	if ctx.GlobalBool(verboseFlag.Name) {
		log.SetLevel(log.LevelDebug)
	}

	cfg, err := loadConfigFromFlags(ctx)
	if err != nil {
		return err
	}

	log.Info("starting posminerd", "listen", cfg.Network.ListenAddr, "quorum", cfg.Miner.QuorumSize)

	// Wiring the miner to real History/StateReader/UtxPool/Wallet/Coordinator/
	// AllChannels/PoS collaborators (networking, storage, wallet key
	// management, consensus arithmetic) is outside this module's scope; a
	// production binary assembles those here and calls miner.New(cfg.Miner,
	// ...).Start().
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	return nil
}
