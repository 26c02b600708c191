package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/berith-foundation/posnode/chain"
	"github.com/berith-foundation/posnode/common"
	"github.com/berith-foundation/posnode/portfolio"
	"github.com/berith-foundation/posnode/status"
	"github.com/berith-foundation/posnode/tracker"
)

var statusCommand = cli.Command{
	Action: printStatus,
	Name:   "status",
	Usage:  "print the tracker state, height, and an example pessimistic portfolio",
}

// printStatus renders a snapshot table. Wiring this to the running node's
// actual status.Tracker/portfolio.Portfolios (over IPC or similar) is left
// to the collaborator layer (no HTTP admin surface is in scope here); this
// command demonstrates the presentation path against a freshly constructed,
// empty snapshot.
func printStatus(ctx *cli.Context) error {
	t := tracker.New(status.Normal{MainFork: chain.NewFork(chain.WavesBlock{})}, 0)
	p := portfolio.New()

	cur := t.Current()
	normal, isNormal := cur.(status.Normal)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"field", "value"})

	stateLabel := color.YellowString("unknown")
	height := uint32(0)
	if isNormal {
		stateLabel = color.GreenString("normal")
		height = normal.MainFork.Height()
	}

	table.Append([]string{"state", stateLabel})
	table.Append([]string{"height", itoa(height)})
	table.Append([]string{"aggregated portfolio (example address)", formatAggregate(p, common.Address{})})

	table.Render()
	return nil
}

func itoa(h uint32) string {
	return color.CyanString("%d", h)
}

func formatAggregate(p *portfolio.Portfolios, addr common.Address) string {
	agg := p.GetAggregated(addr)
	if len(agg) == 0 {
		return color.New(color.Faint).Sprint("(none)")
	}
	out := ""
	for asset, amount := range agg {
		out += asset.String() + "=" + itoa64(amount) + " "
	}
	return out
}

func itoa64(v int64) string {
	return color.CyanString("%d", v)
}
