// Command logos-node is the delegate process entry point: it loads a
// node's TOML configuration, opens its block store, and (for `dumpconfig`
// and `delegates`) reports on that state without actually running
// consensus. Wiring is intentionally thin per the narrow-collaborator
// pattern used throughout this module — see cmd/berith/config.go for the
// style this is grounded on.
package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/LogosNetwork/logos-core-sub004/internal/config"
	"github.com/LogosNetwork/logos-core-sub004/internal/logutil"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

var configFileFlag = &cli.StringFlag{
	Name:     "config",
	Usage:    "TOML configuration file",
	Required: true,
}

func main() {
	app := &cli.App{
		Name:  "logos-node",
		Usage: "delegate node for the logos consensus core",
		Commands: []*cli.Command{
			dumpConfigCommand,
			delegatesCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		logutil.Crit("logos-node exited with error", "err", err)
	}
}

var dumpConfigCommand = &cli.Command{
	Name:  "dumpconfig",
	Usage: "show the effective configuration as TOML",
	Flags: []cli.Flag{configFileFlag},
	Action: func(ctx *cli.Context) error {
		cfg, err := config.Load(ctx.String("config"))
		if err != nil {
			return err
		}
		return config.Dump(os.Stdout, cfg)
	},
}

var delegatesCommand = &cli.Command{
	Name:  "delegates",
	Usage: "list the committee recorded in the node's block store, most recent epoch",
	Flags: []cli.Flag{configFileFlag},
	Action: func(ctx *cli.Context) error {
		cfg, err := config.Load(ctx.String("config"))
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		db, err := store.Open(cfg.Node.DataDir + "/chaindata")
		if err != nil {
			return err
		}
		defer db.Close()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Index", "Account", "Vote Weight", "Stake"})

		err = db.Read(func(tx *store.Tx) error {
			tip, ok := tx.GetEpochTip()
			if !ok {
				return fmt.Errorf("no epoch block recorded yet")
			}
			eb, ok, err := tx.GetEpochBlock(tip)
			if err != nil || !ok {
				return err
			}
			for i, d := range eb.Delegates {
				table.Append([]string{
					fmt.Sprint(i),
					fmt.Sprintf("%x", d.Account),
					fmt.Sprint(d.VoteWeight),
					d.Stake.String(),
				})
			}
			return nil
		})
		if err != nil {
			return err
		}
		table.Render()
		return nil
	},
}
