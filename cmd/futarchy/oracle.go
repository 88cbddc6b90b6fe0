package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var oracle = cli.Command{
	Name:   "oracle",
	Usage:  "print the governance and oracle identities",
	Action: getOracleAction,
	Subcommands: []*cli.Command{
		{
			Name:  "update",
			Usage: "replace the oracle, governance only",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Usage:    "the address of the new oracle",
					Required: true,
				},
			},
			Action: updateOracleAction,
		},
	},
}

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the settlement balance of an address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "address",
			Usage:    "the address to get the balance of",
			Required: true,
		},
	},
	Action: balanceAction,
}

func getOracleAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.GetOracle(context.Background())
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func updateOracleAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.UpdateOracle(context.Background(), ctx.String("address"))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func balanceAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.GetBalance(context.Background(), ctx.String("address"))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}
