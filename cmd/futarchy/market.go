package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"
)

var (
	proposalFlag = cli.StringFlag{
		Name:     "proposal",
		Usage:    "the hex encoded id of the proposal the market is for",
		Required: true,
	}
	sideFlag = cli.StringFlag{
		Name:     "side",
		Usage:    "the side to trade: yes or no",
		Required: true,
	}
	amountFlag = cli.Uint64Flag{
		Name:     "amount",
		Usage:    "settlement amount to spend when buying, shares to burn when selling",
		Required: true,
	}
	traderFlag = cli.StringFlag{
		Name:     "trader",
		Usage:    "the address of the trader",
		Required: true,
	}
)

var createmarket = cli.Command{
	Name:  "createmarket",
	Usage: "open a market for a proposal, governance only",
	Flags: []cli.Flag{
		&proposalFlag,
		&cli.DurationFlag{
			Name:  "period",
			Usage: "the trading period of the market",
			Value: 24 * time.Hour,
		},
	},
	Action: createMarketAction,
}

var listmarkets = cli.Command{
	Name:   "listmarkets",
	Usage:  "list all markets",
	Action: listMarketsAction,
}

var getmarket = cli.Command{
	Name:   "market",
	Usage:  "get the state and prices of a market",
	Flags:  []cli.Flag{&proposalFlag},
	Action: getMarketAction,
}

var quote = cli.Command{
	Name:  "quote",
	Usage: "preview a trade against the current state of a market",
	Flags: []cli.Flag{
		&proposalFlag,
		&cli.StringFlag{
			Name:  "type",
			Usage: "the trade type: buy or sell",
			Value: "buy",
		},
		&sideFlag,
		&amountFlag,
	},
	Action: quoteAction,
}

var buy = cli.Command{
	Name:   "buy",
	Usage:  "buy shares of a market side",
	Flags:  []cli.Flag{&proposalFlag, &sideFlag, &amountFlag},
	Action: buyAction,
}

var sell = cli.Command{
	Name:   "sell",
	Usage:  "sell shares of a market side",
	Flags:  []cli.Flag{&proposalFlag, &sideFlag, &amountFlag},
	Action: sellAction,
}

var resolve = cli.Command{
	Name:  "resolve",
	Usage: "resolve a market once its trading period is over, oracle only",
	Flags: []cli.Flag{
		&proposalFlag,
		&cli.StringFlag{
			Name:     "outcome",
			Usage:    "the outcome of the proposal: yes, no or unresolved",
			Required: true,
		},
	},
	Action: resolveAction,
}

var claim = cli.Command{
	Name:   "claim",
	Usage:  "claim the winnings of a resolved market",
	Flags:  []cli.Flag{&proposalFlag},
	Action: claimAction,
}

var position = cli.Command{
	Name:   "position",
	Usage:  "get the shares a trader owns in a market",
	Flags:  []cli.Flag{&proposalFlag, &traderFlag},
	Action: positionAction,
}

var positions = cli.Command{
	Name:   "positions",
	Usage:  "list every position opened in a market",
	Flags:  []cli.Flag{&proposalFlag},
	Action: positionsAction,
}

var winnings = cli.Command{
	Name:   "winnings",
	Usage:  "get the amount a trader can claim from a resolved market",
	Flags:  []cli.Flag{&proposalFlag, &traderFlag},
	Action: winningsAction,
}

func createMarketAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.CreateMarket(
		context.Background(), ctx.String("proposal"), ctx.Duration("period"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func listMarketsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.ListMarkets(context.Background())
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func getMarketAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.GetMarket(context.Background(), ctx.String("proposal"))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func quoteAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.Quote(
		context.Background(), ctx.String("proposal"), ctx.String("type"),
		ctx.String("side"), ctx.Uint64("amount"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func buyAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.BuyShares(
		context.Background(), ctx.String("proposal"), ctx.String("side"),
		ctx.Uint64("amount"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func sellAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.SellShares(
		context.Background(), ctx.String("proposal"), ctx.String("side"),
		ctx.Uint64("amount"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func resolveAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.ResolveMarket(
		context.Background(), ctx.String("proposal"), ctx.String("outcome"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func claimAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.ClaimWinnings(context.Background(), ctx.String("proposal"))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func positionAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.GetPosition(
		context.Background(), ctx.String("proposal"), ctx.String("trader"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func positionsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.ListPositions(context.Background(), ctx.String("proposal"))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func winningsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.CalculateWinnings(
		context.Background(), ctx.String("proposal"), ctx.String("trader"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}
