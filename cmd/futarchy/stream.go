package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

var stream = cli.Command{
	Name:  "stream",
	Usage: "print market events as they are published, until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "event",
			Usage: "the event to filter by, all events if not set",
		},
	},
	Action: streamAction,
}

func streamAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	streamCtx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, os.Interrupt,
	)
	defer stop()

	return client.Stream(streamCtx, ctx.String("event"), func(event json.RawMessage) {
		printRespJSON(event)
	})
}
