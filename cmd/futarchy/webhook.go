package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var webhook = cli.Command{
	Name:  "webhook",
	Usage: "manage the webhooks notified of market events, governance only",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "add a webhook registered for some event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "endpoint",
					Usage:    "the endpoint where to notify the webhook",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "the eventual secret to authenticate requests",
					Value: "",
				},
				&cli.StringFlag{
					Name:  "event",
					Usage: "the event for which the webhook gets notified, * for all",
					Value: "*",
				},
			},
			Action: addWebhookAction,
		},
		{
			Name:  "list",
			Usage: "list all webhooks, optionally filtered by event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "event",
					Usage: "the event to filter hooks by",
				},
			},
			Action: listWebhooksAction,
		},
		{
			Name:  "remove",
			Usage: "remove a webhook",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Usage:    "the id of the webhook to remove",
					Required: true,
				},
			},
			Action: removeWebhookAction,
		},
	},
}

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.AddWebhook(
		context.Background(), ctx.String("event"), ctx.String("endpoint"),
		ctx.String("secret"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.ListWebhooks(context.Background(), ctx.String("event"))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.RemoveWebhook(context.Background(), ctx.String("id")); err != nil {
		return err
	}

	fmt.Println("webhook removed")
	return nil
}
