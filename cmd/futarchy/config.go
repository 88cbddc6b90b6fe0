package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tdex-network/futarchy-daemon/pkg/signature"
	"github.com/urfave/cli/v2"
)

var (
	rpcFlag = cli.StringFlag{
		Name:  "rpcserver",
		Usage: "futarchyd daemon url",
		Value: "http://localhost:9945",
	}

	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "hex encoded secp256k1 private key used to sign requests",
		Value: "",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the futarchy CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&rpcFlag,
				&keyFlag,
			},
		},
	},
}

var genkey = cli.Command{
	Name:   "genkey",
	Usage:  "generate a new signing key and print its address",
	Action: genKeyAction,
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := state[key]
		if key == "key" && value != "" {
			signer, err := signature.NewSigner(value)
			if err != nil {
				return err
			}
			value = "<hidden> (" + signer.Address().Hex() + ")"
		}
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	key := c.String("key")
	if key != "" {
		if _, err := signature.NewSigner(key); err != nil {
			return err
		}
	}

	return setState(map[string]string{
		"rpcserver": c.String("rpcserver"),
		"key":       key,
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if key == "key" {
		if _, err := signature.NewSigner(value); err != nil {
			return err
		}
	}

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s has been set\n", key)

	return nil
}

func genKeyAction(c *cli.Context) error {
	signer, key, err := signature.GenerateSigner()
	if err != nil {
		return err
	}

	fmt.Println("address:", signer.Address().Hex())
	fmt.Println("key:", key)
	fmt.Println()
	fmt.Println("store it with `config set key <key>`")
	return nil
}
