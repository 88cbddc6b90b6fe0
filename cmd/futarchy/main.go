package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/tdex-network/futarchy-daemon/pkg/client"
	"github.com/tdex-network/futarchy-daemon/pkg/signature"
	"github.com/urfave/cli/v2"
)

var (
	futarchyDataDir = btcutil.AppDataDir("futarchy", false)
	statePath       = filepath.Join(futarchyDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "futarchy CLI"
	app.Usage = "Command line interface for futarchyd traders, governance and oracle"
	app.Commands = append(
		app.Commands,
		&config,
		&genkey,
		&createmarket,
		&listmarkets,
		&getmarket,
		&quote,
		&buy,
		&sell,
		&resolve,
		&claim,
		&position,
		&positions,
		&winnings,
		&oracle,
		&balance,
		&webhook,
		&stream,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %s", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if err := os.MkdirAll(futarchyDataDir, os.ModeDir|0755); err != nil {
		return err
	}

	currentData := map[string]string{}
	if _, err := os.Stat(statePath); err == nil {
		if currentData, err = getState(); err != nil {
			return err
		}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	// The state holds the signing key.
	if err := os.WriteFile(statePath, jsonString, 0600); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func printRespJSON(resp json.RawMessage) {
	if len(resp) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, resp, "", "\t"); err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(buf.String())
}

// getClient returns a client for the configured rpc server. The signing key
// is loaded only if present in the local state.
func getClient() (*client.Client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	address, ok := state["rpcserver"]
	if !ok || address == "" {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}

	var signer *signature.Signer
	if key := state["key"]; key != "" {
		if signer, err = signature.NewSigner(key); err != nil {
			return nil, err
		}
	}

	return client.New(address, signer)
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[futarchy] %v\n", err)
	}
	os.Exit(1)
}
