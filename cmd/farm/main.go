// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/berryfarm/farm/api"
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/metrics"
)

const dbStatsInterval = 10 * time.Second

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "Farm"
	app.Usage = "Berry farm node: stake bananas, earn native rewards"
	app.Flags = []cli.Flag{
		configFlag,
		dataDirFlag,
		cacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		enableAPILogsFlag,
		pprofFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}
	app.Action = serveAction
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "serve the HTTP API (default)",
			Action: serveAction,
		},
		{
			Name:      "call",
			Usage:     "run a function call and every receipt it causes",
			ArgsUsage: "<receiver> <method> [json-args]",
			Flags:     []cli.Flag{signerFlag, depositFlag, gasFlag},
			Action:    callAction,
		},
		{
			Name:      "view",
			Usage:     "run a read-only method",
			ArgsUsage: "<receiver> <method> [json-args]",
			Action:    viewAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx, os.Stderr)
	if ctx.GlobalBool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	handler, closeSubs := api.New(n.rt, api.Options{
		AllowedOrigins:  ctx.GlobalString(apiCorsFlag.Name),
		PprofOn:         ctx.GlobalBool(pprofFlag.Name),
		EnableReqLogger: ctx.GlobalBool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.GlobalBool(enableMetricsFlag.Name),
	})
	defer func() { logger.Info("closing subscriptions..."); closeSubs() }()

	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(exitCtx)

	apiURL, err := startServer(gctx, g, "API", ctx.GlobalString(apiAddrFlag.Name), handler)
	if err != nil {
		stop()
		return err
	}
	logger.Info("API server started", "url", apiURL, "farm", n.cfg.FarmID, "token", n.cfg.Token.ID)

	if ctx.GlobalBool(enableMetricsFlag.Name) {
		metricsURL, err := startServer(gctx, g, "metrics", ctx.GlobalString(metricsAddrFlag.Name), metricsHandler())
		if err != nil {
			stop()
			g.Wait()
			return err
		}
		logger.Info("metrics server started", "url", metricsURL+"metrics")

		g.Go(func() error {
			n.db.ReportStats(gctx, dbStatsInterval)
			return nil
		})
	}
	return g.Wait()
}

// parseCallArgs reads <receiver> <method> [json-args] from the command line.
func parseCallArgs(ctx *cli.Context) (berry.AccountID, string, json.RawMessage, error) {
	if ctx.NArg() < 2 || ctx.NArg() > 3 {
		return "", "", nil, errors.New("expected <receiver> <method> [json-args]")
	}
	receiver, err := berry.ParseAccountID(ctx.Args().Get(0))
	if err != nil {
		return "", "", nil, errors.WithMessage(err, "receiver")
	}
	var args json.RawMessage
	if ctx.NArg() == 3 {
		args = json.RawMessage(ctx.Args().Get(2))
		if !json.Valid(args) {
			return "", "", nil, errors.New("json-args: invalid JSON")
		}
	}
	return receiver, ctx.Args().Get(1), args, nil
}

func callAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	receiver, method, args, err := parseCallArgs(ctx)
	if err != nil {
		return err
	}
	signer, err := berry.ParseAccountID(ctx.String(signerFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "signer")
	}
	deposit, err := uint256.FromDecimal(ctx.String(depositFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "deposit")
	}

	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	out, err := n.rt.Call(context.Background(), signer, receiver, method, args, deposit, berry.Gas(ctx.Uint64(gasFlag.Name)))
	if err != nil {
		return err
	}
	return printJSON(ctx, out)
}

func viewAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	receiver, method, args, err := parseCallArgs(ctx)
	if err != nil {
		return err
	}

	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	value, err := n.rt.View(receiver, method, args)
	if err != nil {
		return err
	}
	if value == nil {
		value = json.RawMessage("null")
	}
	return printJSON(ctx, value)
}

func printJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
