// Command fogctl is a control-plane client for fogcoordd: it talks httpapi's
// JSON-over-HTTP protocol, the way cmd/lncli talks to lnd's RPC surface.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/fogcompute/platform/httpapi"
	"github.com/fogcompute/platform/placement"
)

var addrFlag = cli.StringFlag{
	Name:  "addr",
	Value: "http://127.0.0.1:9738",
	Usage: "httpapi base URL of the target daemon",
}

func client(ctx *cli.Context) *httpapi.Client {
	return httpapi.NewClient(ctx.GlobalString("addr"))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nameArg(ctx *cli.Context) (string, error) {
	name := ctx.Args().First()
	if name == "" {
		return "", errors.New("service name required")
	}
	return name, nil
}

var listServicesCommand = cli.Command{
	Name:  "list-services",
	Usage: "List every registered service",
	Action: func(ctx *cli.Context) error {
		out, err := client(ctx).ListServices()
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var getServiceCommand = cli.Command{
	Name:      "get-service",
	Usage:     "Show one service's info",
	ArgsUsage: "<name>",
	Action: func(ctx *cli.Context) error {
		name, err := nameArg(ctx)
		if err != nil {
			return err
		}
		out, err := client(ctx).GetService(name)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var getHealthCommand = cli.Command{
	Name:  "get-health",
	Usage: "Show the composite health verdict",
	Action: func(ctx *cli.Context) error {
		out, err := client(ctx).GetHealth()
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var restartCommand = cli.Command{
	Name:      "restart",
	Usage:     "Restart a service",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "force",
			Usage: "reset the restart backoff attempt counter",
		},
	},
	Action: func(ctx *cli.Context) error {
		name, err := nameArg(ctx)
		if err != nil {
			return err
		}
		return client(ctx).RestartService(name, ctx.Bool("force"))
	},
}

var getDependenciesCommand = cli.Command{
	Name:      "get-dependencies",
	Usage:     "Show a service's dependency edges",
	ArgsUsage: "<name>",
	Action: func(ctx *cli.Context) error {
		name, err := nameArg(ctx)
		if err != nil {
			return err
		}
		out, err := client(ctx).GetDependencies(name)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var getMetricsCommand = cli.Command{
	Name:  "get-metrics",
	Usage: "Show per-service uptime ratios",
	Action: func(ctx *cli.Context) error {
		out, err := client(ctx).GetMetrics()
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var forceHealthCheckCommand = cli.Command{
	Name:      "force-health-check",
	Usage:     "Run an immediate out-of-band health check",
	ArgsUsage: "<name>",
	Action: func(ctx *cli.Context) error {
		name, err := nameArg(ctx)
		if err != nil {
			return err
		}
		return client(ctx).ForceHealthCheck(name)
	},
}

var submitTaskCommand = cli.Command{
	Name:      "submit-task",
	Usage:     "Submit a placement job from a JSON file",
	ArgsUsage: "<job-file>",
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return errors.New("job-file path required")
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var job placement.Job
		if err := json.Unmarshal(raw, &job); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return client(ctx).SubmitTask(job)
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "fogctl"
	app.Usage = "control-plane client for the fog-compute platform"
	app.Flags = []cli.Flag{addrFlag}
	app.Commands = []cli.Command{
		listServicesCommand,
		getServiceCommand,
		getHealthCommand,
		restartCommand,
		getDependenciesCommand,
		getMetricsCommand,
		forceHealthCheckCommand,
		submitTaskCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fogctl:", err)
		os.Exit(1)
	}
}
