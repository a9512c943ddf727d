package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/marcuoli/go-netdiag/internal/config"
	"github.com/marcuoli/go-netdiag/internal/scanner"
	"github.com/marcuoli/go-netdiag/pkg/netdiag"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/network"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var client *netdiag.Client

	before := func(c *cli.Context) error {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: (*slog.Level)(c.Generic("log-level").(*logLevelFlag)),
		}))

		conf, err := config.Load(c.String("config"))
		if err != nil {
			return err
		}
		if err := conf.ApplyEnv(os.LookupEnv); err != nil {
			return err
		}
		if c.IsSet("timeout") {
			conf.Timeout = c.Duration("timeout")
		}

		if level := conf.DebugLevel(); level > netdiag.DebugOff {
			netdiag.SetDebugLogger(netdiag.SlogDebugLogger(logger))
			netdiag.SetDebugLevel(level)
		}

		client = netdiag.New(conf.Options())
		return nil
	}

	app := &cli.App{
		Name:    "netdiag",
		Usage:   "Network diagnostics: resolve, probe, hardware address and time",
		Version: netdiag.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "The configuration file to use",
				EnvVars: []string{config.EnvConfig},
			},
			&cli.GenericFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set the log level",
				Value:   fromLogLevel(slog.LevelInfo),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Default operation timeout",
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print the library version",
				Action: func(c *cli.Context) error {
					fmt.Println(netdiag.VersionInfo())
					return nil
				},
			},
			{
				Name:      "lookup",
				Usage:     "Resolve a hostname to one address",
				ArgsUsage: "HOSTNAME",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ipv4", Aliases: []string{"4"}, Usage: "Prefer IPv4 addresses"},
				},
				Action: func(c *cli.Context) error {
					host, err := arg(c, 0, "hostname")
					if err != nil {
						return err
					}
					addr, err := client.LookupHost(c.Context, host, c.Bool("ipv4"))
					if err != nil {
						return err
					}
					fmt.Println(addr)
					return nil
				},
			},
			{
				Name:      "health",
				Usage:     "Check that TCP connections can be established",
				ArgsUsage: "ADDRESS PORT [PORT...]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent checks", Value: scanner.DefaultWorkers},
				},
				Action: func(c *cli.Context) error {
					address, err := arg(c, 0, "address")
					if err != nil {
						return err
					}
					if c.NArg() < 2 {
						return fmt.Errorf("missing port argument")
					}
					ports := make([]uint16, 0, c.NArg()-1)
					for _, s := range c.Args().Slice()[1:] {
						port, err := network.ParsePort(s)
						if err != nil {
							return err
						}
						ports = append(ports, port)
					}

					start := time.Now()
					results, err := scanner.Sweep(c.Context, ports, func(ctx context.Context, port uint16) error {
						return client.ConnectionHealth(ctx, address, port, 0)
					}, scanner.Options{Workers: c.Int("workers")})
					if err != nil {
						return err
					}
					logger.Debug("Health checks finished", "address", address, "ports", len(ports), "elapsed", time.Since(start))

					var failed *multierror.Error
					for _, r := range results {
						if r.Err != nil {
							fmt.Printf("%d\t%s\n", r.Port, netdiag.KindOf(r.Err))
							failed = multierror.Append(failed, r.Err)
							continue
						}
						fmt.Printf("%d\tok\n", r.Port)
					}
					return failed.ErrorOrNil()
				},
			},
			{
				Name:  "mac",
				Usage: "Print the hardware address of the first active interface",
				Action: func(c *cli.Context) error {
					mac, err := client.MACAddress()
					if err != nil {
						return err
					}
					fmt.Println(mac)
					return nil
				},
			},
			{
				Name:  "vendor",
				Usage: "Print the manufacturer of the local hardware address",
				Action: func(c *cli.Context) error {
					vendor, err := client.MACVendor()
					if err != nil {
						return err
					}
					fmt.Println(vendor.Manufacturer)
					if vendor.Country != "" {
						logger.Debug("Vendor details", "prefix", vendor.Prefix, "country", vendor.Country)
					}
					return nil
				},
			},
			{
				Name:      "time",
				Usage:     "Query a time server and print its Unix time",
				ArgsUsage: "[SERVER]",
				Action: func(c *cli.Context) error {
					now, err := client.TimeRequest(c.Context, c.Args().First(), 0)
					if err != nil {
						return err
					}
					logger.Debug("Clock offset", "offset", time.Until(now))
					fmt.Println(now.Unix())
					return nil
				},
			},
			{
				Name:      "neighbor",
				Usage:     "Resolve the hardware address of an IPv4 neighbour with ARP",
				ArgsUsage: "ADDRESS",
				Action: func(c *cli.Context) error {
					address, err := arg(c, 0, "address")
					if err != nil {
						return err
					}
					mac, err := client.NeighborMAC(c.Context, address, 0)
					if err != nil {
						return err
					}
					fmt.Println(mac)
					return nil
				},
			},
			{
				Name:      "report",
				Usage:     "Run lookup, hardware address and time checks concurrently",
				ArgsUsage: "[HOSTNAME]",
				Action: func(c *cli.Context) error {
					host := c.Args().First()
					if host == "" {
						host = "localhost"
					}
					return report(c.Context, os.Stdout, client, host)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("Failed to run command", "error", err)
		os.Exit(1)
	}
}

func arg(c *cli.Context, i int, name string) (string, error) {
	if c.NArg() <= i {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return c.Args().Get(i), nil
}

type reportLine struct {
	name  string
	value string
	err   error
}

// report runs the independent checks in parallel and prints one line per
// check in a fixed order. Failed checks are printed and aggregated into the
// returned error.
func report(ctx context.Context, w io.Writer, client *netdiag.Client, host string) error {
	lines := []reportLine{{name: "lookup"}, {name: "mac"}, {name: "time"}}
	var mu sync.Mutex
	set := func(i int, value string, err error) {
		mu.Lock()
		defer mu.Unlock()
		lines[i].value, lines[i].err = value, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr, err := client.LookupHost(ctx, host, false)
		if err == nil {
			set(0, host+" -> "+addr.String(), nil)
		} else {
			set(0, "", err)
		}
		return nil
	})
	g.Go(func() error {
		mac, err := client.MACAddress()
		set(1, mac, err)
		return nil
	})
	g.Go(func() error {
		now, err := client.TimeRequest(ctx, "", 0)
		if err == nil {
			set(2, client.TimeServer()+" -> "+strconv.FormatInt(now.Unix(), 10), nil)
		} else {
			set(2, "", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var result *multierror.Error
	for _, l := range lines {
		if l.err != nil {
			fmt.Fprintf(w, "%-7s FAIL %v\n", l.name, l.err)
			result = multierror.Append(result, l.err)
			continue
		}
		fmt.Fprintf(w, "%-7s ok   %s\n", l.name, l.value)
	}
	return result.ErrorOrNil()
}

type logLevelFlag slog.Level

func fromLogLevel(l slog.Level) *logLevelFlag {
	f := logLevelFlag(l)
	return &f
}

func (f *logLevelFlag) Set(value string) error {
	return (*slog.Level)(f).UnmarshalText([]byte(value))
}

func (f *logLevelFlag) String() string {
	return (*slog.Level)(f).String()
}
