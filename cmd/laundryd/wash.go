package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/api/grpcapi"
	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/devices"
	"github.com/KevinKickass/OpenLaundryCore/internal/machine"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// RemoteOptions must stay exported for go-flags to scan the embedded group.
type RemoteOptions struct {
	Remote string `long:"remote" description:"gRPC address of a running daemon, e.g. localhost:50051"`
	Token  string `long:"token" env:"OLC_TOKEN" description:"Access token for the remote daemon"`
}

func (r RemoteOptions) dial() (*grpc.ClientConn, *grpcapi.Client, error) {
	conn, err := grpc.NewClient(r.Remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", r.Remote, err)
	}
	return conn, grpcapi.NewClient(conn, r.Token), nil
}

type washCommand struct {
	Material string        `short:"m" long:"material" required:"true" description:"COTTON, WOOL, SYNTHETIC, DELICATE or JEANS"`
	Weight   float64       `short:"w" long:"weight" required:"true" description:"Batch weight in kg"`
	Program  string        `short:"p" long:"program" default:"AUTODETECT" description:"AUTODETECT, SHORT, MEDIUM or LONG"`
	Spin     bool          `short:"s" long:"spin" description:"Spin after releasing the water"`
	Profile  string        `long:"profile" description:"Device profile to use instead of devices.profile"`
	Timeout  time.Duration `long:"timeout" default:"10m" description:"Give up waiting for the cycle after this long"`

	RemoteOptions

	out io.Writer
}

func (c *washCommand) request() (cycle.Request, error) {
	material, err := types.ParseMaterial(c.Material)
	if err != nil {
		return cycle.Request{}, err
	}
	program, err := types.ParseProgram(c.Program)
	if err != nil {
		return cycle.Request{}, err
	}
	return cycle.Request{
		Batch:  types.LaundryBatch{Material: material, WeightKg: c.Weight},
		Config: types.ProgramConfiguration{Program: program, Spin: c.Spin},
	}, nil
}

func (c *washCommand) Execute(_ []string) error {
	req, err := c.request()
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	var report *cycle.Report
	if c.Remote != "" {
		conn, client, err := c.dial()
		if err != nil {
			return err
		}
		defer conn.Close()

		report, err = client.Start(ctx, req)
		if err != nil {
			return fmt.Errorf("remote wash failed: %w", err)
		}
	} else {
		profile := cfg.Devices.Profile
		if c.Profile != "" {
			profile = c.Profile
		}

		manager, err := devices.NewManager(cfg.Devices.SearchPaths, logger)
		if err != nil {
			return err
		}
		rig, err := manager.Load(profile)
		if err != nil {
			return err
		}

		report, err = cycle.NewRunner(rig.Actuators(), logger).Run(ctx, req)
		if err != nil {
			return err
		}
	}

	logger.Debug("Wash finished",
		zap.String("cycle_id", report.ID.String()),
		zap.String("result", string(report.Status.Result)))

	return writeJSON(c.out, report)
}

type programsCommand struct {
	RemoteOptions

	out io.Writer
}

func (c *programsCommand) Execute(_ []string) error {
	if c.Remote == "" {
		return writeJSON(c.out, machine.ProgramCatalog())
	}

	conn, client, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	catalog, err := client.ListPrograms(ctx)
	if err != nil {
		return err
	}
	return writeJSON(c.out, catalog)
}

type watchCommand struct {
	RemoteOptions

	out io.Writer
}

func (c *watchCommand) Execute(_ []string) error {
	if c.Remote == "" {
		return fmt.Errorf("watch needs --remote")
	}

	conn, client, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	enc := json.NewEncoder(c.out)
	return client.WatchCycles(context.Background(), func(event cycle.Event) {
		_ = enc.Encode(event)
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
