// File: cmd/corearbiterd/main.go
// Author: momentics <momentics@gmail.com>
//
// Thin launcher: flag parsing and logging setup only. Every allocation
// and protocol decision lives in facade/server/core.

package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/momentics/corearbiter/core"
	"github.com/momentics/corearbiter/facade"
	"github.com/momentics/corearbiter/server"
)

const usage = `corearbiterd pins cooperating application threads onto exclusive
physical cores, one thread per core, revoking and regranting them by
priority as processes register and block.`

func main() {
	logrus.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	app := &cli.App{
		Name:  "corearbiterd",
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "socket", Value: "/var/run/corearbiter.sock", Usage: "Unix-domain listen path"},
			&cli.StringFlag{Name: "shared-mem-prefix", Value: "/dev/shm/corearbiter.", Usage: "shared-memory object filename prefix"},
			&cli.StringFlag{Name: "cpuset-root", Value: "", Usage: "cpuset filesystem mount point (default: /sys/fs/cgroup/cpuset)"},
			&cli.IntSliceFlag{Name: "cores", Usage: "CPU IDs to manage exclusively", Required: true},
			&cli.UintFlag{Name: "preemption-timeout-ms", Value: 1000, Usage: "milliseconds before a release request is forcibly honored"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("corearbiterd: exiting")
	}
}

func run(ctx *cli.Context) error {
	if ctx.Bool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cores := ctx.IntSlice("cores")
	exclusiveCores := make([]core.CoreID, len(cores))
	for i, c := range cores {
		exclusiveCores[i] = core.CoreID(c)
	}

	arb, err := facade.New(
		server.WithSocketPath(ctx.String("socket")),
		server.WithSharedMemPathPrefix(ctx.String("shared-mem-prefix")),
		server.WithCpusetRoot(ctx.String("cpuset-root")),
		server.WithExclusiveCores(exclusiveCores...),
		server.WithPreemptionTimeout(uint32(ctx.Uint("preemption-timeout-ms"))),
	)
	if err != nil {
		return err
	}
	defer arb.Close()

	return arb.Start()
}
