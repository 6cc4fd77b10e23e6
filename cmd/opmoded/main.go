package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/board"
	"github.com/robotalks/opmode/pkg/cli/sh"
	"github.com/robotalks/opmode/pkg/framework"
)

var runShell bool

func init() {
	board.SetupFlags()
	flag.BoolVar(&runShell, "shell", runShell, "Run the operator console.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := board.NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	b, err := board.New(conf, board.Peripherals{})
	if b == nil {
		log.Fatalln(err)
	}
	if err != nil {
		glog.Errorf("start-up failed, halted: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := framework.NewRunnerWith(ctx).HandleSignals()
	runner.Go(framework.NamedRun("board", b))
	if runShell {
		go func() {
			sh.New(b).Run(flag.Args()...)
			cancel()
		}()
	}
	if err := runner.Wait(); err != nil {
		glog.Errorf("stopped: %v", err)
	}
	if b.Fault.Fired() {
		glog.Flush()
		os.Exit(1)
	}
}
