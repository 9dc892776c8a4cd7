package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	"github.com/robotalks/termlink/pkg/config"
	fx "github.com/robotalks/termlink/pkg/framework"
	"github.com/robotalks/termlink/pkg/monitor"
	"github.com/robotalks/termlink/pkg/node"
)

func init() {
	config.SetupFlags(config.RoleStation)
	flag.Set("logtostderr", "true")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func main() {
	pflag.Parse()
	defer glog.Flush()

	conf := config.Default()
	if err := conf.Load(pflag.CommandLine); err != nil {
		glog.Fatalf("load config: %v", err)
	}

	var mon *monitor.Publisher
	if conf.MQTTURL != "" {
		var err error
		if mon, err = monitor.NewPublisher(conf.MQTTURL, string(config.RoleStation)); err != nil {
			glog.Fatalf("monitor: %v", err)
		}
		mon.Connect()
		defer mon.Close()
	}

	runner := fx.NewRunner().HandleSignals()
	runner.StopOnExit = true
	runner.Go(fx.NamedRun("sta", node.NewStation(conf, mon)))
	if err := runner.Wait(); err != nil && err != context.Canceled {
		glog.Fatal(err)
	}
}
