package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	fx "github.com/robotalks/termlink/pkg/framework"
	"github.com/robotalks/termlink/pkg/monitor"
)

var (
	mqttURL = "mqtt://localhost:1883/termlink/"
	pattern = "#"
	showRaw bool
)

func init() {
	if val := os.Getenv("TERMLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	pflag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	pflag.StringVar(&pattern, "topic", pattern, "Topic pattern under the prefix, e.g. ap/+/state.")
	pflag.BoolVar(&showRaw, "raw", showRaw, "Print payload bytes of undecodable messages.")
	flag.Set("logtostderr", "true")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func main() {
	pflag.Parse()
	defer glog.Flush()

	opts, prefix, err := monitor.OptionsFromURL(mqttURL)
	if err != nil {
		glog.Fatal(err)
	}
	q := monitor.NewQueue(opts, prefix)
	q.Sub(pattern, func(topic string, payload []byte) {
		e, err := monitor.DecodeEvent(payload)
		if err != nil {
			if showRaw {
				glog.Infof("%s: bad event %q: %v", topic, payload, err)
			} else {
				glog.Infof("%s: bad event: %v", topic, err)
			}
			return
		}
		if strings.HasSuffix(topic, "/state") {
			glog.Infof("STATE %s", e)
			return
		}
		glog.Infof("DATA  %s", e)
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Fatal(token.Error())
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("termmon", fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return q.Close()
	})))
	runner.Wait()
}
