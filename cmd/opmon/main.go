package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/periph/uart"
	"github.com/robotalks/opmode/pkg/telemetry"
	"github.com/robotalks/opmode/pkg/telemetry/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/opmode/"
	uartURL string
)

func init() {
	if val := os.Getenv("OPMODE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&uartURL, "uart", uartURL, "Read telemetry from a UART instead (serial://, file://, stdin:).")
}

func logSample(source string, s telemetry.Sample) {
	log.Printf("%s: %s at %d deg", source, s.Mode, s.Position)
}

func monitorUART() {
	r, err := uart.OpenReader(uartURL)
	if err != nil {
		log.Fatalln(err)
	}
	err = framework.NewRunner().HandleSignals().Go(
		framework.NamedRun("uart", framework.RunFunc(func(ctx context.Context) error {
			return telemetry.Scan(ctx, r, func(s telemetry.Sample) {
				logSample(uartURL, s)
			})
		}))).Wait()
	if err != nil {
		log.Fatalln(err)
	}
}

func monitorMQTT() {
	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("+/"+mqtt.TopicMeta, func(topic string, payload []byte) {
		device := strings.TrimSuffix(topic, "/"+mqtt.TopicMeta)
		if len(payload) == 0 {
			log.Printf("%s: offline", device)
			return
		}
		log.Printf("%s: online %s", device, string(payload))
	})
	q.Sub("+/"+mqtt.TopicTelemetry, func(topic string, payload []byte) {
		s, err := mqtt.DecodeSample(payload)
		if err != nil {
			log.Printf("%s: bad sample: %v", topic, err)
			return
		}
		logSample(s.Device, s)
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)
	if uartURL != "" {
		monitorUART()
		return
	}
	monitorMQTT()
}
