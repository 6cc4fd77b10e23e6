package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/telemetry"
)

// DefaultPublishTimeout bounds the wait for a publish.
const DefaultPublishTimeout = 500 * time.Millisecond

// Topic names relative to <prefix><device>/.
const (
	TopicTelemetry = "telemetry"
	TopicMeta      = "meta"
)

// Meta is published retained when connected and cleared by the will.
type Meta struct {
	Description string `json:"description,omitempty"`
	Device      string `json:"device"`
}

// Mirror publishes samples to the broker.
type Mirror struct {
	Queue   *Queue
	Device  string
	Timeout time.Duration

	metaJSON []byte
}

// NewMirror creates a Mirror. The meta topic is cleared by the broker
// when the connection is lost.
func NewMirror(brokerURL, device, description string) (*Mirror, error) {
	meta, err := json.Marshal(&Meta{Description: description, Device: device})
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+device+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("opmode:" + device)
	}
	m := &Mirror{
		Queue:    NewQueue(opts, topicPrefix),
		Device:   device,
		Timeout:  DefaultPublishTimeout,
		metaJSON: meta,
	}
	m.Queue.OnConnect = func(*Queue) { m.publishMeta(m.metaJSON) }
	return m, nil
}

// Topic returns the topic of the device relative to the prefix.
func (m *Mirror) Topic(name string) string {
	return m.Device + "/" + name
}

// Run implements framework.Runnable. It keeps the connection until ctx
// is done.
func (m *Mirror) Run(ctx context.Context) error {
	token := m.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	<-ctx.Done()
	m.publishMeta(nil)
	return m.Queue.Close()
}

// Publish implements telemetry.Mirror.
func (m *Mirror) Publish(ctx context.Context, s telemetry.Sample) error {
	if !m.Queue.Client.IsConnected() {
		return errors.New("mqtt not connected")
	}
	payload, err := EncodeSample(s)
	if err != nil {
		return err
	}
	token := m.Queue.Pub(m.Topic(TopicTelemetry), payload)
	if !token.WaitTimeout(m.Timeout) {
		return fmt.Errorf("mqtt publish timeout after %v", m.Timeout)
	}
	return token.Error()
}

func (m *Mirror) publishMeta(payload []byte) {
	token := m.Queue.PubWith(m.Topic(TopicMeta), payload, 1, true)
	if token.WaitTimeout(m.Timeout) && token.Error() != nil {
		glog.Warningf("mqtt publish meta: %v", token.Error())
	}
}
