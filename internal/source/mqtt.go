// Package source provides the frame-source adapters consumed by the
// detection engine: a live MQTT camera feed, an extracted-frame video
// sequence and a still image.
package source

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"runform-backend/internal/pose"
)

// framePayload is the JSON message an edge camera publishes per frame.
type framePayload struct {
	Data      string `json:"data"` // base64-encoded JPEG
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Timestamp int64  `json:"ts"` // unix milliseconds, capture time
}

// CameraFeed subscribes to an edge camera's frame topic and keeps only
// the most recent frame in a single-slot inbox. A new frame overwrites
// an unconsumed one; overwrites are counted as drops. The detection
// loop always sees the freshest frame and never queues behind slow
// estimation.
type CameraFeed struct {
	client mqtt.Client
	topic  string

	mu       sync.Mutex
	frame    *pose.Frame
	consumed bool
	drops    uint64
}

// NewCameraFeed connects to the broker and subscribes to the frame
// topic. The subscription is re-established on every reconnect.
func NewCameraFeed(broker, topic string) (*CameraFeed, error) {
	feed := &CameraFeed{topic: topic}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("runform-feed-%d", time.Now().Unix()))
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(topic, 1, feed.handleMessage)
		token.Wait()
		slog.Info("camera feed subscribed", "topic", topic)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		slog.Warn("camera feed connection lost", "error", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to broker %s: %w", broker, token.Error())
	}
	feed.client = client
	return feed, nil
}

func (f *CameraFeed) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var payload framePayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		slog.Warn("dropping malformed frame payload", "error", err)
		return
	}
	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		slog.Warn("dropping frame with bad image encoding", "error", err)
		return
	}
	f.publish(&pose.Frame{
		Data:      data,
		Width:     payload.Width,
		Height:    payload.Height,
		Timestamp: time.UnixMilli(payload.Timestamp),
	})
}

// publish installs a frame in the single-slot inbox.
func (f *CameraFeed) publish(frame *pose.Frame) {
	f.mu.Lock()
	if f.frame != nil && !f.consumed {
		f.drops++
	}
	f.frame = frame
	f.consumed = false
	f.mu.Unlock()
}

// Ready reports whether at least one frame has arrived.
func (f *CameraFeed) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame != nil
}

// Dimensions returns the pixel size of the most recent frame.
func (f *CameraFeed) Dimensions() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frame == nil {
		return 0, 0
	}
	return f.frame.Width, f.frame.Height
}

// Frame returns the latest frame and marks it consumed. Pulling the
// same frame twice is allowed; the camera loop runs unconditionally
// even when the feed is slower than the loop.
func (f *CameraFeed) Frame() (*pose.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frame == nil {
		return nil, fmt.Errorf("no frame received yet on %s", f.topic)
	}
	f.consumed = true
	return f.frame, nil
}

// Drops returns how many frames were overwritten before being consumed.
func (f *CameraFeed) Drops() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drops
}

// Close disconnects from the broker.
func (f *CameraFeed) Close() {
	f.client.Disconnect(250)
}
