package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/wedshare/media-service/internal/models"
)

// EventPublisher pushes asset lifecycle events to NATS JetStream. A nil
// publisher is valid and drops everything, so call sites never need to
// check whether eventing is configured.
type EventPublisher struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

const eventStream = "asset-events"

// ConnectEvents connects to NATS, initializes JetStream and ensures the
// asset-events stream exists.
func ConnectEvents(url string) (*EventPublisher, error) {
	opts := []nats.Option{
		nats.Name("wedding-media-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[NATS] disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	if err := ensureStream(js); err != nil {
		log.Printf("[NATS] warning: failed to ensure stream: %v", err)
	}

	log.Println("[NATS] connected and JetStream initialized")
	return &EventPublisher{nc: nc, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(eventStream); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     eventStream,
		Subjects: []string{"assets.*"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

// AssetStored publishes assets.stored after a successful write. Publish
// failures are logged, never surfaced; an upload must not fail because
// the event bus is down.
func (p *EventPublisher) AssetStored(asset models.StoredAsset) {
	if p == nil {
		return
	}

	payload := map[string]interface{}{
		"action":    "stored",
		"name":      asset.StoredName,
		"size":      asset.SizeBytes,
		"type":      asset.Kind,
		"stored_at": asset.CreatedAt.UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[NATS] marshal failed: %v", err)
		return
	}

	if _, err := p.js.Publish("assets.stored", data, nats.MsgId(uuid.New().String())); err != nil {
		log.Printf("[NATS] publish failed subject=assets.stored err=%v", err)
	}
}

// Close shuts the NATS connection down.
func (p *EventPublisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}
