package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/swarmlab/swarm/service/messaging"
)

type notification struct {
	Text string
}

func TestService_PublisherOf(t *testing.T) {
	service, err := New(messaging.VendorMemory)
	assert.Nil(t, err)

	first, err := PublisherOf[notification](service)
	assert.Nil(t, err)
	second, err := PublisherOf[notification](service)
	assert.Nil(t, err)
	assert.Same(t, first, second, "publishers are cached per payload type")

	pointer, err := PublisherOf[*notification](service)
	assert.Nil(t, err)
	assert.NotNil(t, pointer, "pointer payloads get their own publisher")
}

func TestService_PublishConsume(t *testing.T) {
	service, err := New(messaging.VendorMemory)
	assert.Nil(t, err)
	publisher, err := PublisherOf[notification](service)
	assert.Nil(t, err)
	ctx := context.Background()

	eCtx := &Context{SessionID: "session-1", EventType: "created"}
	assert.Nil(t, publisher.Publish(ctx, NewEvent(eCtx, notification{Text: "hello"})))

	consumed, err := publisher.Consume(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, "hello", consumed.Data.Text)
	assert.EqualValues(t, "session-1", consumed.Context.SessionID)
}

func TestListener(t *testing.T) {
	service, err := New(messaging.VendorMemory)
	assert.Nil(t, err)
	publisher, err := PublisherOf[notification](service)
	assert.Nil(t, err)

	var mu sync.Mutex
	var seen []string
	listener := NewListener(publisher, func(e *Event[notification]) {
		mu.Lock()
		seen = append(seen, e.Data.Text)
		mu.Unlock()
	})
	listener.Start()
	defer listener.Stop()

	ctx := context.Background()
	assert.Nil(t, publisher.Publish(ctx, NewEvent(&Context{EventType: "created"}, notification{Text: "one"})))
	assert.Nil(t, publisher.Publish(ctx, NewEvent(&Context{EventType: "created"}, notification{Text: "two"})))

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		count := len(seen)
		mu.Unlock()
		if count == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.EqualValues(t, []string{"one", "two"}, seen)
}

func TestNew_UnsupportedVendor(t *testing.T) {
	_, err := New(messaging.Vendor("carrier-pigeon"))
	assert.NotNil(t, err)
}

func TestNew_FsVendorRequiresConfig(t *testing.T) {
	_, err := New(messaging.VendorFs)
	assert.NotNil(t, err)
}
