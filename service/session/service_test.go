package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swarmlab/swarm/scheduler"
)

func TestService_Lifecycle(t *testing.T) {
	service := New(nil)
	ctx := context.Background()

	record, err := service.Begin(ctx, "session-1", "first objective")
	assert.Nil(t, err)
	assert.EqualValues(t, "session-1", record.ID)
	assert.Nil(t, record.EndedAt)

	result := &scheduler.Result{MainObjective: "first objective", Status: scheduler.StatusCompleted}
	assert.Nil(t, service.End(ctx, record, result))

	loaded, err := service.Lookup(ctx, "session-1")
	assert.Nil(t, err)
	assert.NotNil(t, loaded.EndedAt)
	assert.EqualValues(t, scheduler.StatusCompleted, loaded.Result.Status)

	_, err = service.Lookup(ctx, "session-2")
	assert.NotNil(t, err)
}

func TestService_ListOrder(t *testing.T) {
	service := New(nil)
	ctx := context.Background()

	_, err := service.Begin(ctx, "a", "one")
	assert.Nil(t, err)
	_, err = service.Begin(ctx, "b", "two")
	assert.Nil(t, err)

	records, err := service.List(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, 2, len(records))
	assert.EqualValues(t, "a", records[0].ID)
	assert.EqualValues(t, "b", records[1].ID)
}
