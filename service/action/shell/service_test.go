package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swarmlab/swarm/model/graph"
)

func TestService_Run(t *testing.T) {
	service := New()
	defer service.Close()

	output, status, err := service.Run(context.Background(), "echo hello")
	assert.Nil(t, err)
	assert.EqualValues(t, 0, status)
	assert.Contains(t, output, "hello")
}

func TestService_RunFailure(t *testing.T) {
	service := New()
	defer service.Close()

	_, _, err := service.Run(context.Background(), "exit 7")
	assert.NotNil(t, err)
}

func TestService_Delegate(t *testing.T) {
	service := New()
	defer service.Close()

	delegate := service.Delegate()
	result, err := delegate(context.Background(), &graph.Task{ID: "task_0", Description: "echo delegated"})
	assert.Nil(t, err)
	assert.Contains(t, result.(string), "delegated")
}
