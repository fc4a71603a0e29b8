package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/swarmlab/swarm/model/graph"
)

// orderRecorder tracks dispatch order and peak in-flight concurrency.
type orderRecorder struct {
	mu      sync.Mutex
	order   []string
	active  int32
	maxSeen int32
}

func (r *orderRecorder) delegate(delay time.Duration) Delegate {
	return func(ctx context.Context, task *graph.Task) (interface{}, error) {
		current := atomic.AddInt32(&r.active, 1)
		for {
			seen := atomic.LoadInt32(&r.maxSeen)
			if current <= seen || atomic.CompareAndSwapInt32(&r.maxSeen, seen, current) {
				break
			}
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		r.mu.Lock()
		r.order = append(r.order, task.ID)
		r.mu.Unlock()
		atomic.AddInt32(&r.active, -1)
		return "done:" + task.ID, nil
	}
}

func TestService_OrchestrateLinearChain(t *testing.T) {
	recorder := &orderRecorder{}
	service := New(UniformDelegates(recorder.delegate(0)), DefaultConfig())

	specs := []graph.Spec{
		{Role: "researcher", Description: "gather input"},
		{Role: "analyst", Description: "analyze", Dependencies: []string{"task_0"}},
		{Role: "validator", Description: "verify", Dependencies: []string{"task_1"}},
	}
	result, err := service.Orchestrate(context.Background(), "linear objective", specs)
	assert.Nil(t, err)
	assert.EqualValues(t, StatusCompleted, result.Status)
	assert.EqualValues(t, "linear objective", result.MainObjective)
	assert.EqualValues(t, []string{"task_0", "task_1", "task_2"}, recorder.order)
	assert.EqualValues(t, 3, result.Metadata.TotalTasks)
	assert.EqualValues(t, 3, result.Metadata.CompletedTasks)
	assert.EqualValues(t, 0, result.Metadata.FailedTasks)
	for id, taskResult := range result.Results {
		assert.EqualValues(t, graph.StatusCompleted, taskResult.Status, id)
		assert.EqualValues(t, "done:"+id, taskResult.Result, id)
	}
}

func TestService_OrchestrateConcurrencyCap(t *testing.T) {
	recorder := &orderRecorder{}
	service := New(UniformDelegates(recorder.delegate(20*time.Millisecond)), Config{Concurrency: 3})

	var specs []graph.Spec
	for i := 0; i < 10; i++ {
		specs = append(specs, graph.Spec{Role: "executor", Description: fmt.Sprintf("job %d", i)})
	}
	result, err := service.Orchestrate(context.Background(), "capped objective", specs)
	assert.Nil(t, err)
	assert.EqualValues(t, StatusCompleted, result.Status)
	assert.EqualValues(t, 10, result.Metadata.CompletedTasks)
	assert.True(t, recorder.maxSeen <= 3, "peak concurrency %d exceeds cap", recorder.maxSeen)
}

func TestService_OrchestrateDiamond(t *testing.T) {
	recorder := &orderRecorder{}
	service := New(UniformDelegates(recorder.delegate(0)), DefaultConfig())

	specs := []graph.Spec{
		{Role: "coordinator", Description: "plan"},
		{Role: "researcher", Description: "left branch", Dependencies: []string{"task_0"}},
		{Role: "analyst", Description: "right branch", Dependencies: []string{"task_0"}},
		{Role: "validator", Description: "join", Dependencies: []string{"task_1", "task_2"}},
	}
	result, err := service.Orchestrate(context.Background(), "diamond", specs)
	assert.Nil(t, err)
	assert.EqualValues(t, StatusCompleted, result.Status)
	assert.EqualValues(t, "task_0", recorder.order[0])
	assert.EqualValues(t, "task_3", recorder.order[len(recorder.order)-1])
}

func TestService_OrchestrateCycleDeadlock(t *testing.T) {
	service := New(UniformDelegates(func(ctx context.Context, task *graph.Task) (interface{}, error) {
		return nil, nil
	}), DefaultConfig())

	specs := []graph.Spec{
		{Role: "executor", Description: "first", Dependencies: []string{"task_1"}},
		{Role: "executor", Description: "second", Dependencies: []string{"task_0"}},
	}
	result, err := service.Orchestrate(context.Background(), "cyclic", specs)
	assert.Nil(t, err)
	assert.EqualValues(t, StatusDeadlocked, result.Status)
	assert.EqualValues(t, 2, result.Metadata.FailedTasks)
	for id, taskResult := range result.Results {
		assert.EqualValues(t, graph.StatusFailed, taskResult.Status, id)
		assert.Contains(t, taskResult.Error, "dependency deadlock", id)
	}
}

func TestService_OrchestrateUpstreamFailure(t *testing.T) {
	service := New(UniformDelegates(func(ctx context.Context, task *graph.Task) (interface{}, error) {
		if task.ID == "task_0" {
			return nil, fmt.Errorf("simulated failure")
		}
		return "ok", nil
	}), DefaultConfig())

	specs := []graph.Spec{
		{Role: "executor", Description: "doomed"},
		{Role: "analyst", Description: "dependent", Dependencies: []string{"task_0"}},
		{Role: "researcher", Description: "independent"},
	}
	result, err := service.Orchestrate(context.Background(), "partial failure", specs)
	assert.Nil(t, err)
	assert.EqualValues(t, StatusDeadlocked, result.Status)
	assert.EqualValues(t, graph.StatusFailed, result.Results["task_0"].Status)
	assert.Contains(t, result.Results["task_0"].Error, "simulated failure")
	assert.EqualValues(t, graph.StatusFailed, result.Results["task_1"].Status)
	assert.Contains(t, result.Results["task_1"].Error, "upstream failure of [task_0]")
	assert.EqualValues(t, graph.StatusCompleted, result.Results["task_2"].Status)
	assert.EqualValues(t, 1, result.Metadata.CompletedTasks)
	assert.EqualValues(t, 2, result.Metadata.FailedTasks)
}

func TestService_OrchestrateTasksCancellation(t *testing.T) {
	service := New(UniformDelegates(func(ctx context.Context, task *graph.Task) (interface{}, error) {
		return "ok", nil
	}), DefaultConfig())

	tasks, err := graph.Build([]graph.Spec{
		{Role: "executor", Description: "kept"},
		{Role: "executor", Description: "dropped"},
	})
	assert.Nil(t, err)
	assert.Nil(t, tasks[1].Cancel())

	result, err := service.OrchestrateTasks(context.Background(), "with cancellation", "session-1", tasks)
	assert.Nil(t, err)
	assert.EqualValues(t, StatusCompleted, result.Status)
	assert.EqualValues(t, graph.StatusCompleted, result.Results["task_0"].Status)
	assert.EqualValues(t, graph.StatusCancelled, result.Results["task_1"].Status)
	assert.EqualValues(t, "session-1", result.Metadata.SessionID)
}

func TestService_OrchestrateTasksCancelDuringRun(t *testing.T) {
	service := New(UniformDelegates(func(ctx context.Context, task *graph.Task) (interface{}, error) {
		time.Sleep(50 * time.Millisecond)
		return "ok", nil
	}), DefaultConfig())

	tasks, err := graph.Build([]graph.Spec{
		{Role: "executor", Description: "long running"},
		{Role: "analyst", Description: "dependent", Dependencies: []string{"task_0"}},
	})
	assert.Nil(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(10 * time.Millisecond)
		assert.Nil(t, tasks[1].Cancel())
	}()

	result, err := service.OrchestrateTasks(context.Background(), "mid-run cancel", "session-1", tasks)
	<-done
	assert.Nil(t, err)
	assert.EqualValues(t, StatusCompleted, result.Status)
	assert.EqualValues(t, graph.StatusCompleted, result.Results["task_0"].Status)
	assert.EqualValues(t, graph.StatusCancelled, result.Results["task_1"].Status)
	assert.EqualValues(t, 1, result.Metadata.CompletedTasks)
}

func TestService_OrchestrateTasksCancelReadyTask(t *testing.T) {
	release := make(chan struct{})
	service := New(UniformDelegates(func(ctx context.Context, task *graph.Task) (interface{}, error) {
		<-release
		return "ok", nil
	}), Config{Concurrency: 1})

	tasks, err := graph.Build([]graph.Spec{
		{Role: "executor", Description: "holds the slot"},
		{Role: "executor", Description: "cancelled while ready"},
	})
	assert.Nil(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = tasks[1].Cancel()
		close(release)
	}()

	result, err := service.OrchestrateTasks(context.Background(), "ready-set cancel", "session-2", tasks)
	assert.Nil(t, err)
	assert.EqualValues(t, graph.StatusCompleted, result.Results["task_0"].Status)
	assert.EqualValues(t, graph.StatusCancelled, result.Results["task_1"].Status)
}

func TestService_OrchestrateUnboundRole(t *testing.T) {
	service := New(Delegates{Executor: func(ctx context.Context, task *graph.Task) (interface{}, error) {
		return "ok", nil
	}}, DefaultConfig())

	specs := []graph.Spec{
		{Role: "executor", Description: "bound"},
		{Role: "researcher", Description: "unbound"},
	}
	result, err := service.Orchestrate(context.Background(), "missing delegate", specs)
	assert.Nil(t, err)
	assert.EqualValues(t, graph.StatusCompleted, result.Results["task_0"].Status)
	assert.EqualValues(t, graph.StatusFailed, result.Results["task_1"].Status)
	assert.Contains(t, result.Results["task_1"].Error, "no delegate bound for role researcher")
}

func TestService_OrchestratePanicRecovery(t *testing.T) {
	service := New(UniformDelegates(func(ctx context.Context, task *graph.Task) (interface{}, error) {
		panic("delegate blew up")
	}), DefaultConfig())

	result, err := service.Orchestrate(context.Background(), "panicky", []graph.Spec{
		{Role: "executor", Description: "boom"},
	})
	assert.Nil(t, err)
	assert.EqualValues(t, graph.StatusFailed, result.Results["task_0"].Status)
	assert.Contains(t, result.Results["task_0"].Error, "delegate panicked")
}

func TestService_OrchestrateInvalidGraph(t *testing.T) {
	service := New(Delegates{}, DefaultConfig())
	_, err := service.Orchestrate(context.Background(), "bad graph", []graph.Spec{
		{Role: "wizard", Description: "unknown role"},
	})
	assert.NotNil(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.Nil(t, DefaultConfig().Validate())
	assert.NotNil(t, Config{}.Validate())
	assert.NotNil(t, Config{Concurrency: -1}.Validate())
}

func TestDelegatesLookup(t *testing.T) {
	marker := func(ctx context.Context, task *graph.Task) (interface{}, error) { return nil, nil }
	delegates := Delegates{Analyst: marker}
	assert.NotNil(t, delegates.Lookup(graph.RoleAnalyst))
	assert.Nil(t, delegates.Lookup(graph.RoleValidator))
	assert.Nil(t, delegates.Lookup(graph.Role("wizard")))

	uniform := UniformDelegates(marker)
	for _, role := range graph.Roles() {
		assert.NotNil(t, uniform.Lookup(role), role)
	}
}
