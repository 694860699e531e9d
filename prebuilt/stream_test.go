package prebuilt

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/goleak"

	"github.com/smallnest/ontollm/graph"
	storemem "github.com/smallnest/ontollm/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collect(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestStreamDeliversStagesAnswerAndDone(t *testing.T) {
	model := &scriptedModel{responses: []*llms.ContentResponse{textResponse("3000원입니다.")}}
	agent := newAgent(t, model, fixtureStore(t))

	events := collect(agent.Stream(context.Background(), "바나나우유 가격", "method2"))
	require.Len(t, events, 10)
	for _, ev := range events[:8] {
		assert.Equal(t, EventStage, ev.Event)
	}
	assert.Equal(t, Event{Event: EventAnswer, Answer: "3000원입니다."}, events[8])
	assert.Equal(t, Event{Event: EventDone}, events[9])
}

func TestStreamEmptyQuestion(t *testing.T) {
	model := &scriptedModel{}
	agent := newAgent(t, model, fixtureStore(t))

	events := collect(agent.Stream(context.Background(), "   ", "method1"))
	assert.Equal(t, []Event{{Event: EventError, Message: EmptyQuestionMessage}}, events)
	assert.Zero(t, model.callCount())
}

func TestStreamStoreFailure(t *testing.T) {
	agent := newAgent(t, &scriptedModel{}, failingStore{Store: storemem.New()})

	events := collect(agent.Stream(context.Background(), "milk", "method1"))
	require.Len(t, events, 4)
	assert.Equal(t, []string{"received:running", "received:done", "lookup:running"}, (&recorder{events: events[:3]}).stages())

	last := events[3]
	assert.Equal(t, EventError, last.Event)
	assert.Equal(t, "ontology store: search facts: no such table: onto_instances", last.Message)
}

func TestErrorMessageDropsNodePrefix(t *testing.T) {
	cause := errors.New("connection refused")
	assert.Equal(t, "connection refused", ErrorMessage(&graph.NodeError{Node: "generate", Err: cause}))
	assert.Equal(t, "run: connection refused", ErrorMessage(errors.Wrap(cause, "run")))
}

func TestStreamRecoversPanics(t *testing.T) {
	agent := newAgent(t, &scriptedModel{panicMsg: "boom"}, fixtureStore(t))

	events := collect(agent.Stream(context.Background(), "milk", "method1"))
	require.NotEmpty(t, events)
	assert.Equal(t, Event{Event: EventError, Message: "boom"}, events[len(events)-1])
}

func TestStreamCancelledContextCloses(t *testing.T) {
	model := &scriptedModel{}
	agent := newAgent(t, model, fixtureStore(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := collect(agent.Stream(ctx, "milk", "method1"))
	for _, ev := range events {
		assert.NotEqual(t, EventAnswer, ev.Event)
	}
	assert.Zero(t, model.callCount())
}
