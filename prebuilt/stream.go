package prebuilt

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smallnest/ontollm/graph"
)

// streamBuffer is the event channel capacity of Stream.
const streamBuffer = 16

// Stream answers question on a new goroutine. The returned channel
// carries the stage events followed by an answer and a done event, or by
// a single error event, and is closed afterwards. When ctx is cancelled
// pending events are dropped and the channel is closed once the run
// stops.
func (a *OntologyAgent) Stream(ctx context.Context, question, methodID string) <-chan Event {
	ch := make(chan Event, streamBuffer)
	go func() {
		defer close(ch)
		send := func(ev Event) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("chat stream panic: %v", r)
				send(Event{Event: EventError, Message: fmt.Sprint(r)})
			}
		}()

		if strings.TrimSpace(question) == "" {
			send(Event{Event: EventError, Message: EmptyQuestionMessage})
			return
		}

		res, err := a.Run(ctx, question, methodID, send)
		if err != nil {
			a.logger.Error("chat stream failed: %v", err)
			send(Event{Event: EventError, Message: ErrorMessage(err)})
			return
		}
		send(Event{Event: EventAnswer, Answer: res.Answer})
		send(Event{Event: EventDone})
	}()
	return ch
}

// ErrorMessage returns the message of the failing stage, without the
// graph node prefix.
func ErrorMessage(err error) string {
	var nodeErr *graph.NodeError
	if errors.As(err, &nodeErr) {
		return nodeErr.Err.Error()
	}
	return err.Error()
}
