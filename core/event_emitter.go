package orchestration

import (
	events "github.com/koscakluka/ema-jarvis/core/events"
	"github.com/koscakluka/ema-jarvis/core/llms"
)

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// with returns an emitter that calls e and then handler.
func (e eventEmitter) with(handler func(events.Event)) eventEmitter {
	if e == nil {
		return handler
	}
	return func(event events.Event) {
		e(event)
		handler(event)
	}
}

// progressObserver forwards streamed answer progress for the question at
// index as events.
func (e eventEmitter) progressObserver(index int) llms.ProgressObserver {
	return llms.ProgressObserverFunc(func(update llms.ProgressUpdate) {
		e(events.NewAnswerProgress(index, update))
	})
}
