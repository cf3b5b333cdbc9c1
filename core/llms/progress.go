package llms

// ProgressUpdate is emitted while a response is being assembled.
type ProgressUpdate struct {
	// Text is the flushed text, exactly as it was received.
	Text string
	// StartsLine is true when Text should be rendered on a fresh line, i.e.
	// this is the first update or the previous one ended with a line break.
	StartsLine bool
	// Sequence counts the updates emitted for the current response, starting
	// at 0. Renderers use it to rotate their progress marker.
	Sequence int
}

// ProgressObserver receives advisory progress updates. It has no influence on
// the assembled result.
type ProgressObserver interface {
	OnProgress(ProgressUpdate)
}

type ProgressObserverFunc func(ProgressUpdate)

func (f ProgressObserverFunc) OnProgress(update ProgressUpdate) { f(update) }

type progressObservers []ProgressObserver

func (p progressObservers) OnProgress(update ProgressUpdate) {
	for _, observer := range p {
		observer.OnProgress(update)
	}
}

type noopObserver struct{}

func (noopObserver) OnProgress(ProgressUpdate) {}
