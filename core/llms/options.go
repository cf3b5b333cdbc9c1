package llms

import "time"

const (
	// DefaultWordBudget is the number of whitespace-delimited words after
	// which response assembly stops.
	DefaultWordBudget = 2000
	// DefaultFlushLength is the buffered length (in characters) above which
	// the buffer is flushed even without punctuation.
	DefaultFlushLength = 50
	// DefaultProgressInterval is the minimum time between two progress
	// updates.
	DefaultProgressInterval = 100 * time.Millisecond
)

type CollectOptions struct {
	WordBudget       int
	FlushLength      int
	ProgressInterval time.Duration
	Observer         ProgressObserver

	now func() time.Time
}

type CollectOption func(*CollectOptions)

func defaultCollectOptions() CollectOptions {
	return CollectOptions{
		WordBudget:       DefaultWordBudget,
		FlushLength:      DefaultFlushLength,
		ProgressInterval: DefaultProgressInterval,
		Observer:         noopObserver{},
		now:              time.Now,
	}
}

// WithWordBudget overrides the word ceiling. Non-positive values are ignored.
func WithWordBudget(words int) CollectOption {
	return func(o *CollectOptions) {
		if words > 0 {
			o.WordBudget = words
		}
	}
}

func WithFlushLength(length int) CollectOption {
	return func(o *CollectOptions) {
		if length > 0 {
			o.FlushLength = length
		}
	}
}

func WithProgressInterval(interval time.Duration) CollectOption {
	return func(o *CollectOptions) {
		if interval >= 0 {
			o.ProgressInterval = interval
		}
	}
}

// WithProgressObserver adds an observer for incremental progress. Observers
// added by repeated options are all notified, in the order they were added.
// A nil observer is ignored.
func WithProgressObserver(observer ProgressObserver) CollectOption {
	return func(o *CollectOptions) {
		if observer == nil {
			return
		}
		switch current := o.Observer.(type) {
		case nil, noopObserver:
			o.Observer = observer
		case progressObservers:
			chained := make(progressObservers, 0, len(current)+1)
			o.Observer = append(append(chained, current...), observer)
		default:
			o.Observer = progressObservers{current, observer}
		}
	}
}

func withClock(now func() time.Time) CollectOption {
	return func(o *CollectOptions) { o.now = now }
}
