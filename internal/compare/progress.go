package compare

import "context"

// Progress is an observational snapshot of batch consumption during the row
// streaming phase. Purely informational; results never depend on it.
type Progress struct {
	Table        string
	BatchesDone  int
	BatchesTotal int
}

// ProgressSink receives progress events. Implementations must not block for
// long; the engine publishes synchronously between batches.
type ProgressSink interface {
	Publish(p Progress)
}

// NopSink discards progress events.
type NopSink struct{}

func (NopSink) Publish(Progress) {}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(p Progress)

func (f SinkFunc) Publish(p Progress) { f(p) }

// countingSource wraps a RowSource and publishes a progress event after
// every batch it yields.
type countingSource struct {
	inner RowSource
	state *progressState
}

type progressState struct {
	table string
	sink  ProgressSink
	done  int
	total int
}

func (c *countingSource) Next(ctx context.Context) ([]RowRecord, error) {
	batch, err := c.inner.Next(ctx)
	if err == nil && batch != nil {
		c.state.done++
		c.state.sink.Publish(Progress{
			Table:        c.state.table,
			BatchesDone:  c.state.done,
			BatchesTotal: c.state.total,
		})
	}
	return batch, err
}
