package persist

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ChatStore is the storage the archive writes through.
type ChatStore interface {
	InsertBatch(ctx context.Context, rows []ChatRow) error
}

const archiveWriteTimeout = 5 * time.Second

// Archive writes chat batches to a ChatStore from its own goroutine so the
// game loop never waits on the database.
type Archive struct {
	store   ChatStore
	batches chan []ChatRow
	done    chan struct{}
	log     *zap.Logger
}

func NewArchive(store ChatStore, queueSize int, log *zap.Logger) *Archive {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Archive{
		store:   store,
		batches: make(chan []ChatRow, queueSize),
		done:    make(chan struct{}),
		log:     log,
	}
}

// Enqueue hands a batch to the writer. It never blocks; a full queue drops
// the batch and reports false.
func (a *Archive) Enqueue(rows []ChatRow) bool {
	if len(rows) == 0 {
		return true
	}
	select {
	case a.batches <- rows:
		return true
	default:
		a.log.Warn("chat archive queue full, dropping batch", zap.Int("rows", len(rows)))
		return false
	}
}

// Run writes batches until ctx is cancelled, then flushes whatever is still
// queued. Done is closed on return.
func (a *Archive) Run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case rows := <-a.batches:
			a.write(rows)
		case <-ctx.Done():
			for {
				select {
				case rows := <-a.batches:
					a.write(rows)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has flushed and returned.
func (a *Archive) Done() <-chan struct{} { return a.done }

func (a *Archive) write(rows []ChatRow) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
	defer cancel()
	if err := a.store.InsertBatch(ctx, rows); err != nil {
		a.log.Error("chat archive write failed", zap.Int("rows", len(rows)), zap.Error(err))
		return
	}
	a.log.Debug("chat archived", zap.Int("rows", len(rows)))
}
