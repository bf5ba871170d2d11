// Package load provides concurrent decoding of VCF files into the record
// store.
package load

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-vcf/internal/duckdb"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

// Loader decodes files concurrently and appends the records to a store.
// Files are decoded in parallel; a single collector goroutine batches the
// records and writes them, since the store appender is not safe for
// concurrent use.
type Loader struct {
	store       *duckdb.Store
	logger      *zap.Logger
	concurrency int
	batchSize   int
	permissive  bool
	configure   func(*vcf.Iterator)
}

// New creates a loader writing to the given store.
func New(store *duckdb.Store) *Loader {
	return &Loader{
		store:       store,
		logger:      zap.NewNop(),
		concurrency: runtime.NumCPU(),
		batchSize:   1000,
	}
}

// SetLogger sets the logger for skipped-line diagnostics.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// SetConcurrency caps the number of files decoded in parallel.
// Zero or negative means one worker per CPU.
func (l *Loader) SetConcurrency(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	l.concurrency = n
}

// SetBatchSize sets the number of records written to the store at a time.
func (l *Loader) SetBatchSize(n int) {
	if n > 0 {
		l.batchSize = n
	}
}

// SetPermissive configures the failure policy for undecodable lines.
func (l *Loader) SetPermissive(permissive bool) {
	l.permissive = permissive
}

// SetConfigure registers a hook run on each file's iterator after the
// header is parsed, before any records are decoded. Used to wire
// header-dependent INFO processors.
func (l *Loader) SetConfigure(fn func(*vcf.Iterator)) {
	l.configure = fn
}

// Run decodes every path and writes the records to the store. It returns
// the number of records written; on error the count covers the batches
// written before the failure.
func (l *Loader) Run(ctx context.Context, paths []string) (int64, error) {
	results := make(chan duckdb.StoredRecord, 2*l.concurrency)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	var written int64
	writerErr := make(chan error, 1)
	go func() {
		n, err := l.writeBatches(results)
		written = n
		writerErr <- err
	}()

	for _, path := range paths {
		g.Go(func() error {
			return l.decodeFile(ctx, path, results)
		})
	}

	decodeErr := g.Wait()
	close(results)
	writeErr := <-writerErr

	if decodeErr != nil {
		return written, decodeErr
	}
	return written, writeErr
}

// decodeFile streams one file's records into the results channel.
func (l *Loader) decodeFile(ctx context.Context, path string, results chan<- duckdb.StoredRecord) error {
	it, err := vcf.NewIterator(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer it.Close()

	it.SetPermissive(l.permissive)
	it.SetLogger(l.logger.With(zap.String("source", path)))
	if l.configure != nil {
		l.configure(it)
	}

	for {
		rec, err := it.Next()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if rec == nil {
			return nil
		}

		select {
		case results <- duckdb.StoredRecord{Source: path, Line: it.LineNumber(), Record: rec}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// writeBatches collects records into batches and appends them to the store.
func (l *Loader) writeBatches(results <-chan duckdb.StoredRecord) (int64, error) {
	var written int64
	batch := make([]duckdb.StoredRecord, 0, l.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.store.WriteRecords(batch); err != nil {
			return err
		}
		written += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for r := range results {
		batch = append(batch, r)
		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				// Drain remaining results to unblock the decoders.
				for range results {
				}
				return written, err
			}
		}
	}

	return written, flush()
}
