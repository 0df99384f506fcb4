package jobs

import (
	"context"
	"log"
	"time"
)

// IngestProcessor runs the ingestion pipeline for one queued document
type IngestProcessor interface {
	ProcessDocument(ctx context.Context, documentID, userID string) error
}

// Worker drains the ingestion queue on a polling loop. A single worker
// processes jobs one at a time, so two jobs for the same document can never
// run concurrently.
type Worker struct {
	queue        *Queue
	processor    IngestProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(queue *Queue, processor IngestProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		queue:        queue,
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("worker started with poll interval: %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("worker stopped: stop signal received")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain processes queued jobs until the queue is empty or a stop is requested.
// A failed job marks its document failed inside the processor; the worker
// only logs and moves on.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		default:
		}

		job, ok := w.queue.Dequeue()
		if !ok {
			return
		}

		if err := w.processor.ProcessDocument(ctx, job.DocumentID, job.UserID); err != nil {
			log.Printf("worker: ingestion failed for document %s: %v", job.DocumentID, err)
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("worker shutdown complete")
}
