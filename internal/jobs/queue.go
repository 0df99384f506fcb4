package jobs

import "sync"

// Job identifies one document waiting for ingestion
type Job struct {
	DocumentID string
	UserID     string
}

// Queue is an in-memory FIFO of ingestion jobs. Entries are processed in
// arrival order and are not deduplicated: enqueueing the same document twice
// runs it twice.
type Queue struct {
	mu      sync.Mutex
	pending []Job
}

// NewQueue creates an empty Queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a job to the back of the queue
func (q *Queue) Enqueue(documentID, userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, Job{DocumentID: documentID, UserID: userID})
}

// Dequeue removes and returns the oldest job. The second return value is
// false when the queue is empty.
func (q *Queue) Dequeue() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return Job{}, false
	}

	job := q.pending[0]
	q.pending = q.pending[1:]
	return job, true
}

// Flush drops every job that has not started processing and returns how many
// were dropped. A job already handed to the worker is unaffected.
func (q *Queue) Flush() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := len(q.pending)
	q.pending = nil
	return dropped
}

// Len reports the number of jobs waiting in the queue
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
