// Package frame batches visual writes until the next render pass.
//
// Components never touch their visual elements directly in response to a
// logical change. They request a task, and the host flushes all pending
// tasks once before painting. Tasks read current component fields when they
// run, so several requests in one turn settle on the last written values.
package frame

// Scheduler queues visual tasks until Flush.
type Scheduler struct {
	pending []func()
	armed   bool
	post    func()
}

// NewScheduler creates a scheduler. post, if non-nil, is called once for
// each batch, when the first task is requested after a flush. Hosts use it
// to arm exactly one repaint.
func NewScheduler(post func()) *Scheduler {
	return &Scheduler{post: post}
}

// Request queues fn for the next flush.
func (s *Scheduler) Request(fn func()) {
	s.pending = append(s.pending, fn)
	if !s.armed {
		s.armed = true
		if s.post != nil {
			s.post()
		}
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Flush runs queued tasks in request order. Tasks requested while flushing
// are deferred to the next flush. It returns the number of tasks run.
func (s *Scheduler) Flush() int {
	batch := s.pending
	s.pending = nil
	s.armed = false
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
