// Package queue
// Author: momentics <momentics@gmail.com>
//
// Bounded-concurrency blocking FIFO queue, the ordering and wake engine
// behind the completion port. Entries are held in a FIFO backing store;
// waiting consumers are woken only while the count of active consumers
// is below the configured concurrency limit. A consumer counts as
// active from a successful Remove until its next Remove (or Detach) on
// the same queue.
package queue
