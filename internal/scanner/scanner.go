// Package scanner runs connection health checks over many ports of one
// address with a bounded pool of workers.
package scanner

import (
	"context"
	"errors"
	"sync"
)

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 16

// ErrNoPorts is returned when Sweep is given no ports.
var ErrNoPorts = errors.New("no ports provided")

// CheckFunc probes a single port.
type CheckFunc func(ctx context.Context, port uint16) error

// Options configures a sweep.
type Options struct {
	Workers int
}

// Result is the outcome of one port.
type Result struct {
	Port uint16
	Err  error
}

// Sweep runs check for every port and returns the results in the order of
// ports. Ports not started before ctx is done report ctx.Err().
func Sweep(ctx context.Context, ports []uint16, check CheckFunc, opts Options) ([]Result, error) {
	if len(ports) == 0 {
		return nil, ErrNoPorts
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers > len(ports) {
		opts.Workers = len(ports)
	}

	results := make([]Result, len(ports))
	for i, p := range ports {
		results[i].Port = p
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			results[i].Err = check(ctx, ports[i])
		}
	}

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go worker()
	}

	next := 0
enqueue:
	for ; next < len(ports) && ctx.Err() == nil; next++ {
		select {
		case <-ctx.Done():
			break enqueue
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(ports); i++ {
		results[i].Err = ctx.Err()
	}
	return results, nil
}
