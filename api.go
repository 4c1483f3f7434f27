// Package funcz provides typed functional contracts (consumers, suppliers,
// functions and predicates) at arities 1 through 4, fixed-width bit flag
// fields, and named connectors for running failing consumers with
// metrics, traces and hook events.
//
// # Overview
//
// Every contract is a plain Go func type with methods for composition.
// Type parameters take the place of a per-primitive type matrix: a
// Consumer2[int16, int16] is as specialized as a hand-written
// "accepts two shorts" interface and never boxes its arguments.
//
// # Installation
//
//	go get github.com/zoobzio/funcz
//
// # Consumers
//
// Consumers perform a side effect and return nothing:
//
//	print := funcz.Consumer[int](func(n int) { fmt.Println(n) })
//	record := funcz.Consumer[int](func(n int) { seen = append(seen, n) })
//
//	both := print.Then(record)    // print, then record
//	first := print.Before(record) // record, then print
//	all := funcz.Chain(print, record, audit)
//
// Chain with no operations returns a no-op. Chain with one operation
// returns that operation unchanged.
//
// Failing consumers return an error and stop a composed chain at the
// first failure:
//
//	save := funcz.ConsumerEx[Order](func(o Order) error { return db.Save(o) })
//	notify := funcz.ConsumerEx[Order](func(o Order) error { return mail.Send(o) })
//
//	pipeline := save.Then(notify) // notify never runs if save fails
//
// A failing consumer becomes a non-failing one with HandleEx, IgnoreEx or
// OnEx:
//
//	safe := pipeline.HandleEx(func(err error) { log.Println(err) })
//	quiet := pipeline.IgnoreEx()
//	degraded := pipeline.OnEx(queueForRetry)
//
// # Boxing
//
// Box turns a specialized consumer into an Acceptor[any]. Composition
// helpers such as ThenBoxed and Unbox detect a boxed consumer and call
// the specialized func directly instead of going through an interface
// dispatch and a type assertion per call.
//
// # Flag Fields
//
// FlagField8 through FlagField64 wrap an unsigned integer as a set of
// bits:
//
//	var f funcz.FlagField8
//	f.SetAt(3, true)
//	f.Get(0b1000) // true
//	f.Clear()
//
// # Connectors
//
// Connectors run named stages with a context and wrap failures in
// Error[T] with the path of stage names. Sequence, Handle, Fallback and
// Filter are the observable forms of ChainEx, HandleEx, OnEx and
// Predicate.When. Retry, Timeout, CircuitBreaker and RateLimiter guard a
// single stage; Switch routes by key; Concurrent, WorkerPool and
// Scaffold fan a value out to several stages. Most connectors expose
// metricz registries, tracez tracers and hookz events:
//
//	seq := funcz.NewSequence[Order]("checkout",
//	    funcz.Lift("save", save),
//	    funcz.Lift("notify", notify),
//	)
//	defer seq.Close()
//
//	if err := seq.Accept(ctx, order); err != nil {
//	    var ferr *funcz.Error[Order]
//	    if errors.As(err, &ferr) {
//	        log.Printf("failed at %s", strings.Join(ferr.Path, " -> "))
//	    }
//	}
package funcz

import (
	"context"
	"errors"
)

// Name is a type alias for stage and connector names.
// Using this type encourages storing names as constants rather than
// using inline strings throughout your code.
type Name = string

// Stage is a named operation that consumes values of type T and may
// fail. Steps and every connector implement Stage, so connectors nest.
type Stage[T any] interface {
	Accept(context.Context, T) error
	Name() Name
}

// Acceptor is the interface form of a single-argument consumer.
// Consumer[T] and Boxed[T] implement it.
type Acceptor[T any] interface {
	Accept(T)
}

// Acceptor2 is the interface form of Consumer2.
type Acceptor2[A, B any] interface {
	Accept(A, B)
}

// Acceptor3 is the interface form of Consumer3.
type Acceptor3[A, B, C any] interface {
	Accept(A, B, C)
}

// Acceptor4 is the interface form of Consumer4.
type Acceptor4[A, B, C, D any] interface {
	Accept(A, B, C, D)
}

// Sentinel errors.
var (
	// ErrNilOperation is the panic value (wrapped) when a nil operation
	// is passed to a composition method or factory.
	ErrNilOperation = errors.New("nil operation")

	// ErrIndexOutOfBounds is the panic value (wrapped) for a bit index
	// outside a flag field, and is returned by Sequence edits.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrEmptySequence is returned by Shift and Pop on an empty Sequence.
	ErrEmptySequence = errors.New("sequence is empty")

	// ErrStageNotFound is returned when a named stage does not exist.
	ErrStageNotFound = errors.New("stage not found")

	// ErrTypeMismatch is the panic value (wrapped) when a boxed consumer
	// receives a value of the wrong dynamic type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrRateLimited is returned by a RateLimiter in drop mode when no
	// token is available.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCircuitOpen is returned by an open CircuitBreaker.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)
