// Package dispatch fans one prompt out to every selected model at once and
// collects one record per model, in selection order.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"omnibot/model"
)

// FailureMessage is the user-facing error text of every failed record.
const FailureMessage = "Failed to get response"

var (
	ErrNotReady        = errors.New("gateway is not ready yet")
	ErrReadinessFailed = errors.New("gateway failed to initialize")
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrNoSelection     = errors.New("no model selected")
	ErrCanceled        = errors.New("dispatch canceled")
	ErrUnknownModel    = errors.New("unknown model")
)

// Readiness is the external initialization signal gating dispatch.
type Readiness interface {
	Ready() bool
	Err() error
}

// IsValidation reports whether err is a precondition failure, i.e. the
// dispatch never started.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotReady) ||
		errors.Is(err, ErrReadinessFailed) ||
		errors.Is(err, ErrEmptyPrompt) ||
		errors.Is(err, ErrNoSelection)
}

type Dispatcher struct {
	registry *model.Registry
	ready    Readiness
}

func New(registry *model.Registry, ready Readiness) *Dispatcher {
	return &Dispatcher{registry: registry, ready: ready}
}

func (d *Dispatcher) Registry() *model.Registry {
	return d.registry
}

// Validate checks the gateway readiness error before the readiness flag, then
// the prompt, then the selection.
func (d *Dispatcher) Validate(prompt string, selection []string) error {
	if d.ready != nil {
		if err := d.ready.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrReadinessFailed, err)
		}
		if !d.ready.Ready() {
			return ErrNotReady
		}
	}
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(selection) == 0 {
		return ErrNoSelection
	}
	return nil
}

// Dispatch invokes every selected provider concurrently under ctx. It never
// fails fast: each record is the provider's response or a failure record, at
// the same index as its id in selection. When ctx is done by the time every
// call has settled, the results are discarded and ErrCanceled is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string, selection []string) ([]model.Response, error) {
	if err := d.Validate(prompt, selection); err != nil {
		return nil, err
	}

	mapper := iter.Mapper[string, model.Response]{MaxGoroutines: len(selection)}
	results := mapper.Map(selection, func(id *string) model.Response {
		return d.invoke(ctx, *id, prompt)
	})

	if ctx.Err() != nil {
		return nil, ErrCanceled
	}
	return results, nil
}

func (d *Dispatcher) invoke(ctx context.Context, id, prompt string) (resp model.Response) {
	name := d.registry.Name(id)
	p, ok := d.registry.Get(id)
	if !ok {
		return Failure(name, fmt.Errorf("%w: %s", ErrUnknownModel, id))
	}

	defer func() {
		if r := recover(); r != nil {
			resp = Failure(name, fmt.Errorf("provider panicked: %v", r))
		}
	}()

	out, err := p.Invoke(ctx, prompt)
	if err != nil {
		return Failure(name, err)
	}
	return out
}

// Failure builds the record shown for a failed provider call.
func Failure(name string, cause error) model.Response {
	r := model.Response{Model: name, Error: FailureMessage}
	if cause != nil {
		r.Detail = cause.Error()
	}
	return r
}
