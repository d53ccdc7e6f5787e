package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/ir"
)

// Boot runs the instance's setup: the route hook, then each initializer in
// declaration order. The instance ends in Booted, or in Failed with the
// error returned wrapped as SETUP_FAILED.
//
// Boot is single-flight. Callers arriving while a boot is in progress wait
// for it and get the same result; setup runs once. Boot on an instance that
// is not Built returns INVALID_STATE. Setup is never cancelled, so a setup
// step must not Boot its own instance.
func (i *Instance) Boot(ctx context.Context) error {
	i.mu.Lock()
	switch i.state {
	case StateBuilt:
		done := make(chan struct{})
		i.state = StateBooting
		i.bootDone = done
		i.mu.Unlock()
		return i.runBoot(ctx, done)

	case StateBooting:
		done := i.bootDone
		i.mu.Unlock()
		i.builder.logger.Debug("joining in-flight boot", "engine", i.name, "instance", i.id)
		<-done
		i.mu.Lock()
		defer i.mu.Unlock()
		return i.bootErr

	case StateDestroyed:
		i.mu.Unlock()
		return destroyedInstance(i.name, "boot")

	default:
		state := i.state
		i.mu.Unlock()
		return invalidState(i.name, "boot", state)
	}
}

func (i *Instance) runBoot(ctx context.Context, done chan struct{}) error {
	b := i.builder
	b.record(ctx, i, ir.EventBooting, "")
	b.logger.Debug("booting", "engine", i.name, "instance", i.id)

	err := i.runSetup(ctx)

	next := StateBooted
	if err != nil {
		next = StateFailed
		b.record(ctx, i, ir.EventFailed, err.Error())
		b.logger.Warn("boot failed", "engine", i.name, "instance", i.id, "error", err)
	} else {
		b.record(ctx, i, ir.EventBooted, "")
		b.logger.Debug("booted", "engine", i.name, "instance", i.id)
	}

	i.mu.Lock()
	i.state = next
	i.bootErr = err
	close(done)
	i.mu.Unlock()
	return err
}

func (i *Instance) runSetup(ctx context.Context) (err error) {
	step := "routes"
	defer func() {
		if r := recover(); r != nil {
			err = setupFailed(i.name, step, fmt.Errorf("panic: %v", r))
		}
	}()

	routes, initializers := i.setupSteps()
	if routes != nil {
		if rerr := routes(ctx, i); rerr != nil {
			return setupFailed(i.name, step, rerr)
		}
	}
	for idx, init := range initializers {
		step = init.Name
		if step == "" {
			step = fmt.Sprintf("initializer[%d]", idx)
		}
		if init.Run == nil {
			continue
		}
		if ierr := init.Run(ctx, i); ierr != nil {
			return setupFailed(i.name, step, ierr)
		}
	}
	return nil
}

// Destroy tears the instance down: children first in reverse build order,
// then its own container. Owned services are shut down; delegated ones are
// left to their owner.
//
// Destroy while Booting returns INVALID_STATE. If a child cannot be
// destroyed, the instance stays live and the error is returned. After a
// successful Destroy every operation, Destroy included, returns
// DESTROYED_INSTANCE.
func (i *Instance) Destroy(ctx context.Context) error {
	for {
		i.mu.Lock()
		switch i.state {
		case StateDestroyed:
			i.mu.Unlock()
			return destroyedInstance(i.name, "destroy")
		case StateBooting:
			i.mu.Unlock()
			return invalidState(i.name, "destroy", StateBooting)
		}
		if len(i.children) == 0 {
			i.state = StateDestroyed
			i.mu.Unlock()
			break
		}
		// Children built while this pass runs are picked up by the next one.
		children := make([]*Instance, len(i.children))
		copy(children, i.children)
		i.mu.Unlock()

		var errs []error
		for idx := len(children) - 1; idx >= 0; idx-- {
			err := children[idx].Destroy(ctx)
			if err != nil && !IsDestroyedInstance(err) {
				errs = append(errs, err)
				continue
			}
			i.release(children[idx])
		}
		if len(errs) > 0 {
			return fmt.Errorf("destroy %s: %w", i.name, errors.Join(errs...))
		}
	}

	if err := i.container.Destroy(); err != nil && !errors.Is(err, container.ErrDestroyed) {
		i.builder.logger.Warn("container teardown failed", "engine", i.name, "error", err)
	}
	if i.parent != nil {
		i.parent.release(i)
	}

	i.builder.record(ctx, i, ir.EventDestroyed, "")
	i.builder.logger.Debug("destroyed", "engine", i.name, "instance", i.id)
	return nil
}
