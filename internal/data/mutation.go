package data

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/observability"
	"github.com/todolite/todolite/internal/output"
)

// Mutation is one optimistic write, driven by Controller.Apply:
//
//  1. Prepare checks the intent against the cache. A non-nil error stops
//     the mutation before any network call.
//  2. ApplyLocally makes the tentative change, if any.
//  3. ApplyRemotely performs the single network write.
//  4. On success Confirm folds the server's answer into the cache. On
//     failure the cache is rebuilt from the remote instead.
type Mutation interface {
	Info() observability.OperationInfo
	Prepare(store *Store) error
	ApplyLocally(store *Store) bool
	ApplyRemotely(ctx context.Context, remote Remote) error
	Confirm(store *Store) (refresh bool)
}

// errSkip drops an intent silently: no call, no report, no refresh.
var errSkip = errors.New("data: intent skipped")

// Apply runs m through the two-phase protocol.
//
// Local errors from Prepare are reported and returned with the cache
// untouched. Any other failure triggers a Refresh, then is reported and
// returned. Writes are never retried.
func (c *Controller) Apply(ctx context.Context, m Mutation) error {
	op := m.Info()
	ctx = c.hooks.OnOperationStart(ctx, op)
	start := time.Now()

	err := c.apply(ctx, m, op)

	c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	return err
}

func (c *Controller) apply(ctx context.Context, m Mutation, op observability.OperationInfo) error {
	log := c.log.WithFields(logrus.Fields{"operation": op.Operation, "id": op.ResourceID})

	if err := m.Prepare(c.store); err != nil {
		if errors.Is(err, errSkip) {
			log.Debug("intent ignored")
			return nil
		}
		c.report(err)
		return err
	}

	if m.ApplyLocally(c.store) {
		c.render()
	}

	if err := m.ApplyRemotely(ctx, c.remote); err != nil {
		if !output.IsLocal(err) {
			log.WithError(err).Debug("write failed, resynchronizing")
			if rerr := c.resync(ctx); rerr != nil {
				log.WithError(rerr).Debug("resync failed")
			}
		}
		c.report(err)
		return err
	}

	if m.Confirm(c.store) {
		if err := c.resync(ctx); err != nil {
			c.report(err)
			return err
		}
		return nil
	}

	c.render()
	return nil
}
