// Package tracker follows a single transaction from pending to a terminal
// mined state and verifies the transfer it carries.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ethverify/internal/constant"
	"ethverify/internal/types"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/logx"
)

// Tracker owns the record of one transaction hash. It is not safe for
// concurrent use; track independent hashes with independent trackers.
type Tracker struct {
	net    *Network
	hash   common.Hash
	source RecordSource
	policy RetryPolicy

	record  *types.TransactionRecord
	state   constant.TxState
	lastErr error
}

type Option func(*Tracker)

func WithPolicy(p RetryPolicy) Option {
	return func(t *Tracker) {
		t.policy = p
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.policy.Interval = d
	}
}

// WithRecordSource replaces the RPC-backed fetcher.
func WithRecordSource(src RecordSource) Option {
	return func(t *Tracker) {
		t.source = src
	}
}

// NewTracker validates hash and returns an idle tracker. No network call is
// made until one of its methods is invoked.
func NewTracker(net *Network, hash string, opts ...Option) (*Tracker, error) {
	if net == nil || net.Client == nil {
		return nil, errors.New("tracker: network client is required")
	}
	h, err := ParseHash(hash)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		net:    net,
		hash:   h,
		policy: FixedPolicy(DefaultPollInterval),
		state:  constant.StatePending,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.source == nil {
		t.source = NewRecordFetcher(net.Client)
	}
	return t, nil
}

// LoadTracker builds a tracker and performs one fetch, so the returned
// tracker always holds a record. Fetch failures, transient ones included,
// are returned as is.
func LoadTracker(ctx context.Context, net *Network, hash string, opts ...Option) (*Tracker, error) {
	t, err := NewTracker(net, hash, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := t.Refresh(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) Hash() common.Hash {
	return t.hash
}

// Record is the latest observed record, nil before the first successful fetch.
func (t *Tracker) Record() *types.TransactionRecord {
	return t.record
}

func (t *Tracker) State() constant.TxState {
	return t.state
}

// Refresh fetches once. A record that is already mined is kept as is.
func (t *Tracker) Refresh(ctx context.Context) (*types.TransactionRecord, error) {
	if t.record.Mined() {
		return t.record, nil
	}
	rec, err := t.source.Fetch(ctx, t.hash)
	if err != nil {
		return nil, err
	}
	t.observe(rec)
	return t.record, nil
}

// observe stores rec and moves the state machine. The block number is
// written at most once.
func (t *Tracker) observe(rec *types.TransactionRecord) {
	if rec == nil || t.record.Mined() {
		return
	}
	t.record = rec
	if !rec.Mined() {
		t.state = constant.StatePending
		return
	}
	if rec.Status == types.StatusSuccess {
		t.state = constant.StateMinedSuccess
	} else {
		t.state = constant.StateMinedFailed
	}
}

// fetchStep fetches once and absorbs transient failures.
func (t *Tracker) fetchStep(ctx context.Context) error {
	rec, err := t.source.Fetch(ctx, t.hash)
	if err != nil {
		if errors.Is(err, ErrTransientFetch) {
			t.lastErr = err
			logx.WithContext(ctx).Debugf("tx %s not available yet: %v", t.hash.Hex(), err)
			return nil
		}
		return err
	}
	t.observe(rec)
	return nil
}

// poll runs step after every delay the retry policy hands out, until step
// is done, step fails, the policy gives up or ctx ends. The next delay only
// starts once the previous step has returned.
func (t *Tracker) poll(ctx context.Context, step func(ctx context.Context) (bool, error)) error {
	schedule := t.policy.newBackOff()
	t.lastErr = nil

	for attempt := 0; ; attempt++ {
		delay := schedule.NextBackOff()
		if delay == backoff.Stop {
			if t.lastErr != nil {
				return fmt.Errorf("%w after %d polls: %w", ErrRetriesExhausted, attempt, t.lastErr)
			}
			return fmt.Errorf("%w after %d polls", ErrRetriesExhausted, attempt)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return cancelled(ctx.Err())
		case <-timer.C:
		}

		done, err := step(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil && (err != nil || !done) {
			return cancelled(ctxErr)
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// settle records how a wait ended.
func (t *Tracker) settle(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrCancelled):
		t.state = constant.StateCancelled
	case errors.Is(err, ErrRetriesExhausted):
	default:
		t.state = constant.StateFatalError
	}
}
