package tracker

import (
	"context"
	"errors"

	"ethverify/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

// Confirmations is the number of blocks mined on top of the record's block.
// It is 0 for a pending record and never negative.
func Confirmations(rec *types.TransactionRecord, height uint64) uint64 {
	if !rec.Mined() || height <= *rec.BlockNumber {
		return 0
	}
	return height - *rec.BlockNumber
}

// Confirmations queries the current depth once. A transaction the node
// cannot see yet has 0 confirmations.
func (t *Tracker) Confirmations(ctx context.Context) (uint64, error) {
	if _, err := t.Refresh(ctx); err != nil {
		if errors.Is(err, ErrTransientFetch) {
			return 0, nil
		}
		return 0, err
	}
	if !t.record.Mined() {
		return 0, nil
	}
	height, err := t.net.Client.BlockNumber(ctx)
	if err != nil {
		return 0, classify(t.hash, "get block number", err)
	}
	return Confirmations(t.record, height), nil
}

// WaitForConfirmations polls until the transaction is at least threshold
// blocks deep and returns the depth reached. The record is fetched until a
// block number is seen and never again after that; the chain height is
// fetched on every poll.
func (t *Tracker) WaitForConfirmations(ctx context.Context, threshold uint64) (uint64, error) {
	logger := logx.WithContext(ctx)
	logger.Infof("waiting for %d confirmations of tx %s on %s", threshold, t.hash.Hex(), t.net.Name)

	var achieved uint64
	err := t.poll(ctx, func(ctx context.Context) (bool, error) {
		if !t.record.Mined() {
			if err := t.fetchStep(ctx); err != nil {
				return false, err
			}
			if !t.record.Mined() {
				return false, nil
			}
		}

		height, err := t.net.Client.BlockNumber(ctx)
		if err != nil {
			fetchErr := classify(t.hash, "get block number", err)
			if errors.Is(fetchErr, ErrTransientFetch) {
				t.lastErr = fetchErr
				return false, nil
			}
			return false, fetchErr
		}

		achieved = Confirmations(t.record, height)
		logger.Debugf("tx %s has %d/%d confirmations", t.hash.Hex(), achieved, threshold)
		return achieved >= threshold, nil
	})
	t.settle(err)
	if err != nil {
		return achieved, err
	}

	logger.Infof("tx %s reached %d confirmations", t.hash.Hex(), achieved)
	return achieved, nil
}
