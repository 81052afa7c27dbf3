package tracker

import (
	"context"

	"ethverify/internal/constant"

	"github.com/zeromicro/go-zero/core/logx"
)

// Validate polls until the transaction is mined. It returns (true, nil) for
// a successful receipt and (false, nil) for a failed one; a failed
// transaction is an answer, not an error. Transient fetch failures are
// retried silently. Fatal fetch failures, cancellation and an exhausted
// retry policy are returned as errors.
func (t *Tracker) Validate(ctx context.Context) (bool, error) {
	if t.record.Mined() {
		return t.state == constant.StateMinedSuccess, nil
	}

	logger := logx.WithContext(ctx)
	logger.Infof("validating tx %s on %s", t.hash.Hex(), t.net.Name)

	err := t.poll(ctx, func(ctx context.Context) (bool, error) {
		if err := t.fetchStep(ctx); err != nil {
			return false, err
		}
		return t.record.Mined(), nil
	})
	t.settle(err)
	if err != nil {
		logger.Errorf("validate tx %s ended in %s: %v", t.hash.Hex(), t.state, err)
		return false, err
	}

	logger.Infof("tx %s mined in block %d: %s", t.hash.Hex(), *t.record.BlockNumber, t.state)
	return t.state == constant.StateMinedSuccess, nil
}
