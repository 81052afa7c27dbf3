package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"ethverify/internal/chain/chaintest"
	"ethverify/internal/constant"
	"ethverify/internal/types"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_TransientErrorsAreAbsorbed(t *testing.T) {
	source := &scriptedSource{results: []fetchResult{
		{err: transientErr()},
		{err: transientErr()},
		{err: transientErr()},
		{rec: minedRecord(types.StatusSuccess, 100)},
	}}
	net, _ := newTestNetwork(chaintest.NewClient())
	tr := newTestTracker(t, net, WithRecordSource(source))

	ok, err := tr.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, source.Calls())
	assert.Equal(t, constant.StateMinedSuccess, tr.State())
}

func TestValidate_FailedReceiptIsNegativeOutcome(t *testing.T) {
	source := &scriptedSource{results: []fetchResult{
		{rec: pendingRecord()},
		{rec: minedRecord(types.StatusFailure, 100)},
	}}
	net, _ := newTestNetwork(chaintest.NewClient())
	tr := newTestTracker(t, net, WithRecordSource(source))

	ok, err := tr.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, constant.StateMinedFailed, tr.State())
	assert.Equal(t, 2, source.Calls())
}

func TestValidate_PendingNeverSettlesUntilCancelled(t *testing.T) {
	source := &scriptedSource{results: []fetchResult{{rec: pendingRecord()}}}
	net, _ := newTestNetwork(chaintest.NewClient())
	tr := newTestTracker(t, net, WithRecordSource(source))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	ok, err := tr.Validate(ctx)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, constant.StateCancelled, tr.State())
	assert.Greater(t, source.Calls(), 0)

	settled := source.Calls()
	time.Sleep(10 * tick)
	assert.Equal(t, settled, source.Calls(), "no polls after cancellation")
}

func TestValidate_CancelBeforeFirstTick(t *testing.T) {
	source := &scriptedSource{results: []fetchResult{{rec: minedRecord(types.StatusSuccess, 1)}}}
	net, _ := newTestNetwork(chaintest.NewClient())
	tr := newTestTracker(t, net, WithRecordSource(source), WithPollInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Validate(ctx)
	require.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, source.Calls())
}

func TestValidate_FatalErrorStopsPolling(t *testing.T) {
	fatal := &FetchError{Hash: testHash, Op: "get transaction", Err: errors.New("unexpected failure")}
	source := &scriptedSource{results: []fetchResult{
		{err: transientErr()},
		{err: fatal},
		{rec: minedRecord(types.StatusSuccess, 1)},
	}}
	net, _ := newTestNetwork(chaintest.NewClient())
	tr := newTestTracker(t, net, WithRecordSource(source))

	ok, err := tr.Validate(context.Background())
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrFatalFetch)
	assert.NotErrorIs(t, err, ErrTransientFetch)
	assert.Equal(t, 2, source.Calls())
	assert.Equal(t, constant.StateFatalError, tr.State())
}

func TestValidate_RetryBudget(t *testing.T) {
	source := &scriptedSource{results: []fetchResult{{err: transientErr()}}}
	net, _ := newTestNetwork(chaintest.NewClient())
	tr := newTestTracker(t, net, WithRecordSource(source), WithPolicy(RetryPolicy{Interval: tick, MaxAttempts: 3}))

	_, err := tr.Validate(context.Background())
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrTransientFetch)
	assert.Equal(t, 3, source.Calls())
	assert.Equal(t, constant.StatePending, tr.State())
}

func TestValidate_MinedRecordIsNotRefetched(t *testing.T) {
	source := &scriptedSource{results: []fetchResult{{rec: minedRecord(types.StatusSuccess, 7)}}}
	net, _ := newTestNetwork(chaintest.NewClient())
	tr := newTestTracker(t, net, WithRecordSource(source))

	for i := 0; i < 3; i++ {
		ok, err := tr.Validate(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, source.Calls())
}

func TestValidate_OverRPC(t *testing.T) {
	client := chaintest.NewClient()
	client.AddMined(testHash, legacyTx(receiverAddr, oneEther, nil), 100, 1, 21000)
	client.QueueTxErrors(ethereum.NotFound, rpc.HTTPError{StatusCode: 503, Status: "503 Service Unavailable"})
	client.QueueReceiptErrors(ethereum.NotFound)

	net, _ := newTestNetwork(client)
	tr := newTestTracker(t, net)

	ok, err := tr.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, client.Calls("TransactionByHash"))
	assert.Equal(t, 2, client.Calls("TransactionReceipt"))
	require.NotNil(t, tr.Record())
	assert.Equal(t, uint64(100), *tr.Record().BlockNumber)
}

func TestRetryPolicy_Exponential(t *testing.T) {
	b := RetryPolicy{Interval: 10 * time.Millisecond, Multiplier: 2, MaxInterval: 30 * time.Millisecond, MaxAttempts: 4}.newBackOff()

	var delays []time.Duration
	for {
		d := b.NextBackOff()
		if d < 0 {
			break
		}
		delays = append(delays, d)
	}
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond, 30 * time.Millisecond}, delays)
}

func TestRetryPolicy_ZeroValueDefaultsToOneSecond(t *testing.T) {
	b := RetryPolicy{}.newBackOff()
	for i := 0; i < 5; i++ {
		assert.Equal(t, time.Second, b.NextBackOff())
	}
}
