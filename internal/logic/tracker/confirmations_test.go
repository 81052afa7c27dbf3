package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"ethverify/internal/chain/chaintest"
	"ethverify/internal/constant"
	"ethverify/internal/types"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmations_Depth(t *testing.T) {
	tests := []struct {
		name   string
		rec    *types.TransactionRecord
		height uint64
		want   uint64
	}{
		{name: "no record", rec: nil, height: 100, want: 0},
		{name: "pending", rec: pendingRecord(), height: 100, want: 0},
		{name: "node behind the block", rec: minedRecord(types.StatusSuccess, 100), height: 90, want: 0},
		{name: "same block", rec: minedRecord(types.StatusSuccess, 100), height: 100, want: 0},
		{name: "deeper", rec: minedRecord(types.StatusSuccess, 100), height: 112, want: 12},
		{name: "failed tx still has depth", rec: minedRecord(types.StatusFailure, 5), height: 8, want: 3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Confirmations(tc.rec, tc.height))
		})
	}
}

func TestTrackerConfirmations_OneShot(t *testing.T) {
	client := chaintest.NewClient()
	client.AddMined(testHash, legacyTx(receiverAddr, oneEther, nil), 100, 1, 21000)
	client.SetHeight(104)
	net, _ := newTestNetwork(client)
	tr := newTestTracker(t, net)

	n, err := tr.Confirmations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	client.SetHeight(110)
	n, err = tr.Confirmations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)
	assert.Equal(t, 1, client.Calls("TransactionByHash"))
}

func TestTrackerConfirmations_UnknownTransaction(t *testing.T) {
	client := chaintest.NewClient()
	client.SetHeight(50)
	net, _ := newTestNetwork(client)
	tr := newTestTracker(t, net)

	n, err := tr.Confirmations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, client.Calls("BlockNumber"))
}

func TestWaitForConfirmations_PendingUntilCancelled(t *testing.T) {
	client := chaintest.NewClient()
	client.AddPending(testHash, legacyTx(receiverAddr, oneEther, nil))
	client.SetHeight(1000)
	net, _ := newTestNetwork(client)
	tr := newTestTracker(t, net)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	n, err := tr.WaitForConfirmations(ctx, 0)
	require.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, n)
	assert.Zero(t, client.Calls("BlockNumber"), "height is not polled before the tx is mined")
	assert.Zero(t, client.Calls("TransactionReceipt"), "pending tx skips the receipt lookup")
	assert.Greater(t, client.Calls("TransactionByHash"), 0)
	assert.Equal(t, constant.StateCancelled, tr.State())

	n, err = tr.Confirmations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWaitForConfirmations_ReachesThreshold(t *testing.T) {
	client := chaintest.NewClient()
	client.AddMined(testHash, legacyTx(receiverAddr, oneEther, nil), 100, 1, 21000)
	client.SetHeight(100)
	height := uint64(100)
	client.OnBlockNumber = func(c *chaintest.Client) {
		height++
		c.SetHeight(height)
	}
	net, _ := newTestNetwork(client)
	tr := newTestTracker(t, net)

	n, err := tr.WaitForConfirmations(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	assert.Equal(t, 3, client.Calls("BlockNumber"))
	assert.Equal(t, 1, client.Calls("TransactionByHash"), "record is not refetched once mined")
	assert.Equal(t, constant.StateMinedSuccess, tr.State())
}

func TestWaitForConfirmations_RecordAppearsLater(t *testing.T) {
	client := chaintest.NewClient()
	client.SetHeight(12)
	source := &scriptedSource{results: []fetchResult{
		{err: transientErr()},
		{rec: pendingRecord()},
		{rec: minedRecord(types.StatusSuccess, 10)},
	}}
	net, _ := newTestNetwork(client)
	tr := newTestTracker(t, net, WithRecordSource(source))

	n, err := tr.WaitForConfirmations(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	assert.Equal(t, 3, source.Calls())
	assert.Equal(t, 1, client.Calls("BlockNumber"))
}

func TestWaitForConfirmations_HeightErrors(t *testing.T) {
	t.Run("transient errors are retried", func(t *testing.T) {
		client := chaintest.NewClient()
		client.AddMined(testHash, legacyTx(receiverAddr, oneEther, nil), 10, 1, 21000)
		client.SetHeight(20)
		client.QueueHeightErrors(rpc.HTTPError{StatusCode: 502, Status: "502 Bad Gateway"}, errors.New("i/o timeout"))
		net, _ := newTestNetwork(client)
		tr := newTestTracker(t, net)

		n, err := tr.WaitForConfirmations(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), n)
		assert.Equal(t, 3, client.Calls("BlockNumber"))
	})

	t.Run("fatal error stops the wait", func(t *testing.T) {
		client := chaintest.NewClient()
		client.AddMined(testHash, legacyTx(receiverAddr, oneEther, nil), 10, 1, 21000)
		client.QueueHeightErrors(errors.New("the method eth_blockNumber does not exist"))
		net, _ := newTestNetwork(client)
		tr := newTestTracker(t, net)

		_, err := tr.WaitForConfirmations(context.Background(), 1)
		require.ErrorIs(t, err, ErrFatalFetch)
		assert.Equal(t, constant.StateFatalError, tr.State())
	})
}
