package calldata

import (
	"math/big"
	"testing"

	"ethverify/internal/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receiver = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")

func TestEncodeTransfer_Layout(t *testing.T) {
	data, err := EncodeTransfer(receiver, big.NewInt(500_000))
	require.NoError(t, err)

	require.Len(t, data, 4+32+32)
	assert.Equal(t, TransferSelector[:], data[:4])
	assert.Equal(t, common.LeftPadBytes(receiver.Bytes(), 32), data[4:36])
	assert.Equal(t, common.LeftPadBytes(big.NewInt(500_000).Bytes(), 32), data[36:])
}

func TestDefaultRegistry_DecodesTransfer(t *testing.T) {
	data, err := EncodeTransfer(receiver, big.NewInt(500_000))
	require.NoError(t, err)

	payload, err := DefaultRegistry().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, receiver, payload.Receiver)
	assert.Equal(t, int64(500_000), payload.RawAmount.Int64())
}

func TestDefaultRegistry_RejectsOtherSignatures(t *testing.T) {
	approve, err := ERC20.Pack("approve", receiver, big.NewInt(1))
	require.NoError(t, err)
	transferFrom, err := ERC20.Pack("transferFrom", receiver, receiver, big.NewInt(1))
	require.NoError(t, err)
	transfer, err := EncodeTransfer(receiver, big.NewInt(1))
	require.NoError(t, err)

	testCases := []struct {
		name  string
		input []byte
	}{
		{name: "approve selector", input: approve},
		{name: "transferFrom not registered by default", input: transferFrom},
		{name: "shorter than selector", input: []byte{0xa9, 0x05}},
		{name: "truncated arguments", input: transfer[:20]},
	}

	reg := DefaultRegistry()
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Decode(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)

			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestRegistry_RegisterTransferFrom(t *testing.T) {
	from := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	data, err := ERC20.Pack("transferFrom", from, receiver, big.NewInt(7))
	require.NoError(t, err)

	reg := DefaultRegistry()
	reg.Register(TransferFromSelector, TransferFromDecoder())

	payload, err := reg.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, receiver, payload.Receiver)
	assert.Equal(t, int64(7), payload.RawAmount.Int64())
	assert.Equal(t, []Selector{TransferFromSelector, TransferSelector}, reg.Selectors())
}

func TestRegistry_CustomDecoder(t *testing.T) {
	custom := Selector{0xde, 0xad, 0xbe, 0xef}
	reg := NewRegistry()
	reg.Register(custom, DecoderFunc(func(input []byte) (types.TransferPayload, error) {
		return types.TransferPayload{Receiver: receiver, RawAmount: big.NewInt(int64(len(input)))}, nil
	}))

	payload, err := reg.Decode([]byte{0xde, 0xad, 0xbe, 0xef, 0x01})
	require.NoError(t, err)
	assert.Equal(t, int64(5), payload.RawAmount.Int64())
}

func TestSelectorsMatchABI(t *testing.T) {
	assert.Equal(t, ERC20.Methods["transfer"].ID, TransferSelector[:])
	assert.Equal(t, ERC20.Methods["transferFrom"].ID, TransferFromSelector[:])
}
