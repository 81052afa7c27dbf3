// Package calldata decodes transfer calls out of transaction input data.
package calldata

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"ethverify/internal/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrDecode matches every DecodeError.
var ErrDecode = errors.New("calldata does not match a supported transfer signature")

// DecodeError reports input data that claims to be a call but cannot be
// read as a supported transfer.
type DecodeError struct {
	Selector string
	Reason   string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode calldata %s: %s: %v", e.Selector, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode calldata %s: %s", e.Selector, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Selector is the 4-byte function identifier that prefixes calldata.
type Selector [4]byte

func (s Selector) String() string {
	return hexutil.Encode(s[:])
}

var (
	// TransferSelector is transfer(address,uint256).
	TransferSelector = Selector{0xa9, 0x05, 0x9c, 0xbb}
	// TransferFromSelector is transferFrom(address,address,uint256).
	TransferFromSelector = Selector{0x23, 0xb8, 0x72, 0xdd}
)

// Decoder turns full calldata, selector included, into a transfer payload.
type Decoder interface {
	Decode(input []byte) (types.TransferPayload, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(input []byte) (types.TransferPayload, error)

func (f DecoderFunc) Decode(input []byte) (types.TransferPayload, error) {
	return f(input)
}

// Registry maps selectors to decoders. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[Selector]Decoder
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[Selector]Decoder)}
}

// DefaultRegistry only understands transfer(address,uint256).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TransferSelector, TransferDecoder())
	return r
}

func (r *Registry) Register(selector Selector, decoder Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[selector] = decoder
}

// Selectors lists registered selectors in byte order.
func (r *Registry) Selectors() []Selector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Selector, 0, len(r.decoders))
	for s := range r.decoders {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Decode dispatches on the first four bytes of input.
func (r *Registry) Decode(input []byte) (types.TransferPayload, error) {
	if len(input) < 4 {
		return types.TransferPayload{}, &DecodeError{
			Selector: hexutil.Encode(input),
			Reason:   "input shorter than a selector",
		}
	}
	var selector Selector
	copy(selector[:], input[:4])

	r.mu.RLock()
	decoder, ok := r.decoders[selector]
	r.mu.RUnlock()
	if !ok {
		return types.TransferPayload{}, &DecodeError{
			Selector: selector.String(),
			Reason:   "no decoder registered",
		}
	}
	return decoder.Decode(input)
}

// TransferDecoder decodes transfer(address to, uint256 value).
func TransferDecoder() Decoder {
	return methodDecoder("transfer", 0, 1)
}

// TransferFromDecoder decodes transferFrom(address from, address to, uint256 value).
// The receiver is the "to" argument.
func TransferFromDecoder() Decoder {
	return methodDecoder("transferFrom", 1, 2)
}

func methodDecoder(name string, receiverArg, amountArg int) Decoder {
	method, ok := ERC20.Methods[name]
	if !ok {
		panic("calldata: unknown ERC20 method " + name)
	}
	return DecoderFunc(func(input []byte) (types.TransferPayload, error) {
		selector := hexutil.Encode(method.ID)
		if len(input) < 4 || !bytes.Equal(input[:4], method.ID) {
			return types.TransferPayload{}, &DecodeError{Selector: selector, Reason: "selector mismatch"}
		}

		args, err := method.Inputs.Unpack(input[4:])
		if err != nil {
			return types.TransferPayload{}, &DecodeError{Selector: selector, Reason: "unpack " + method.Sig, Err: err}
		}
		if len(args) <= receiverArg || len(args) <= amountArg {
			return types.TransferPayload{}, &DecodeError{Selector: selector, Reason: "missing arguments"}
		}

		receiver, ok := args[receiverArg].(common.Address)
		if !ok {
			return types.TransferPayload{}, &DecodeError{Selector: selector, Reason: "receiver is not an address"}
		}
		amount, ok := args[amountArg].(*big.Int)
		if !ok {
			return types.TransferPayload{}, &DecodeError{Selector: selector, Reason: "amount is not uint256"}
		}
		return types.TransferPayload{Receiver: receiver, RawAmount: amount}, nil
	})
}

// EncodeTransfer builds transfer(address,uint256) calldata.
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return ERC20.Pack("transfer", to, amount)
}
