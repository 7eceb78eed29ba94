package contract_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-safe/internal/safe/contract"
	"github/chapool/go-safe/internal/test"
)

var safeAddress = common.HexToAddress("0x9fC3dc011b461664c835F2527fffb1169b3C213e")

func TestSelectors(t *testing.T) {
	assert.Equal(t, "0xffa1ad74", contract.SelectorVersion.String())
	assert.Equal(t, "0xe526ea59", contract.SelectorChannelNonces.String())
	assert.Equal(t, "0xaffed0e0", contract.SelectorNonce.String())
}

func TestReadVersion(t *testing.T) {
	reader := test.NewLegacySafe(t, "1.4.1", 0)

	version, err := contract.ReadVersion(t.Context(), reader, safeAddress)
	require.NoError(t, err)
	assert.Equal(t, "1.4.1", version)
	assert.Equal(t, []common.Address{safeAddress}, reader.Targets())
}

func TestReadChannelNoncePacksChannel(t *testing.T) {
	var seen []byte
	reader := test.NewStubReader().On(contract.SelectorChannelNonces, func(args []byte) ([]byte, error) {
		seen = args
		return test.EncodeUint256(t, big.NewInt(9)), nil
	})

	nonce, err := contract.ReadChannelNonce(t.Context(), reader, safeAddress, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(9), nonce.Int64())

	require.Len(t, seen, 32)
	assert.Equal(t, common.LeftPadBytes([]byte{5}, 32), seen)
}

func TestReadNonceEmptyOutputIsFunctionNotFound(t *testing.T) {
	reader := test.NewStubReader()

	_, err := contract.ReadNonce(t.Context(), reader, safeAddress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrFunctionNotFound))
	assert.False(t, contract.IsNetworkFailure(err))
}

func TestReadNonceMalformedOutput(t *testing.T) {
	reader := test.NewStubReader().Returns(contract.SelectorNonce, []byte{0x01, 0x02})

	_, err := contract.ReadNonce(t.Context(), reader, safeAddress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrDecodeFailed))
	assert.True(t, contract.IsNetworkFailure(err))
}

func TestReadErrorsAreWrapped(t *testing.T) {
	reader := test.NewStubReader().Fails(contract.SelectorVersion, contract.ErrConnectionFailed)

	_, err := contract.ReadVersion(t.Context(), reader, safeAddress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrConnectionFailed))
}

func TestReadHonoursCancelledContext(t *testing.T) {
	reader := test.NewLegacySafe(t, "1.3.0", 4)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := contract.ReadNonce(ctx, reader, safeAddress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrTimeout))
}
