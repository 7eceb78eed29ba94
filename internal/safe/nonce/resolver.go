package nonce

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-safe/internal/safe/contract"
	"github/chapool/go-safe/internal/safe/txhash"
)

// Resolver reads the current nonce of a Safe channel.
type Resolver interface {
	// ChannelNonce returns the next nonce for channel on safe.
	ChannelNonce(ctx context.Context, safe common.Address, channel *big.Int) (*big.Int, error)
}

type resolver struct {
	reader contract.Reader
}

// NewResolver creates a Resolver over reader.
//
//nolint:ireturn
func NewResolver(reader contract.Reader) Resolver {
	return &resolver{reader: reader}
}

// ChannelNonce reads channelNonces(channel). On a Safe without that accessor,
// channel 0 falls back to nonce() and any other channel reads as zero. Every other
// failure is returned, wrapped.
func (r *resolver) ChannelNonce(ctx context.Context, safe common.Address, channel *big.Int) (*big.Int, error) {
	ch, err := txhash.Uint256("channel", channel)
	if err != nil {
		return nil, err
	}

	log := log.With().
		Str("component", "nonce_resolver").
		Str("safe", safe.Hex()).
		Str("channel", ch.String()).
		Logger()

	nonce, err := contract.ReadChannelNonce(ctx, r.reader, safe, ch)
	if err == nil {
		log.Debug().Str("nonce", nonce.String()).Msg("Read channel nonce")
		return nonce, nil
	}
	if !errors.Is(err, contract.ErrFunctionNotFound) {
		return nil, errors.Wrap(err, "failed to read channel nonce")
	}

	if ch.Sign() != 0 {
		log.Debug().Msg("Safe has no channel support, non-default channel is unused")
		return new(big.Int), nil
	}

	log.Debug().Msg("Safe has no channel support, falling back to nonce()")

	nonce, err = contract.ReadNonce(ctx, r.reader, safe)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read legacy nonce")
	}

	return nonce, nil
}
