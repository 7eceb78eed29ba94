package safe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-safe/internal/safe/capability"
	"github/chapool/go-safe/internal/safe/contract"
	"github/chapool/go-safe/internal/safe/nonce"
	"github/chapool/go-safe/internal/safe/txhash"
)

type service struct {
	reader   contract.Reader
	chain    contract.ChainIDReader
	resolver nonce.Resolver
}

// NewService creates a Service reading contract state through reader and the
// chain identifier through chain.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(reader contract.Reader, chain contract.ChainIDReader) Service {
	return &service{
		reader:   reader,
		chain:    chain,
		resolver: nonce.NewResolver(reader),
	}
}

// Scheme is recomputed on every call; a Safe can be upgraded between calls.
func (s *service) Scheme(ctx context.Context, safe common.Address) (*Capability, error) {
	multichannel, version, err := capability.Detect(ctx, s.reader, safe)
	if err != nil {
		return nil, errors.Wrap(err, "failed to detect safe capability")
	}

	c := &Capability{Version: version, Scheme: txhash.SchemeLegacy}
	if multichannel {
		c.Scheme = txhash.SchemeMultichannel
	}

	return c, nil
}

func (s *service) TransactionHash(ctx context.Context, safe common.Address, params txhash.TransactionParameters) (*Result, error) {
	log := log.With().Str("component", "safe_tx_hash").Str("safe", safe.Hex()).Logger()

	if err := params.Validate(); err != nil {
		return nil, err
	}

	c, err := s.Scheme(ctx, safe)
	if err != nil {
		return nil, err
	}
	if !c.Multichannel() && !params.ChannelIsDefault() {
		return nil, errors.Wrapf(capability.RequireMultichannel(c.Version), "channel %s", params.Channel)
	}

	chainID, err := s.chain.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	separator, err := txhash.DomainSeparator(chainID, safe)
	if err != nil {
		return nil, err
	}

	hash, err := txhash.Hash(c.Scheme, chainID, safe, params)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("scheme", c.Scheme.String()).
		Str("chain_id", chainID.String()).
		Str("safe_tx_hash", hash.Hex()).
		Msg("Computed safe transaction hash")

	return &Result{
		Capability:      *c,
		ChainID:         chainID,
		DomainSeparator: separator,
		SafeTxHash:      hash,
	}, nil
}

func (s *service) ChannelNonce(ctx context.Context, safe common.Address, channel *big.Int) (*big.Int, error) {
	return s.resolver.ChannelNonce(ctx, safe, channel)
}

func (s *service) PopulateNonce(ctx context.Context, safe common.Address, params txhash.TransactionParameters) (txhash.TransactionParameters, error) {
	n, err := s.resolver.ChannelNonce(ctx, safe, params.Channel)
	if err != nil {
		return params, err
	}

	populated := params.Copy()
	populated.Nonce = n

	return populated, nil
}
