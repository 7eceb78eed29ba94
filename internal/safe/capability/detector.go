package capability

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-safe/internal/safe/contract"
)

const multichannelMarker = "multichannel"

// ErrUnsupportedCapability is returned to callers that require multichannel nonces
// on a Safe that does not advertise them.
var ErrUnsupportedCapability = errors.New("safe does not support multichannel nonces")

// SupportsMultichannel reports whether a Safe version string advertises multichannel
// nonces. Both "1.5.0-multichannel.1" and "1.5.0+multichannel1" styles match.
func SupportsMultichannel(version *string) bool {
	if version == nil || *version == "" {
		return false
	}
	return strings.Contains(strings.ToLower(*version), multichannelMarker)
}

// RequireMultichannel returns ErrUnsupportedCapability unless version advertises
// multichannel support.
func RequireMultichannel(version *string) error {
	if SupportsMultichannel(version) {
		return nil
	}
	if version == nil {
		return errors.Wrap(ErrUnsupportedCapability, "version unavailable")
	}
	return errors.Wrapf(ErrUnsupportedCapability, "version %q", *version)
}

// FetchVersion reads VERSION() from the Safe. A Safe that does not answer with a
// decodable string yields a nil version; timeouts and connection failures are returned.
func FetchVersion(ctx context.Context, reader contract.Reader, safe common.Address) (*string, error) {
	log := log.With().Str("component", "capability").Str("safe", safe.Hex()).Logger()

	version, err := contract.ReadVersion(ctx, reader, safe)
	if err != nil {
		if errors.Is(err, contract.ErrTimeout) || errors.Is(err, contract.ErrConnectionFailed) {
			return nil, err
		}

		log.Debug().Err(err).Msg("Safe did not report a version")
		return nil, nil //nolint:nilnil // absent version is a valid answer
	}

	return &version, nil
}

// Detect fetches the Safe version and reports multichannel support along with the
// version that was read.
func Detect(ctx context.Context, reader contract.Reader, safe common.Address) (bool, *string, error) {
	version, err := FetchVersion(ctx, reader, safe)
	if err != nil {
		return false, nil, err
	}

	return SupportsMultichannel(version), version, nil
}
