package probe_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-safe/cmd/probe"
	"github/chapool/go-safe/internal/config"
	"github/chapool/go-safe/internal/test"
)

func execute(t *testing.T, stub *test.StubReader, args ...string) (string, error) {
	t.Helper()

	node := test.NewTestNode(t, stub)
	config.SetDefaults(viper.GetViper())
	viper.Set(config.KeyRPCURLs, node.URL)
	t.Cleanup(viper.Reset)

	cmd := probe.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestProbeVersion(t *testing.T) {
	stub := test.NewMultichannelSafe(t, "1.5.0-multichannel.1", nil)

	out, err := execute(t, stub, "version", "--safe", "0x9fC3dc011b461664c835F2527fffb1169b3C213e")
	require.NoError(t, err)
	assert.Contains(t, out, "version:      1.5.0-multichannel.1")
	assert.Contains(t, out, "multichannel: true")
}

func TestProbeVersionMissing(t *testing.T) {
	out, err := execute(t, test.NewStubReader(), "version", "--safe", "0x9fC3dc011b461664c835F2527fffb1169b3C213e")
	require.NoError(t, err)
	assert.Contains(t, out, "version:      -")
	assert.Contains(t, out, "scheme:       legacy")
}

func TestProbeChain(t *testing.T) {
	stub := test.NewStubReader().WithChainID(big.NewInt(11155111), nil)

	out, err := execute(t, stub, "chain")
	require.NoError(t, err)
	assert.Equal(t, "11155111\n", out)
}
