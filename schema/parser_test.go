package schema

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saleprobe/config"
)

func TestRegistry_LoadArtifacts(t *testing.T) {
	r := NewRegistry(config.ArtifactsConfig{Dir: "testdata"})
	require.NoError(t, r.Start())
	defer func() { assert.NoError(t, r.Stop()) }()

	for _, name := range []string{"SimpleToken", "Trustee", "TokenSaleMock", "Phases"} {
		artifact, err := r.Artifact(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, artifact.ContractName)
	}

	t.Run("bytecode only for truffle artifacts", func(t *testing.T) {
		token, _ := r.Artifact("SimpleToken")
		assert.True(t, token.Deployable())
		phases, _ := r.Artifact("Phases")
		assert.False(t, phases.Deployable())
	})

	t.Run("unknown artifact", func(t *testing.T) {
		_, err := r.Artifact("Crowdsale")
		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})

	t.Run("decode with every known event", func(t *testing.T) {
		sale, _ := r.Artifact("TokenSaleMock")
		ev := sale.ABI.Events["WalletChanged"]
		data, err := ev.Inputs.Pack(bob)
		require.NoError(t, err)

		dl, err := r.Decode(types.Log{Topics: []common.Hash{ev.ID}, Data: data})
		require.NoError(t, err)
		assert.Equal(t, "WalletChanged", dl.Event)
		assert.Equal(t, bob, dl.Args["_newWallet"])
	})

	t.Run("decoder restricted to named contracts", func(t *testing.T) {
		d, err := r.Decoder("SimpleToken")
		require.NoError(t, err)
		sale, _ := r.Artifact("TokenSaleMock")
		_, ok := d.Event(sale.ABI.Events["Finalized"].ID)
		assert.False(t, ok)

		_, err = r.Decoder("SimpleToken", "Missing")
		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})
}

func TestRegistry_MissingDir(t *testing.T) {
	r := NewRegistry(config.ArtifactsConfig{Dir: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, r.Start())
}

func TestParseArtifact(t *testing.T) {
	t.Run("unlinked library", func(t *testing.T) {
		_, err := ParseArtifact([]byte(`{"contractName":"X","abi":[],"bytecode":"0x60__Lib______________________________________"}`))
		assert.ErrorIs(t, err, ErrUnlinkedBytecode)
	})
	t.Run("missing abi", func(t *testing.T) {
		_, err := ParseArtifact([]byte(`{"contractName":"X"}`))
		assert.Error(t, err)
	})
	t.Run("bytecode without prefix", func(t *testing.T) {
		a, err := ParseArtifact([]byte(`{"contractName":"X","abi":[],"bytecode":"6001"}`))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x60, 0x01}, a.Bytecode)
	})
}

func TestRegistry_WatchNewArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(config.ArtifactsConfig{Dir: dir, Watch: true})
	require.NoError(t, r.Start())

	_, err := r.Artifact("SimpleToken")
	require.ErrorIs(t, err, ErrArtifactNotFound)

	data, err := os.ReadFile("testdata/SimpleToken.json")
	require.NoError(t, err)
	// write outside the watched name first so the watcher only sees a complete file
	tmp := filepath.Join(dir, "SimpleToken.tmp")
	require.NoError(t, os.WriteFile(tmp, data, 0o600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "SimpleToken.json")))

	assert.Eventually(t, func() bool {
		_, err := r.Artifact("SimpleToken")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, r.Stop())
	select {
	case <-r.watcher.Done():
	default:
		t.Fatal("watcher loop still running after Stop")
	}
}
