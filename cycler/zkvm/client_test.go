package zkvm_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum-optimism/optimism/op-service/testlog"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/cycler/cycler/zkvm"
	"github.com/ethereum-optimism/cycler/cycler/zkvm/attest"
)

// echoProgram commits every stdin frame, and fails when asked to verify a
// proof it cannot find.
type echoProgram struct {
	name   string
	verify *zkvm.Fingerprint
}

func (p *echoProgram) Name() string  { return p.name }
func (p *echoProgram) Image() []byte { return []byte("echo:" + p.name) }

func (p *echoProgram) Run(env zkvm.Env) error {
	for {
		frame, err := env.Read()
		if errors.Is(err, zkvm.ErrStdinExhausted) {
			return nil
		} else if err != nil {
			return err
		}
		if p.verify != nil && !env.VerifyProof(*p.verify, zkvm.PublicValuesDigest(frame)) {
			return errors.New("predecessor rejected")
		}
		env.Commit(frame)
	}
}

type countingBackend struct {
	zkvm.Backend
	setups atomic.Int32
}

func (b *countingBackend) Setup(program zkvm.Program) (zkvm.ProvingKey, zkvm.VerifyingKey, error) {
	b.setups.Add(1)
	return b.Backend.Setup(program)
}

type failingBackend struct {
	zkvm.Backend
}

func (b *failingBackend) Setup(program zkvm.Program) (zkvm.ProvingKey, zkvm.VerifyingKey, error) {
	return nil, nil, errors.New("no keys today")
}

func TestSetup(t *testing.T) {
	t.Run("OncePerProgram", func(t *testing.T) {
		backend := &countingBackend{Backend: attest.New()}
		c := zkvm.NewClient(testlog.Logger(t, log.LevelInfo), backend)
		program := &echoProgram{name: "a"}

		var wg sync.WaitGroup
		results := make([]*zkvm.Keys, 16)
		errs := make([]error, len(results))
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = c.Setup(program)
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}
		require.Equal(t, int32(1), backend.setups.Load())
		for _, keys := range results {
			require.Same(t, results[0], keys)
		}

		other, err := c.Setup(&echoProgram{name: "b"})
		require.NoError(t, err)
		require.Equal(t, int32(2), backend.setups.Load())
		require.NotEqual(t, results[0].Fingerprint, other.Fingerprint)
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, err := zkvm.NewClient(testlog.Logger(t, log.LevelInfo), attest.New()).Setup(&echoProgram{name: "a"})
		require.NoError(t, err)
		b, err := zkvm.NewClient(testlog.Logger(t, log.LevelInfo), attest.New()).Setup(&echoProgram{name: "a"})
		require.NoError(t, err)
		require.Equal(t, a.Fingerprint, b.Fingerprint)
		require.Equal(t, zkvm.FingerprintOf(a.VerifyingKey), a.Fingerprint)
	})

	t.Run("Failure", func(t *testing.T) {
		c := zkvm.NewClient(testlog.Logger(t, log.LevelInfo), &failingBackend{Backend: attest.New()})
		_, err := c.Setup(&echoProgram{name: "a"})
		require.ErrorContains(t, err, "no keys today")
	})
}

func TestProveVerify(t *testing.T) {
	c := zkvm.NewClient(testlog.Logger(t, log.LevelInfo), attest.New())
	program := &echoProgram{name: "a"}
	keys, err := c.Setup(program)
	require.NoError(t, err)

	stdin := zkvm.NewStdin()
	stdin.Write([]byte{1, 2})
	stdin.Write([]byte{3})
	a, err := c.Prove(context.Background(), program, keys, stdin, zkvm.KindCompressed)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, []byte(a.PublicValues))
	require.Equal(t, keys.Fingerprint, a.Fingerprint)
	require.NoError(t, c.Verify(a, keys.VerifyingKey))

	t.Run("CorruptedProof", func(t *testing.T) {
		bad := a.Clone()
		bad.Proof[0] ^= 0xff
		require.ErrorIs(t, c.Verify(bad, keys.VerifyingKey), zkvm.ErrInvalidProof)
	})

	t.Run("TamperedPublicValues", func(t *testing.T) {
		bad := a.Clone()
		bad.PublicValues[0] = 9
		require.ErrorIs(t, c.Verify(bad, keys.VerifyingKey), zkvm.ErrInvalidProof)
	})

	t.Run("RelabeledKind", func(t *testing.T) {
		bad := a.Clone()
		bad.Kind = zkvm.KindCore
		require.ErrorIs(t, c.Verify(bad, keys.VerifyingKey), zkvm.ErrInvalidProof)
	})

	t.Run("OtherKey", func(t *testing.T) {
		other, err := c.Setup(&echoProgram{name: "b"})
		require.NoError(t, err)
		require.ErrorIs(t, c.Verify(a, other.VerifyingKey), zkvm.ErrInvalidProof)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Prove(ctx, program, keys, zkvm.NewStdin(), zkvm.KindCompressed)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestEmbeddedVerification(t *testing.T) {
	c := zkvm.NewClient(testlog.Logger(t, log.LevelInfo), attest.New())
	producer := &echoProgram{name: "producer"}
	pkeys, err := c.Setup(producer)
	require.NoError(t, err)

	stdin := zkvm.NewStdin()
	stdin.Write([]byte{7, 7})
	pred, err := c.Prove(context.Background(), producer, pkeys, stdin, zkvm.KindCompressed)
	require.NoError(t, err)

	consumer := &echoProgram{name: "consumer", verify: &pkeys.Fingerprint}
	ckeys, err := c.Setup(consumer)
	require.NoError(t, err)

	t.Run("Accepted", func(t *testing.T) {
		stdin := zkvm.NewStdin()
		stdin.Write(pred.PublicValues)
		stdin.WriteProof(pred, pkeys.VerifyingKey)
		_, report, err := c.Execute(consumer, stdin)
		require.NoError(t, err)
		require.Equal(t, uint64(1), report.EmbeddedVerifications)
		_, err = c.Prove(context.Background(), consumer, ckeys, stdin, zkvm.KindCompressed)
		require.NoError(t, err)
	})

	t.Run("DigestMismatch", func(t *testing.T) {
		stdin := zkvm.NewStdin()
		stdin.Write([]byte{7, 8})
		stdin.WriteProof(pred, pkeys.VerifyingKey)
		_, err := c.Prove(context.Background(), consumer, ckeys, stdin, zkvm.KindCompressed)
		require.ErrorIs(t, err, zkvm.ErrGuestAborted)
	})
}

func TestAttachedProofOracle(t *testing.T) {
	c := zkvm.NewClient(testlog.Logger(t, log.LevelInfo), attest.New())
	program := &echoProgram{name: "a"}
	keys, err := c.Setup(program)
	require.NoError(t, err)
	stdin := zkvm.NewStdin()
	stdin.Write([]byte{1})
	a, err := c.Prove(context.Background(), program, keys, stdin, zkvm.KindCompressed)
	require.NoError(t, err)

	o := zkvm.NewAttachedProofOracle(testlog.Logger(t, log.LevelInfo), attest.New(),
		[]zkvm.AttachedProof{{Artifact: a, VerifyingKey: keys.VerifyingKey}})
	digest := zkvm.PublicValuesDigest([]byte{1})
	require.True(t, o.Get(keys.Fingerprint, digest))
	require.True(t, o.Get(keys.Fingerprint, digest))
	require.False(t, o.Get(keys.Fingerprint, zkvm.PublicValuesDigest([]byte{2})))
	require.False(t, o.Get(zkvm.Fingerprint{1}, digest))

	access := o.AccessList()
	require.Len(t, access, 4)
	require.True(t, access[0].Verified)
	require.False(t, access[3].Verified)
}
