package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"cycler"}, args...))
	return out.String(), err
}

func TestExecute(t *testing.T) {
	out, err := run(t, "--execute")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Program executed successfully.", lines[0])
	require.Equal(t, "output: [1]", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "report: ExecutionReport{"))
}

func TestProveChain(t *testing.T) {
	t.Run("Cycle", func(t *testing.T) {
		out, err := run(t)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		for i := 0; i < 4; i++ {
			require.True(t, strings.HasPrefix(lines[i], "step "), lines[i])
		}
		require.Contains(t, lines[3], "public-values: [1 2 3 1]")
		require.Equal(t, "There is indeed a cycle.", lines[4])
	})

	t.Run("NoCycle", func(t *testing.T) {
		out, err := run(t, "--ids", "1,2,3")
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(out, "Proof is valid but no cycle.\n"))
	})

	t.Run("InvalidIDs", func(t *testing.T) {
		_, err := run(t, "--ids", "1,300")
		require.ErrorContains(t, err, "invalid identity")
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		_, err := run(t, "--backend", "plonk")
		require.ErrorContains(t, err, "unknown backend")
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		_, err := run(t, "--log.level", "loud")
		require.ErrorContains(t, err, "invalid log level")
	})
}

func TestVerifyArtifacts(t *testing.T) {
	dir := t.TempDir()
	proofFmt := filepath.Join(dir, "proof-%d.json")
	vkPath := filepath.Join(dir, "vk.json")
	_, err := run(t, "--ids", "4,5,4", "--proof-fmt", proofFmt, "--vk-out", vkPath)
	require.NoError(t, err)

	final := filepath.Join(dir, "proof-3.json")
	a, err := zkvm.LoadArtifact(final)
	require.NoError(t, err)
	require.Equal(t, zkvm.KindCompressed, a.Kind)
	require.Equal(t, []byte{4, 5, 4}, []byte(a.PublicValues))

	t.Run("WithKey", func(t *testing.T) {
		out, err := run(t, "verify", "--input", final, "--vk", vkPath)
		require.NoError(t, err)
		require.Equal(t, "There is indeed a cycle.\n", out)
	})

	t.Run("DerivedKey", func(t *testing.T) {
		out, err := run(t, "verify", "--input", filepath.Join(dir, "proof-2.json"))
		require.NoError(t, err)
		require.Equal(t, "Proof is valid but no cycle.\n", out)
	})

	t.Run("Tampered", func(t *testing.T) {
		bad := a.Clone()
		bad.PublicValues = []byte{4, 5, 6}
		path := filepath.Join(dir, "tampered.json")
		require.NoError(t, zkvm.WriteArtifact(path, bad))
		out, err := run(t, "verify", "--input", path, "--vk", vkPath)
		require.NoError(t, err)
		require.Equal(t, "Invalid proof.\n", out)
	})

	t.Run("WrongBackendKey", func(t *testing.T) {
		_, err := run(t, "verify", "--input", final, "--vk", vkPath, "--backend", "groth16")
		require.ErrorContains(t, err, "backend")
	})

	t.Run("ForgedFingerprint", func(t *testing.T) {
		dat, err := os.ReadFile(vkPath)
		require.NoError(t, err)
		var kf KeyFile
		require.NoError(t, json.Unmarshal(dat, &kf))
		kf.Fingerprint[0] ^= 1
		dat, err = json.Marshal(&kf)
		require.NoError(t, err)
		path := filepath.Join(dir, "forged.json")
		require.NoError(t, os.WriteFile(path, dat, 0o644))
		_, err = run(t, "verify", "--input", final, "--vk", path)
		require.ErrorContains(t, err, "fingerprint")
	})

	t.Run("MissingInput", func(t *testing.T) {
		_, err := run(t, "verify", "--input", filepath.Join(dir, "nope.json"))
		require.Error(t, err)
	})
}

func TestChains(t *testing.T) {
	out, err := run(t, "chains", "--plan", "1,2,3", "--plan", "1,2,3,1", "--workers", "2")
	require.NoError(t, err)
	require.Equal(t, "1,2,3: Proof is valid but no cycle.\n1,2,3,1: There is indeed a cycle.\n", out)

	_, err = run(t, "chains", "--plan", "1,x")
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"trace", "debug", "info", "warn", "error", "INFO"} {
		_, err := parseLevel(s)
		require.NoError(t, err, s)
	}
	_, err := parseLevel("verbose")
	require.Error(t, err)
}

func TestLoggingWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &LoggingWriter{Name: "program std-out", Log: Logger(&buf, 0)}
	n, err := lw.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Contains(t, buf.String(), "text=hello")

	buf.Reset()
	_, err = lw.Write([]byte{0x00, 0xff})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "data=0x00ff")
}
