package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/ioutil"
	"github.com/ethereum-optimism/optimism/op-service/jsonutil"

	"github.com/ethereum-optimism/cycler/cycler/zkvm"
	"github.com/ethereum-optimism/cycler/cycler/zkvm/attest"
	"github.com/ethereum-optimism/cycler/cycler/zkvm/groth16"
)

func newBackend(name string) (zkvm.Backend, error) {
	switch name {
	case attest.Name:
		return attest.New(), nil
	case groth16.Name:
		return groth16.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// newClient builds the client shared by all commands, logging guest output.
func newClient(ctx *cli.Context, l log.Logger) (*zkvm.Client, error) {
	backend, err := newBackend(ctx.String(BackendFlag.Name))
	if err != nil {
		return nil, err
	}
	guestOut := &LoggingWriter{Name: "program std-out", Log: l}
	return zkvm.NewClient(l, backend, zkvm.WithGuestOutput(guestOut)), nil
}

func newLogger(ctx *cli.Context) (log.Logger, error) {
	lvl, err := parseLevel(ctx.String(LogLevelFlag.Name))
	if err != nil {
		return nil, err
	}
	return Logger(ctx.App.ErrWriter, lvl), nil
}

// KeyFile is the JSON form of a verifying key.
type KeyFile struct {
	Backend     string           `json:"backend"`
	Program     string           `json:"program"`
	Fingerprint zkvm.Fingerprint `json:"fingerprint"`
	Key         hexutil.Bytes    `json:"key"`
}

func writeKeyFile(path string, backend string, keys *zkvm.Keys) error {
	kf := &KeyFile{
		Backend:     backend,
		Program:     keys.Program,
		Fingerprint: keys.Fingerprint,
		Key:         keys.VerifyingKey.Bytes(),
	}
	if err := jsonutil.WriteJSON(kf, ioutil.ToStdOutOrFileOrNoop(path, zkvm.OutFilePerm)); err != nil {
		return fmt.Errorf("failed to write verifying key: %w", err)
	}
	return nil
}

func loadKeyFile(path string, backend zkvm.Backend) (zkvm.VerifyingKey, error) {
	kf, err := jsonutil.LoadJSON[KeyFile](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load verifying key %q: %w", path, err)
	}
	if kf.Backend != backend.Name() {
		return nil, fmt.Errorf("verifying key is for backend %q, not %q", kf.Backend, backend.Name())
	}
	vk, err := backend.DecodeVerifyingKey(kf.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid verifying key %q: %w", path, err)
	}
	if fp := zkvm.FingerprintOf(vk); fp != kf.Fingerprint {
		return nil, fmt.Errorf("verifying key fingerprint is %s, file claims %s", fp, kf.Fingerprint)
	}
	return vk, nil
}
