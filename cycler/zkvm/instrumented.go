package zkvm

import (
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	syscallRead   = "read"
	syscallCommit = "commit"
	syscallVerify = "verify"
)

// InstrumentedEnv runs a guest against a Stdin, collecting its public values
// and an execution report.
type InstrumentedEnv struct {
	stdin  *Stdin
	cursor int

	public []byte

	oracle ProofOracle
	stdout *trackingWriter

	report *ExecutionReport
}

var _ Env = (*InstrumentedEnv)(nil)

func NewInstrumentedEnv(stdin *Stdin, oracle ProofOracle, stdout io.Writer) *InstrumentedEnv {
	report := newExecutionReport()
	report.InputBytes = stdin.Size()
	return &InstrumentedEnv{
		stdin:  stdin,
		oracle: oracle,
		stdout: newTrackingWriter(stdout, report),
		report: report,
	}
}

func (m *InstrumentedEnv) Read() ([]byte, error) {
	m.report.Syscalls[syscallRead]++
	frame, err := m.stdin.frame(m.cursor)
	if err != nil {
		return nil, err
	}
	m.cursor++
	out := make([]byte, len(frame))
	copy(out, frame)
	return out, nil
}

func (m *InstrumentedEnv) Commit(b []byte) {
	m.report.Syscalls[syscallCommit]++
	m.public = append(m.public, b...)
}

func (m *InstrumentedEnv) VerifyProof(fp Fingerprint, digest common.Hash) bool {
	m.report.Syscalls[syscallVerify]++
	m.report.EmbeddedVerifications++
	if m.oracle == nil {
		return false
	}
	return m.oracle.Get(fp, digest)
}

func (m *InstrumentedEnv) Stdout() io.Writer {
	return m.stdout
}

// Run executes the program to completion.
func (m *InstrumentedEnv) Run(program Program) error {
	start := time.Now()
	err := program.Run(m)
	if ferr := m.stdout.Flush(); err == nil {
		err = ferr
	}
	m.report.Duration = time.Since(start)
	m.report.PublicValuesBytes = uint64(len(m.public))
	return err
}

// PublicValues returns a copy of everything committed so far.
func (m *InstrumentedEnv) PublicValues() []byte {
	out := make([]byte, len(m.public))
	copy(out, m.public)
	return out
}

func (m *InstrumentedEnv) Report() *ExecutionReport {
	return m.report
}
