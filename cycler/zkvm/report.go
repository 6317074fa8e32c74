package zkvm

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Cycle-tracker markers: a guest brackets a named section of its execution
// with these lines on stdout.
const (
	CycleTrackerStart = "cycle-tracker-report-start: "
	CycleTrackerEnd   = "cycle-tracker-report-end: "
)

type SectionReport struct {
	Invocations uint64        `json:"invocations"`
	Syscalls    uint64        `json:"syscalls"`
	Duration    time.Duration `json:"duration"`
}

// ExecutionReport summarizes the resources used by one guest run.
type ExecutionReport struct {
	Syscalls              map[string]uint64         `json:"syscalls"`
	Sections              map[string]*SectionReport `json:"sections"`
	InputBytes            uint64                    `json:"inputBytes"`
	PublicValuesBytes     uint64                    `json:"publicValuesBytes"`
	EmbeddedVerifications uint64                    `json:"embeddedVerifications"`
	Duration              time.Duration             `json:"duration"`
}

func newExecutionReport() *ExecutionReport {
	return &ExecutionReport{
		Syscalls: make(map[string]uint64),
		Sections: make(map[string]*SectionReport),
	}
}

func (r *ExecutionReport) TotalSyscalls() (n uint64) {
	for _, v := range r.Syscalls {
		n += v
	}
	return
}

func (r *ExecutionReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ExecutionReport{syscalls: %d, input: %d bytes, public values: %d bytes, embedded verifications: %d, duration: %s",
		r.TotalSyscalls(), r.InputBytes, r.PublicValuesBytes, r.EmbeddedVerifications, r.Duration)
	names := make([]string, 0, len(r.Sections))
	for name := range r.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.Sections[name]
		fmt.Fprintf(&sb, ", %q: {invocations: %d, syscalls: %d, duration: %s}", name, s.Invocations, s.Syscalls, s.Duration)
	}
	sb.WriteString("}")
	return sb.String()
}

type openSection struct {
	start    time.Time
	syscalls uint64
}

// trackingWriter consumes cycle-tracker markers from guest output and forwards
// every other line to out.
type trackingWriter struct {
	out    io.Writer
	report *ExecutionReport
	open   map[string]openSection
	buf    bytes.Buffer
}

func newTrackingWriter(out io.Writer, report *ExecutionReport) *trackingWriter {
	if out == nil {
		out = io.Discard
	}
	return &trackingWriter{out: out, report: report, open: make(map[string]openSection)}
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		if err := w.line(line); err != nil {
			return len(b), err
		}
	}
	return len(b), nil
}

func (w *trackingWriter) line(line string) error {
	text := strings.TrimRight(line, "\n")
	switch {
	case strings.HasPrefix(text, CycleTrackerStart):
		name := strings.TrimPrefix(text, CycleTrackerStart)
		w.open[name] = openSection{start: time.Now(), syscalls: w.report.TotalSyscalls()}
		return nil
	case strings.HasPrefix(text, CycleTrackerEnd):
		name := strings.TrimPrefix(text, CycleTrackerEnd)
		o, ok := w.open[name]
		if !ok {
			return nil
		}
		delete(w.open, name)
		s, ok := w.report.Sections[name]
		if !ok {
			s = &SectionReport{}
			w.report.Sections[name] = s
		}
		s.Invocations++
		s.Duration += time.Since(o.start)
		s.Syscalls += w.report.TotalSyscalls() - o.syscalls
		return nil
	}
	_, err := io.WriteString(w.out, line)
	return err
}

// Flush forwards a trailing partial line.
func (w *trackingWriter) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	rest := w.buf.String()
	w.buf.Reset()
	return w.line(rest)
}
