package zkvm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackingWriter(t *testing.T) {
	t.Run("Passthrough", func(t *testing.T) {
		var out bytes.Buffer
		report := newExecutionReport()
		w := newTrackingWriter(&out, report)
		_, err := w.Write([]byte("hello\nwor"))
		require.NoError(t, err)
		require.Equal(t, "hello\n", out.String())
		_, err = w.Write([]byte("ld\n"))
		require.NoError(t, err)
		require.Equal(t, "hello\nworld\n", out.String())
		_, err = w.Write([]byte("tail"))
		require.NoError(t, err)
		require.NoError(t, w.Flush())
		require.Equal(t, "hello\nworld\ntail", out.String())
		require.Empty(t, report.Sections)
	})

	t.Run("Sections", func(t *testing.T) {
		var out bytes.Buffer
		report := newExecutionReport()
		w := newTrackingWriter(&out, report)
		for i := 0; i < 2; i++ {
			_, err := w.Write([]byte(CycleTrackerStart + "work\n"))
			require.NoError(t, err)
			report.Syscalls[syscallRead] += 3
			_, err = w.Write([]byte(CycleTrackerEnd + "work\n"))
			require.NoError(t, err)
		}
		require.Empty(t, out.String())
		require.Equal(t, uint64(2), report.Sections["work"].Invocations)
		require.Equal(t, uint64(6), report.Sections["work"].Syscalls)
	})

	t.Run("UnmatchedEnd", func(t *testing.T) {
		report := newExecutionReport()
		w := newTrackingWriter(nil, report)
		_, err := w.Write([]byte(CycleTrackerEnd + "never-started\n"))
		require.NoError(t, err)
		require.Empty(t, report.Sections)
	})
}

func TestReportString(t *testing.T) {
	report := newExecutionReport()
	report.Syscalls[syscallRead] = 3
	report.Syscalls[syscallCommit] = 1
	report.Sections["b"] = &SectionReport{Invocations: 1}
	report.Sections["a"] = &SectionReport{Invocations: 2}
	s := report.String()
	require.Contains(t, s, "syscalls: 4")
	require.Less(t, bytes.Index([]byte(s), []byte(`"a"`)), bytes.Index([]byte(s), []byte(`"b"`)), "sections are sorted")
}
