package capture

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh available")
	}
	return sh
}

func TestExecRunner(t *testing.T) {
	sh := requireShell(t)

	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	t.Run("success", func(t *testing.T) {
		code, err := r.Run(context.Background(), sh, "-c", "echo started")
		require.NoError(t, err)
		require.Zero(t, code)
		require.Equal(t, "started\n", stdout.String())
	})

	t.Run("non-zero exit", func(t *testing.T) {
		code, err := r.Run(context.Background(), sh, "-c", "echo failed >&2; exit 3")
		require.NoError(t, err)
		require.Equal(t, 3, code)
		require.Equal(t, "failed\n", stderr.String())
	})

	t.Run("no stdin", func(t *testing.T) {
		code, err := r.Run(context.Background(), sh, "-c", "read line && exit 9; exit 4")
		require.NoError(t, err)
		require.Equal(t, 4, code)
	})

	t.Run("missing executable", func(t *testing.T) {
		_, err := r.Run(context.Background(), "ndis-pcap-test-does-not-exist")
		require.Error(t, err)
	})
}
