package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// isolate keeps the user's real config file and environment out of the run.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "SERIALMON_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	return home
}

func TestRun_NoDevices(t *testing.T) {
	isolate(t)
	var stdout, stderr syncBuffer

	code := run(context.Background(), []string{"--color", "never"}, &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Equal(t, "Error: No devices specified\n", stderr.String())
	require.Empty(t, stdout.String())
}

func TestRun_MissingDevice(t *testing.T) {
	isolate(t)
	var stdout, stderr syncBuffer

	code := run(context.Background(), []string{"--color=never", "/dev/serialmon-missing-0,/dev/null"}, &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Equal(t, "Error: Device /dev/serialmon-missing-0 does not exist\n", stderr.String())
	require.Empty(t, stdout.String())
}

func TestRun_InvalidBaud(t *testing.T) {
	isolate(t)
	var stdout, stderr syncBuffer

	code := run(context.Background(), []string{"-b", "12345", "/dev/null"}, &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unsupported baud rate 12345")
	require.Empty(t, stdout.String())
}

func TestRun_InvalidConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("baud: [oops\n"), 0o600))
	var stdout, stderr syncBuffer

	code := run(context.Background(), []string{"--config", path, "/dev/null"}, &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "read config "+path)
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	var stdout, stderr syncBuffer

	code := run(context.Background(), []string{"--version"}, &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "dev (commit unknown, built unknown)")
}

func TestRun_DevicesFromConfigFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "serialmon")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"),
		[]byte("devices:\n  - /dev/serialmon-missing-1\n"), 0o600))
	var stdout, stderr syncBuffer

	code := run(context.Background(), []string{"--color", "never"}, &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Equal(t, "Error: Device /dev/serialmon-missing-1 does not exist\n", stderr.String())
}

func TestRun_MonitorsUntilCancelled(t *testing.T) {
	isolate(t)
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	var stdout, stderr syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	codeCh := make(chan int, 1)
	go func() {
		codeCh <- run(ctx, []string{
			"--color", "never",
			"--baud", "115200",
			"--read-timeout", "50ms",
			"--shutdown-timeout", "1s",
			slave.Name(),
		}, &stdout, &stderr)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "✓ Connected to "+slave.Name()+" at 115200 baud")
	}, 2*time.Second, 10*time.Millisecond)

	_, err = master.Write([]byte("HELLO from node 1\r\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), slave.Name()+": HELLO from node 1")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case code := <-codeCh:
		require.Equal(t, 0, code)
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	out := stdout.String()
	require.True(t, strings.HasPrefix(out, "Multi-Serial Monitor Starting...\nMonitoring 1 device(s) at 115200 baud\n"))
	require.True(t, strings.HasSuffix(out, "\nStopping monitor...\nMonitor stopped.\n"))
	require.NotContains(t, out, "\x1b[")
	require.Empty(t, stderr.String())
}

func TestRun_PrintConfig(t *testing.T) {
	isolate(t)
	t.Setenv("SERIALMON_DEVICE_WIDTH", "20")
	var stdout, stderr syncBuffer

	code := run(context.Background(), []string{
		"--print-config", "-b", "115200", "/dev/ttyAMA2,/dev/ttyAMA3", "/dev/ttyAMA2",
	}, &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Empty(t, stderr.String())
	require.Equal(t, `devices:
    - /dev/ttyAMA2
    - /dev/ttyAMA3
baud: 115200
read-timeout: 1s
shutdown-timeout: 3s
device-width: 20
color: auto
log-level: warn
`, stdout.String())
}
