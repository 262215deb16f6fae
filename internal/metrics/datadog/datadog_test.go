package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccerddap/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	_, err := NewBackend(Config{})
	assert.Error(t, err)
}

func TestLabelsToTags(t *testing.T) {
	assert.Nil(t, labelsToTags(nil))
	assert.Equal(t,
		[]string{"job:nightly", "outcome:passed", "step:check"},
		labelsToTags(metrics.Labels{"step": "check", "outcome": "passed", "job": "nightly"}),
	)
}

// TestBackend_SendsDogStatsD reads the datagrams the client sends to a local
// UDP listener standing in for the agent.
func TestBackend_SendsDogStatsD(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	b, err := NewBackend(Config{
		Addr:       conn.LocalAddr().String(),
		Namespace:  "ccerddap.",
		GlobalTags: []string{"env:test"},
	})
	require.NoError(t, err)
	defer b.Close()

	b.IncCounter(metrics.DatasetsTotal, 1, metrics.Labels{"outcome": "passed"})
	b.ObserveHistogram(metrics.StepDuration, 0.5, metrics.Labels{"step": "fetch"})
	require.NoError(t, b.Flush())

	var got strings.Builder
	buf := make([]byte, 8192)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if got.Len() > 0 {
				break
			}
			continue
		}
		got.Write(buf[:n])
		if strings.Contains(got.String(), metrics.DatasetsTotal) && strings.Contains(got.String(), metrics.StepDuration) {
			break
		}
	}

	out := got.String()
	assert.Contains(t, out, "ccerddap."+metrics.DatasetsTotal+":1|c")
	assert.Contains(t, out, "outcome:passed")
	assert.Contains(t, out, "env:test")
	assert.Contains(t, out, "ccerddap."+metrics.StepDuration+":0.5|d")
}
