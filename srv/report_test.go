package srv

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d-ashe/ndis-pcap/config"
	"github.com/d-ashe/ndis-pcap/pkg/capture"
)

func testResult() capture.Result {
	start := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	return capture.Result{
		Session: capture.DefaultSession,
		Paths: capture.Paths{
			Output:       `C:\trace.pcap`,
			Intermediate: `C:\trace.etl`,
			Converter:    `C:\tools\etl2pcapng.exe`,
		},
		StartedAt:  start,
		StoppedAt:  start.Add(90 * time.Second),
		ExitCode:   0,
		Cleaned:    true,
		OutputSize: 4096,
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(testResult())

	require.Equal(t, capture.DefaultSession, r.Session)
	require.Equal(t, `C:\trace.etl`, r.IntermediatePath)
	require.Equal(t, (90 * time.Second).Nanoseconds(), r.DurationNS)
	require.True(t, r.Cleaned)

	body, err := r.encode()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Equal(t, `C:\trace.pcap`, doc["output_path"])
	require.Equal(t, float64(4096), doc["output_size"])
	require.Equal(t, "2026-10-19T09:30:00Z", doc["started_at"])
}

func TestNewReportFailedStart(t *testing.T) {
	res := capture.Result{Session: capture.DefaultSession, ExitCode: 5}
	r := NewReport(res)
	require.Zero(t, r.DurationNS)
	require.Equal(t, 5, r.ExitCode)
}

func TestNewPublishers(t *testing.T) {
	t.Run("none configured", func(t *testing.T) {
		publishers, err := NewPublishers(config.Defaults().Report)
		require.NoError(t, err)
		require.Empty(t, publishers)
	})

	t.Run("elasticsearch", func(t *testing.T) {
		cfg := config.Defaults().Report
		cfg.Elasticsearch.Addresses = []string{"http://127.0.0.1:9200"}

		publishers, err := NewPublishers(cfg)
		require.NoError(t, err)
		require.Len(t, publishers, 1)
		require.Equal(t, "elasticsearch index ndis-pcap", publishers[0].String())
	})

	t.Run("invalid sink", func(t *testing.T) {
		cfg := config.Defaults().Report
		cfg.Elasticsearch.Addresses = []string{"http://127.0.0.1:9200"}
		cfg.Elasticsearch.Index = ""

		publishers, err := NewPublishers(cfg)
		require.Error(t, err)
		require.Empty(t, publishers)
	})
}
