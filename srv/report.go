// Package srv publishes a summary of each capture run to external sinks.
package srv

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/d-ashe/ndis-pcap/config"
	"github.com/d-ashe/ndis-pcap/pkg/capture"
)

// Report is the document published after a run. It only carries file
// metadata; the capture itself is never read.
type Report struct {
	Session          string    `json:"session"`
	Host             string    `json:"host,omitempty"`
	OutputPath       string    `json:"output_path"`
	IntermediatePath string    `json:"intermediate_path"`
	ConverterPath    string    `json:"converter_path"`
	StartedAt        time.Time `json:"started_at"`
	StoppedAt        time.Time `json:"stopped_at"`
	DurationNS       int64     `json:"duration_ns,omitempty"`
	ConverterCode    int       `json:"converter_code"`
	ExitCode         int       `json:"exit_code"`
	Cleaned          bool      `json:"cleaned"`
	OutputSize       int64     `json:"output_size"`
}

// NewReport summarizes res.
func NewReport(res capture.Result) Report {
	r := Report{
		Session:          res.Session,
		OutputPath:       res.Paths.Output,
		IntermediatePath: res.Paths.Intermediate,
		ConverterPath:    res.Paths.Converter,
		StartedAt:        res.StartedAt,
		StoppedAt:        res.StoppedAt,
		ConverterCode:    res.ConverterCode,
		ExitCode:         res.ExitCode,
		Cleaned:          res.Cleaned,
		OutputSize:       res.OutputSize,
	}
	if !res.StartedAt.IsZero() && !res.StoppedAt.IsZero() {
		r.DurationNS = res.StoppedAt.Sub(res.StartedAt).Nanoseconds()
	}
	if host, err := os.Hostname(); err == nil {
		r.Host = host
	}
	return r
}

func (r Report) encode() ([]byte, error) {
	return json.Marshal(r)
}

// Publisher ships a Report to one sink.
type Publisher interface {
	Publish(ctx context.Context, r Report) error
	Close(ctx context.Context) error
	String() string
}

// NewPublishers returns a Publisher for every sink enabled in cfg. Sinks that
// fail to initialize are skipped and reported through the returned error.
func NewPublishers(cfg config.ReportConfigurations) ([]Publisher, error) {
	var (
		publishers []Publisher
		firstErr   error
	)
	if len(cfg.Elasticsearch.Addresses) > 0 {
		p, err := NewElasticPublisher(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index)
		if err != nil {
			firstErr = err
		} else {
			publishers = append(publishers, p)
		}
	}
	if cfg.Kafka.Brokers != "" {
		p, err := NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil && firstErr == nil {
			firstErr = err
		} else if err == nil {
			publishers = append(publishers, p)
		}
	}
	return publishers, firstErr
}
