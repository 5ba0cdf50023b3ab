package cmd

import (
	"context"

	"github.com/sirupsen/logrus"

	c "github.com/d-ashe/ndis-pcap/config"
	"github.com/d-ashe/ndis-pcap/pkg/capture"
	"github.com/d-ashe/ndis-pcap/srv"
)

// publishReport sends the run summary to every configured sink. Failures are
// notes only and never change the exit code.
func publishReport(ctx context.Context, cfg c.ReportConfigurations, res capture.Result, log *logrus.Logger) {
	publishers, err := srv.NewPublishers(cfg)
	if err != nil {
		log.WithError(err).Warn("could not set up report sink")
	}
	if len(publishers) == 0 {
		return
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	report := srv.NewReport(res)
	for _, p := range publishers {
		if err := p.Publish(ctx, report); err != nil {
			log.WithError(err).Warnf("could not publish run report to %s", p)
		} else {
			log.Debugf("published run report to %s", p)
		}
		if err := p.Close(ctx); err != nil {
			log.WithError(err).Debugf("closing %s", p)
		}
	}
}
