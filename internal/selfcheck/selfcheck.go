// Package selfcheck sweeps the fixed endpoint catalog against a live router
// session and renders a firmware-support report.
package selfcheck

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/luci-doctor/internal/luci"
)

// SourceName labels notifications produced by the sweep.
const SourceName = "MiWifi"

// probeInterval spaces consecutive probes so the sweep does not pile load
// onto the embedded target.
const probeInterval = 200 * time.Millisecond

// Notifier is the external sink the finished report is handed to.
type Notifier interface {
	Notify(message, source string) error
}

// Metadata resolves integration metadata; the sweep only needs the
// issue-tracker root URL for the deep link.
type Metadata interface {
	IssueTracker() string
}

// Result pairs one catalog entry with its classification.
type Result struct {
	Path   string
	Status Status
}

// Report is the immutable outcome of one sweep.
type Report struct {
	// Title embeds the router address and model.
	Title string
	// Results preserves catalog order; the rendered check list follows it
	// line for line.
	Results []Result
	// Link is the pre-filled issue-tracker deep link.
	Link string
	// Message is the assembled notification body, link included.
	Message string
}

// Sweep probes the endpoint catalog through one authenticated client. Probes
// run strictly sequentially, each endpoint exactly once, no retries.
type Sweep struct {
	client    *luci.Client
	meta      Metadata
	sink      Notifier
	logger    *zap.Logger
	limiter   *rate.Limiter
	endpoints []Endpoint
}

// New builds a Sweep over the full catalog. A nil logger is replaced with a
// nop.
func New(client *luci.Client, meta Metadata, sink Notifier, logger *zap.Logger) *Sweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweep{
		client:    client,
		meta:      meta,
		sink:      sink,
		logger:    logger.Named("selfcheck"),
		limiter:   rate.NewLimiter(rate.Every(probeInterval), 1),
		endpoints: Catalog(),
	}
}

// Run executes the sweep and hands the rendered report to the notification
// sink. Probe failures are outcomes, not errors; Run itself fails only on
// context cancellation or a sink that rejects the message. The model string
// identifies the device in the report title and issue link.
func (s *Sweep) Run(ctx context.Context, model string) (*Report, error) {
	results := make([]Result, 0, len(s.endpoints))

	for _, endpoint := range s.endpoints {
		if endpoint.Status != StatusProbe {
			results = append(results, Result{Path: endpoint.Path, Status: endpoint.Status})
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		status := StatusSupported
		if err := endpoint.Probe(ctx, s.client); err != nil {
			s.logger.Debug("endpoint probe failed", zap.String("path", endpoint.Path), zap.Error(err))
			status = StatusUnsupported
		}
		results = append(results, Result{Path: endpoint.Path, Status: status})
	}

	report := s.render(model, results)

	if err := s.sink.Notify(report.Message, SourceName); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	s.logger.Info("self check finished",
		zap.String("model", model),
		zap.Int("endpoints", len(results)),
	)

	return report, nil
}

// render assembles the title, the ordered check list, the issue-tracker deep
// link, and the final notification message.
func (s *Sweep) render(model string, results []Result) *Report {
	title := fmt.Sprintf("Router %s not supported.\n\nModel: %s", s.client.Address(), model)

	var list strings.Builder
	list.WriteString("Check list:")
	for _, result := range results {
		fmt.Fprintf(&list, "\n * %s: %s", result.Path, result.Status.Symbol())
	}
	checkList := list.String()

	link := s.meta.IssueTracker() + "/new?title=" +
		url.QueryEscape("Add supports "+model) +
		"&body=" +
		url.QueryEscape(checkList)

	message := fmt.Sprintf("%s\n\n%s\n\n", title, checkList) +
		fmt.Sprintf(`<a href="%s" target="_blank">Create an issue with the data from this post to add support</a>`, link)

	return &Report{
		Title:   title,
		Results: results,
		Link:    link,
		Message: message,
	}
}
