// Package autofill runs the detect, reconcile and fill pipeline against one page.
package autofill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/v0xg/formfill/internal/browser"
	"github.com/v0xg/formfill/internal/console"
	"github.com/v0xg/formfill/internal/fill"
	"github.com/v0xg/formfill/internal/form"
	"github.com/v0xg/formfill/internal/reconcile"
)

// Pipeline wires the pipeline stages to one browser session
type Pipeline struct {
	Session   browser.Session
	Extractor *form.Extractor
	Engine    *reconcile.Engine
	Filler    *fill.Filler
	Printer   *console.Printer
	Logger    *zap.Logger

	// DryRun stops after printing the detected forms
	DryRun bool
}

// Summary describes a finished run
type Summary struct {
	URL       string
	Snapshots []form.Snapshot
	Reconcile reconcile.Result
	Reports   []fill.Report
}

// Filled counts fields changed across all forms
func (s Summary) Filled() int {
	n := 0
	for _, r := range s.Reports {
		n += r.Count(fill.Filled)
	}
	return n
}

// Failed counts fields that could not be filled across all forms
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Reports {
		n += r.Count(fill.Failed)
	}
	return n
}

// Run opens url, detects its forms, makes sure every named field has an
// answer, saves the store and fills the forms. Only navigation, a missing
// form, prompting and saving abort the run; field failures are reported.
func (p *Pipeline) Run(ctx context.Context, url string) (*Summary, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p.Printer.Step("Opening %s", url)
	if err := p.Session.Navigate(ctx, url); err != nil {
		p.Printer.Failed()
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	p.Printer.Done("")

	pageURL := p.Session.URL()
	if pageURL == "" {
		pageURL = url
	}
	summary := &Summary{URL: pageURL}

	p.Printer.Step("Detecting forms")
	snapshots, err := p.Extractor.Extract(ctx)
	if err != nil {
		p.Printer.Failed()
		return nil, fmt.Errorf("form detection failed: %w", err)
	}
	summary.Snapshots = snapshots
	p.Printer.Done("%d forms, %d fields", len(snapshots), countFields(snapshots))
	p.Printer.Summary(snapshots)
	logger.Info("Detected forms",
		zap.String("url", pageURL),
		zap.Int("forms", len(snapshots)),
		zap.Int("fields", countFields(snapshots)))

	if p.DryRun {
		return summary, nil
	}

	res, err := p.Engine.Reconcile(ctx, pageURL, snapshots)
	summary.Reconcile = res
	if err != nil {
		return summary, fmt.Errorf("reconciliation failed: %w", err)
	}
	if res.Saved {
		p.Printer.Success("Saved %d new answers", len(res.Prompted))
	}

	p.Printer.Section("Filling forms")
	for _, snap := range snapshots {
		report, err := p.Filler.Fill(ctx, pageURL, snap)
		summary.Reports = append(summary.Reports, report)
		if err != nil {
			return summary, fmt.Errorf("filling form %d: %w", snap.Index+1, err)
		}
	}

	if failed := summary.Failed(); failed > 0 {
		p.Printer.Warn("%d fields could not be filled", failed)
	}
	logger.Info("Filled forms",
		zap.Int("filled", summary.Filled()),
		zap.Int("failed", summary.Failed()))
	return summary, nil
}

func countFields(snapshots []form.Snapshot) int {
	n := 0
	for _, s := range snapshots {
		n += s.Len()
	}
	return n
}
