// Package scan builds descriptors for every store of one or more
// workspaces in parallel.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"golang.org/x/sync/errgroup"
)

// Scanner lists stores and processes their descriptors with the provided processor.
type Scanner struct {
	svc    storeinfo.Service
	logger *slog.Logger
}

// New creates a new Scanner instance. A nil logger uses slog.Default().
func New(svc storeinfo.Service, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{svc: svc, logger: logger}
}

// ScanOptions configures the scan operation.
type ScanOptions struct {
	// Workspaces to scan; empty scans every workspace in the catalog
	Workspaces []string

	// Processor defines the processing logic (required unless DryRun is true)
	Processor StoreProcessor

	// Concurrency bounds the number of descriptors built at once (default: 4)
	Concurrency int

	// DryRun if true, doesn't build descriptors, just reports what would be processed
	DryRun bool

	// OnProgress is called after each store is handled (optional)
	OnProgress func(processed, total int64)
}

// ScanResult contains statistics about the scan operation.
type ScanResult struct {
	// TotalFound is the total number of stores found in the scanned workspaces
	TotalFound int64

	// TotalProcessed is the number of stores successfully processed
	TotalProcessed int64

	// TotalFailed is the number of stores that failed lookup or processing
	TotalFailed int64

	// FailedStores contains the qualified names (workspace:name) of failed stores
	FailedStores []string
}

// Scan lists the stores of each workspace and processes their descriptors.
// A store that fails is recorded and scanning continues; only catalog
// listing failures and context cancellation abort the scan.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{}

	if !opts.DryRun && opts.Processor == nil {
		return result, fmt.Errorf("processor is required when DryRun is false")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	workspaces := opts.Workspaces
	if len(workspaces) == 0 {
		var err error
		workspaces, err = s.svc.ListWorkspaces(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to list workspaces: %w", err)
		}
	}

	var summaries []*storeinfo.StoreSummary
	for _, ws := range workspaces {
		stores, err := s.svc.ListStores(ctx, ws)
		if err != nil {
			return result, fmt.Errorf("failed to list stores of %s: %w", ws, err)
		}
		summaries = append(summaries, stores...)
	}
	result.TotalFound = int64(len(summaries))

	var mu sync.Mutex
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.TotalFailed++
			result.FailedStores = append(result.FailedStores, name)
		} else {
			result.TotalProcessed++
		}
		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, summary := range summaries {
		name := summary.Workspace + ":" + summary.Name
		if opts.DryRun {
			s.logger.Info("dry run: would describe store",
				"store", name, "type", summary.Type, "kind", summary.Kind, "enabled", summary.Enabled)
			record(name, nil)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := s.svc.DescribeStore(gctx, summary.Workspace, summary.Name)
			if err == nil {
				err = opts.Processor.Process(gctx, d)
			}
			if err != nil {
				s.logger.Error("failed to process store", "store", name, "err", err)
			}
			record(name, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, ctx.Err()
}

// ForEach is a convenience method that processes each store with a callback function.
//
// Example:
//
//	scanner.ForEach(ctx, []string{"topp"}, func(ctx context.Context, d *storeinfo.StoreDescriptor) error {
//	    fmt.Printf("%s: %d entries\n", d.Name, len(d.Contents))
//	    return nil
//	})
func (s *Scanner) ForEach(ctx context.Context, workspaces []string, fn func(context.Context, *storeinfo.StoreDescriptor) error) (*ScanResult, error) {
	return s.Scan(ctx, ScanOptions{
		Workspaces: workspaces,
		Processor:  &funcProcessor{fn: fn},
	})
}
