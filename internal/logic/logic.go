// Package logic implements the core business logic for the encryption/decryption.
package logic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idelchi/xtsenc/internal/config"
	"github.com/idelchi/xtsenc/internal/dispatch"
	"github.com/idelchi/xtsenc/internal/encryption"
	"github.com/idelchi/xtsenc/internal/filter"
	"github.com/idelchi/xtsenc/internal/metrics"
)

// Run is the main logic of the application.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	scanned, excluded, err := resolveFiles(cfg)
	if err != nil {
		return fmt.Errorf("resolving files: %w", err)
	}

	if cfg.Dry {
		return dryRun(cfg, scanned, excluded, start)
	}

	var (
		registry = prometheus.NewRegistry()
		observer dispatch.Observer
	)

	if cfg.MetricsTextfile != "" {
		observer = metrics.NewRecorder(registry, cfg.Direction())
	}

	proc, err := encryption.NewProcessor(cfg, observer)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	processed, errored, totalSize, err := proc.ProcessFiles(ctx)

	if cfg.Stats {
		printStats(stats{
			scanned:   scanned,
			excluded:  excluded,
			processed: processed,
			errored:   errored,
			units:     proc.Units(),
			size:      totalSize,
			workers:   cfg.Parallel,
			unitSize:  cfg.UnitBytes,
			duration:  time.Since(start),
		})
	}

	if cfg.MetricsTextfile != "" {
		err = errors.Join(err, metrics.WriteTextfile(cfg.MetricsTextfile, registry))
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// resolveFiles merges positional args with the files-from list, walks directories through the
// include/exclude patterns and de-duplicates the result into cfg.Files.
// When decrypting into derived paths, the encrypted suffix is required of every file.
// Returns the number of candidates seen and the number filtered out.
func resolveFiles(cfg *config.Config) (scanned, excluded int, err error) {
	paths := append([]string{}, cfg.Files...)

	if cfg.FilesFrom != "" {
		listed, err := filter.LoadPaths(cfg.FilesFrom)
		if err != nil {
			return 0, 0, fmt.Errorf("loading files-from list: %w", err)
		}

		paths = append(paths, listed...)
	}

	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return 0, 0, err
	}

	suffix := ""
	if cfg.Decrypt && cfg.Output == "" {
		suffix = cfg.EncryptExt
	}

	files, scanned, excluded, err := filter.Resolve(paths, includes, excludes, suffix)
	if err != nil {
		return scanned, excluded, fmt.Errorf("filtering files: %w", err)
	}

	if cfg.Output != "" && len(files) != 1 {
		return scanned, excluded, fmt.Errorf("%w: %d files selected", config.ErrOutputWithMany, len(files))
	}

	cfg.Files = files

	return scanned, excluded, nil
}

// loadPatterns merges CLI and file-based include/exclude patterns.
func loadPatterns(cfg *config.Config) (includes, excludes []string, err error) {
	includes = append(includes, cfg.Include...)
	excludes = append(excludes, cfg.Exclude...)

	if cfg.IncludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.IncludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading include patterns: %w", err)
		}

		includes = append(includes, patterns...)
	}

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	return includes, excludes, nil
}

// dryRun previews what would be processed without actually encrypting/decrypting.
func dryRun(cfg *config.Config, scanned, excluded int, start time.Time) error {
	var (
		totalSize int64
		units     int
	)

	for _, file := range cfg.Files {
		if !cfg.Quiet {
			fmt.Printf("Would %s %q -> %q\n", cfg.Direction(), file, cfg.OutputPath(file)) //nolint:forbidigo
		}

		info, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("stat %q: %w", file, err)
		}

		totalSize += info.Size()
		units += dispatch.UnitCount(int(info.Size()), cfg.UnitBytes)
	}

	if cfg.Stats {
		printStats(stats{
			scanned:   scanned,
			excluded:  excluded,
			processed: len(cfg.Files),
			units:     units,
			size:      totalSize,
			workers:   cfg.Parallel,
			unitSize:  cfg.UnitBytes,
			duration:  time.Since(start),
		})
	}

	return nil
}

type stats struct {
	scanned, excluded, processed, errored int
	units, workers, unitSize              int
	size                                  int64
	duration                              time.Duration
}

func printStats(s stats) {
	workers, _ := dispatch.NormalizeWorkers(s.workers)

	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:   %d\n", s.scanned)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", s.excluded)
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", s.processed)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", s.errored)
	//nolint:gosec // sizes are always non-negative
	fmt.Fprintf(os.Stderr, "  Units:     %s x %s\n", humanize.Comma(int64(s.units)), humanize.IBytes(uint64(max(0, s.unitSize))))
	fmt.Fprintf(os.Stderr, "  Workers:   %d\n", workers)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(uint64(max(0, s.size))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", s.duration.Round(time.Millisecond))

	if seconds := s.duration.Seconds(); seconds > 0 && s.size > 0 {
		fmt.Fprintf(os.Stderr, "  Rate:      %s/s\n", humanize.IBytes(uint64(float64(s.size)/seconds)))
	}
}
