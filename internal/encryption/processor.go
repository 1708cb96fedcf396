package encryption

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idelchi/xtsenc/internal/config"
	"github.com/idelchi/xtsenc/internal/dispatch"
	"github.com/idelchi/xtsenc/internal/fileutil"
)

// ErrSameFile is returned when a file would be written onto itself.
var ErrSameFile = errors.New("output path is the input file")

// Processor handles the encryption and decryption of files.
type Processor struct {
	// cfg contains runtime configuration options
	cfg *config.Config

	// dispatcher spreads the data units of each file over the workers
	dispatcher *dispatch.Dispatcher

	// key stores raw key bytes
	key []byte

	// results channels processing outcomes to the printer goroutine
	results chan Result

	// units counts the data units of all successfully processed files
	units int
}

// NewProcessor creates a new Processor with the given configuration.
// The observer, if not nil, receives the progress of every file.
func NewProcessor(cfg *config.Config, observer dispatch.Observer) (*Processor, error) {
	key, err := LoadKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	// Fail on a bad key before any file is opened.
	check, err := NewXTS(key, cfg.Direction())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Direction(), err)
	}

	check.Close() //nolint:errcheck,gosec // never fails

	dispatcher, err := dispatch.New(NewTransformer, dispatch.Options{
		UnitSize: cfg.UnitBytes,
		Observer: observer,
	})
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	if _, err := dispatch.NormalizeWorkers(cfg.Parallel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	return &Processor{
		cfg:        cfg,
		dispatcher: dispatcher,
		key:        key,
		results:    make(chan Result, len(cfg.Files)),
	}, nil
}

// ProcessFiles processes all files specified in the configuration, one after the other, each
// with the full worker pool. A failing file does not stop the others; cancelling ctx does.
// Returns the number of successfully processed files, the number of errors and the total
// number of bytes written.
func (p *Processor) ProcessFiles(ctx context.Context) (processed, errored int, totalSize int64, err error) {
	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range p.results {
			if result.Error != nil {
				errored++

				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", result.Input, result.Error)

				continue
			}

			processed++

			totalSize += result.OutputSize
			p.units += result.Units

			if !p.cfg.Quiet {
				fmt.Printf("Processed %q -> %q\n", result.Input, result.Output) //nolint:forbidigo
			}

			if p.cfg.Delete {
				if err := os.Remove(result.Input); err != nil {
					fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", result.Input, err)
				} else if !p.cfg.Quiet {
					fmt.Printf("Deleted %q\n", result.Input) //nolint:forbidigo
				}
			}
		}
	}()

	var errs []error

	for _, file := range p.cfg.Files {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%w: %w", dispatch.ErrCancelled, context.Cause(ctx)))

			break
		}

		outPath := p.cfg.OutputPath(file)

		size, err := p.processFile(ctx, file, outPath)
		if err != nil {
			p.results <- Result{Input: file, Error: err}

			errs = append(errs, err)

			continue
		}

		p.results <- Result{
			Input:      file,
			Output:     outPath,
			OutputSize: size,
			Units:      dispatch.UnitCount(int(size), p.dispatcher.UnitSize()),
		}
	}

	close(p.results)

	<-done // Wait for printer to finish

	if err := errors.Join(errs...); err != nil {
		return processed, errored, totalSize, fmt.Errorf("processing files: %w", err)
	}

	return processed, errored, totalSize, nil
}

// Units returns the number of data units transformed by ProcessFiles.
func (p *Processor) Units() int {
	return p.units
}

// processFile handles the encryption or decryption of a single file.
// The input is mapped read-only, the output is mapped from a temporary file which is renamed
// onto outPath once every data unit was transformed.
func (p *Processor) processFile(ctx context.Context, filename, outPath string) (size int64, err error) {
	if same, err := samePath(filename, outPath); err != nil {
		return 0, err
	} else if same {
		return 0, fmt.Errorf("%w: %q", ErrSameFile, filename)
	}

	tc, err := fileutil.NewTempContext(filename, outPath)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	input, err := fileutil.MapInput(filename)
	if err != nil {
		return 0, fmt.Errorf("reading input file: %w", err)
	}
	defer input.Close()

	output, err := fileutil.MapOutput(tc.TmpFile, input.Len())
	if err != nil {
		return 0, fmt.Errorf("preparing output file: %w", err)
	}
	defer output.Close()

	if err := p.dispatcher.Run(ctx, input.Bytes(), output.Bytes(), p.key, p.cfg.Parallel, p.cfg.Direction()); err != nil {
		return 0, fmt.Errorf("%s: %w", p.cfg.Direction(), err)
	}

	if err := output.Close(); err != nil {
		return 0, fmt.Errorf("writing output file: %w", err)
	}

	if err := input.Close(); err != nil {
		return 0, fmt.Errorf("releasing input file: %w", err)
	}

	if err := tc.Commit(outPath); err != nil {
		return 0, err //nolint:wrapcheck // already wrapped
	}

	size, err = fileutil.FinalizeOutput(outPath, p.cfg.PreserveTimestamps, tc.SrcInfo.ModTime())
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	return size, nil
}

// samePath reports whether outPath names the input file itself.
func samePath(input, outPath string) (bool, error) {
	if filepath.Clean(input) == filepath.Clean(outPath) {
		return true, nil
	}

	in, err := os.Stat(input)
	if err != nil {
		return false, fmt.Errorf("getting file info for %q: %w", input, err)
	}

	out, err := os.Stat(outPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("getting file info for %q: %w", outPath, err)
	}

	return os.SameFile(in, out), nil
}
