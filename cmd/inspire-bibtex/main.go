// Command inspire-bibtex fetches BibTeX entries from InspireHEP for a list
// of paper identifiers and writes them to a .bib file.
//
// Identifiers (DOIs, arXiv IDs or INSPIRE record IDs) are taken from the
// arguments, or one per line from -f. Lines starting with '#' are ignored.
//
//	inspire-bibtex -o refs.bib 10.1103/PhysRevD.23.1693 1207.7214
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/inspirehep-mcp/config"
	"github.com/jonwraymond/inspirehep-mcp/ident"
	"github.com/jonwraymond/inspirehep-mcp/inspire"
	"github.com/jonwraymond/inspirehep-mcp/observe"
	"github.com/jonwraymond/inspirehep-mcp/tools"
)

// errSomeFailed is returned when at least one identifier could not be
// exported. The .bib file still holds every entry that succeeded.
var errSomeFailed = errors.New("some identifiers failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "inspire-bibtex:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, progress io.Writer) error {
	fs := flag.NewFlagSet("inspire-bibtex", flag.ContinueOnError)
	fs.SetOutput(progress)
	input := fs.String("f", "", "file with one identifier per line")
	output := fs.String("o", "citations.bib", "output file")
	parallel := fs.Int("j", 4, "identifiers fetched in parallel")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids := fs.Args()
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			return err
		}
		more, err := readIDs(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", *input, err)
		}
		ids = append(ids, more...)
	}
	if len(ids) == 0 {
		fs.Usage()
		return errors.New("no identifiers given")
	}

	cfg, err := config.Load(ctx, nil)
	if err != nil {
		return err
	}
	logger := observe.NewLoggerWithWriter(cfg.Telemetry.LogLevel, os.Stderr)
	client, err := inspire.New(cfg.InspireConfig(logger, nil))
	if err != nil {
		return err
	}
	defer client.Close()

	entries := fetchAll(ctx, tools.NewToolset(client, logger), ids, *parallel, progress)

	var bib []string
	for _, e := range entries {
		if e.err == nil {
			bib = append(bib, e.result.BibTeX)
		}
	}
	if err := os.WriteFile(*output, []byte(strings.Join(bib, "\n")), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(progress, "saved %d of %d entries to %s\n", len(bib), len(ids), *output)

	if len(bib) < len(ids) {
		return errSomeFailed
	}
	return nil
}

// bibtexer is the part of *tools.Toolset the command uses.
type bibtexer interface {
	BibTeX(ctx context.Context, typ ident.Type, value string) (tools.BibTeXResult, error)
}

type entry struct {
	id     string
	result tools.BibTeXResult
	err    error
}

// fetchAll resolves every identifier, at most parallel at a time, and
// returns the outcomes in input order.
func fetchAll(ctx context.Context, src bibtexer, ids []string, parallel int, progress io.Writer) []entry {
	entries := make([]entry, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))

	for i, id := range ids {
		g.Go(func() error {
			e := entry{id: id}
			typ := ident.Detect(id)
			if typ == ident.TypeUnknown {
				e.err = fmt.Errorf("unrecognized identifier %q", id)
			} else {
				e.result, e.err = src.BibTeX(ctx, typ, id)
			}
			entries[i] = e
			return nil
		})
	}
	_ = g.Wait()

	for i, e := range entries {
		if e.err != nil {
			fmt.Fprintf(progress, "[%d/%d] %s: error: %v\n", i+1, len(ids), e.id, e.err)
			continue
		}
		fmt.Fprintf(progress, "[%d/%d] %s: %s (INSPIRE %s)\n", i+1, len(ids), e.id, e.result.Title, e.result.InspireID)
	}
	return entries
}

func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, sc.Err()
}
