package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/markchap/internal/config"
	"github.com/dgallion1/markchap/internal/doctree"
	"github.com/dgallion1/markchap/internal/numbering"
	"github.com/dgallion1/markchap/internal/parser"
)

// WriteError reports an output file that could not be written. The rest of
// the batch continues.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Summary describes one completed run.
type Summary struct {
	Discovered int
	Parsed     int
	Skipped    int
	Written    int
	Unchanged  int
	Failed     int

	Headings int
	Figures  int
	Tables   int
	Warnings int

	Files []FileSnapshot
}

// Orchestrator runs discovery, parsing, numbering and output for one input
// tree.
type Orchestrator struct {
	cfg    config.Config
	engine *numbering.Engine
	log    *slog.Logger

	// diffOut receives unified diffs instead of writing files when set.
	diffOut io.Writer
}

// NewOrchestrator builds the numbering engine from cfg.
func NewOrchestrator(cfg config.Config, log *slog.Logger) (*Orchestrator, error) {
	chapter, figure, table, err := cfg.NumberFormats.Templates()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}
	engine, err := numbering.NewEngine(numbering.Options{
		ExcludedHeadings: cfg.ExcludedHeadings,
		Chapter:          chapter,
		Figure:           figure,
		Table:            table,
		TableKeyword:     cfg.TableKeyword,
		HeadingSeparator: cfg.HeadingSeparator,
		CaptionSeparator: cfg.CaptionSeparator,
		PreserveExisting: cfg.PreserveExistingNumbers,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Orchestrator{cfg: cfg, engine: engine, log: log}, nil
}

// DryRun makes Run print unified diffs to w and write nothing.
func (o *Orchestrator) DryRun(w io.Writer) {
	o.diffOut = w
}

// Run numbers every Markdown file under inputDir and writes the results to
// the configured output directory.
func (o *Orchestrator) Run(ctx context.Context, inputDir string) (Summary, error) {
	var sum Summary

	info, err := os.Stat(inputDir)
	if err != nil {
		return sum, fmt.Errorf("%w: %s: %w", ErrInputNotFound, inputDir, err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, inputDir)
	}

	outDir, err := filepath.Abs(o.cfg.OutputDirectory)
	if err != nil {
		return sum, err
	}
	absIn, err := filepath.Abs(inputDir)
	if err != nil {
		return sum, err
	}
	if outDir == absIn {
		return sum, fmt.Errorf("%w: output directory %s is the input directory", config.ErrConfig, o.cfg.OutputDirectory)
	}

	listing, err := Discover(absIn, o.cfg.Recursive, outDir)
	if err != nil {
		return sum, err
	}
	if len(listing.Files) == 0 {
		return sum, fmt.Errorf("%w in %s", ErrNoDocuments, inputDir)
	}
	sum.Discovered = len(listing.Files)
	o.log.Info("discovered documents", "input", inputDir, "files", len(listing.Files))

	jobs := make([]*FileJob, len(listing.Files))
	for i, p := range listing.Files {
		jobs[i] = NewFileJob(p)
	}

	// Phase 1: Parse with bounded concurrency; slots keep corpus order.
	docs, err := o.parseAll(ctx, absIn, jobs)
	if err != nil {
		return sum, err
	}

	var corpus doctree.Corpus
	var corpusJobs []*FileJob
	for i, doc := range docs {
		if doc != nil {
			corpus = append(corpus, doc)
			corpusJobs = append(corpusJobs, jobs[i])
		}
	}

	// Phase 2: Number the whole corpus in one sequential pass.
	numbered, _, rep := o.engine.Apply(corpus, numbering.State{})
	o.record(rep, corpus, corpusJobs)
	for _, w := range rep.Warnings {
		o.log.Warn("table marker skipped", "error", w)
	}
	sum.Warnings = len(rep.Warnings)

	// Phase 3: Render and write.
	if o.diffOut != nil {
		if err := o.diffAll(corpus, numbered, corpusJobs); err != nil {
			return sum, err
		}
	} else {
		if err := o.mirrorDirs(listing.Dirs, outDir); err != nil {
			return sum, err
		}
		if err := o.writeAll(ctx, numbered, corpusJobs, outDir); err != nil {
			return sum, err
		}
	}

	for _, j := range jobs {
		snap := j.Snapshot()
		sum.Files = append(sum.Files, snap)
		switch snap.Status {
		case StatusSkipped:
			sum.Skipped++
			continue
		case StatusWritten:
			sum.Written++
		case StatusUnchanged:
			sum.Unchanged++
		case StatusFailed:
			sum.Failed++
		}
		sum.Parsed++
		sum.Headings += snap.Headings
		sum.Figures += snap.Figures
		sum.Tables += snap.Tables
	}

	o.log.Info("run complete",
		"processed", sum.Parsed,
		"skipped", sum.Skipped,
		"written", sum.Written,
		"unchanged", sum.Unchanged,
		"failed", sum.Failed,
		"headings", sum.Headings,
		"figures", sum.Figures,
		"tables", sum.Tables,
		"warnings", sum.Warnings,
		"output", outDir,
	)
	return sum, nil
}

func (o *Orchestrator) parseAll(ctx context.Context, root string, jobs []*FileJob) ([]*doctree.Document, error) {
	docs := make([]*doctree.Document, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := parseFile(root, job.Path)
			if err != nil {
				log := o.log.With("path", job.Path)
				var perr *parser.ParseError
				if errors.As(err, &perr) && perr.Line > 0 {
					log = log.With("line", perr.Line)
				}
				log.Warn("skipping file", "error", err)
				job.AddError(err.Error())
				job.SetStatus(StatusSkipped)
				return nil
			}
			job.SetStatus(StatusParsed)
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func parseFile(root, rel string) (*doctree.Document, error) {
	p, err := parser.ForFile(rel)
	if err != nil {
		return nil, &parser.ParseError{Path: rel, Err: err}
	}
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, &parser.ParseError{Path: rel, Err: err}
	}
	defer f.Close()
	return p.Parse(f, rel)
}

// record attributes the engine's assignments to their files and logs them at
// debug level.
func (o *Orchestrator) record(rep numbering.Report, corpus doctree.Corpus, jobs []*FileJob) {
	byPath := make(map[string]*FileJob, len(jobs))
	for i, doc := range corpus {
		byPath[doc.Path] = jobs[i]
	}
	for _, h := range rep.Headings {
		if h.Excluded {
			o.log.Debug("heading excluded", "path", h.Path, "line", h.Line, "text", h.Text)
			continue
		}
		byPath[h.Path].AddCounts(1, 0, 0)
		o.log.Debug("heading numbered", "path", h.Path, "line", h.Line, "label", h.Label, "preserved", h.Preserved)
	}
	for _, f := range rep.Figures {
		if f.Kind == numbering.KindTable {
			byPath[f.Path].AddCounts(0, 0, 1)
		} else {
			byPath[f.Path].AddCounts(0, 1, 0)
		}
		o.log.Debug("caption numbered", "path", f.Path, "line", f.Line, "kind", string(f.Kind), "label", f.Label)
	}
}

// mirrorDirs recreates the input directory tree below outDir. Only a missing
// output root is fatal; files below a failed subdirectory fail individually
// when written.
func (o *Orchestrator) mirrorDirs(dirs []string, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return &WriteError{Path: outDir, Err: err}
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(outDir, filepath.FromSlash(d)), 0o755); err != nil {
			o.log.Warn("mirror directory failed", "path", d, "error", &WriteError{Path: d, Err: err})
		}
	}
	return nil
}

func (o *Orchestrator) writeAll(ctx context.Context, docs doctree.Corpus, jobs []*FileJob, outDir string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, doc := range docs {
		job := jobs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := o.log.With("path", doc.Path)
			written, err := writeDocument(doc, outDir, job)
			switch {
			case err != nil:
				log.Warn("write failed", "error", err)
				job.AddError(err.Error())
				job.SetStatus(StatusFailed)
			case written:
				log.Debug("wrote document")
				job.SetStatus(StatusWritten)
			default:
				log.Debug("output unchanged")
				job.SetStatus(StatusUnchanged)
			}
			return nil
		})
	}
	return g.Wait()
}

// writeDocument renders doc below outDir. Outputs whose content already
// matches the existing file are left untouched.
func writeDocument(doc *doctree.Document, outDir string, job *FileJob) (bool, error) {
	data := doc.Render()
	hash := ContentHashHex(data)
	job.SetContentHash(hash)

	dest := filepath.Join(outDir, filepath.FromSlash(doc.Path))
	if existing, err := os.ReadFile(dest); err == nil && ContentHashHex(existing) == hash {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, &WriteError{Path: doc.Path, Err: err}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return false, &WriteError{Path: doc.Path, Err: err}
	}
	return true, nil
}

func (o *Orchestrator) diffAll(before, after doctree.Corpus, jobs []*FileJob) error {
	for i, doc := range after {
		data := doc.Render()
		jobs[i].SetContentHash(ContentHashHex(data))
		jobs[i].SetStatus(StatusDryRun)
		d, err := UnifiedDiff(doc.Path, before[i].Render(), data)
		if err != nil {
			return fmt.Errorf("diff %s: %w", doc.Path, err)
		}
		if d == "" {
			continue
		}
		if _, err := io.WriteString(o.diffOut, d); err != nil {
			return err
		}
	}
	return nil
}
