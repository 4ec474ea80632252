package process

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cssbust/bust"
	"cssbust/config"
	"cssbust/css"
	"cssbust/state"
)

// document is a single stylesheet to process.
type document struct {
	path   string // absolute path, context for resolving relative references
	rel    string // path relative to processed directory
	output string
}

// Run is an action of "bust" subcommand.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs = env.Cfg.Processing.NoDirs || cmd.Bool("nodirs")
	env.Overwrite = env.Cfg.Processing.Overwrite || cmd.Bool("overwrite")
	env.Jobs = env.Cfg.Processing.Jobs
	if cmd.IsSet("jobs") {
		env.Jobs = cmd.Int("jobs")
	}
	if len(dst) == 0 && !env.Overwrite {
		return errors.New("no destination has been specified, rewriting in place requires overwrite")
	}

	destination := dst
	if len(destination) == 0 {
		destination = "in place"
	}
	log.Info("Processing starting", zap.String("source", src), zap.String("destination", destination),
		zap.Stringer("strategy", env.Cfg.Cachebuster.Type), zap.Int("jobs", env.Workers()))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, env, log)
}

// newRewriter builds cachebuster engine from configuration. Template strategy
// is turned into custom function here.
func newRewriter(env *state.LocalEnv, sink bust.DiagnosticSink) (*bust.Rewriter, error) {
	cb := &env.Cfg.Cachebuster
	bc := cb.BustConfig()
	if cb.Type == config.StrategyTypeTemplate {
		fn, err := newPathTemplate(cb.PathTemplate, env.Cache)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", bust.ErrConfiguration, err)
		}
		bc.Func = fn
	}
	opts, err := bust.NewOptions(bc)
	if err != nil {
		return nil, err
	}
	return bust.NewRewriter(opts, env.Cache, sink, env.Log), nil
}

// process handles the core logic independently of CLI framework. src is
// either a stylesheet or a directory to look for stylesheets in.
func process(ctx context.Context, src, dst string, env *state.LocalEnv, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found: %w", err)
	}

	var docs []document
	switch {
	case fi.Mode().IsDir():
		if docs, err = collectDir(ctx, src, dst, env.Cfg.Processing.Extensions, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
	case fi.Mode().IsRegular():
		docs = []document{{path: src, rel: filepath.Base(src)}}
	default:
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	docs = assignOutputs(docs, dst, env, log)
	if len(docs) == 0 {
		log.Info("Nothing to process", zap.String("source", src))
		return nil
	}

	sink := &diagnostics{}
	rw, err := newRewriter(env, sink)
	if err != nil {
		return err
	}
	opts := rw.Options()
	log.Debug("Cachebuster configured", zap.Stringer("strategy", opts.Strategy.Kind), zap.String("param", opts.ParamName),
		zap.String("images", opts.ImagesBaseDir), zap.String("css", opts.CSSBaseDir), zap.Strings("props", opts.Props()))

	var (
		mu     sync.Mutex
		errs   error
		failed int
		total  bust.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(env.Workers())
	for _, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			st, err := processDocument(gctx, doc, rw, env, log)

			mu.Lock()
			defer mu.Unlock()
			total.Add(st)
			if err != nil {
				log.Error("Unable to process stylesheet", zap.String("file", doc.path), zap.Error(err))
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", doc.rel, err))
				failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	if sink.Len() > 0 {
		env.Rpt.StoreData("diagnostics.txt", sink.listing())
	}
	log.Info("Stylesheets processed", zap.Int("documents", len(docs)), zap.Int("failed", failed),
		zap.Int("references", total.Tokens), zap.Int("rewritten", total.Rewritten),
		zap.Int("ineligible", total.Ineligible), zap.Int("unavailable", total.Unavailable))

	if err := ctx.Err(); err != nil {
		return err
	}
	if errs != nil {
		return fmt.Errorf("unable to process %d of %d stylesheet(s): %w", failed, len(docs), errs)
	}
	return nil
}

// collectDir walks directory tree finding stylesheets by extension. Output
// directory is skipped when it is located inside of the tree.
func collectDir(ctx context.Context, dir, dst string, exts []string, log *zap.Logger) ([]document, error) {
	var docs []document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if len(dst) > 0 && path == dst && path != dir {
				log.Debug("Skipping destination directory", zap.String("dir", path))
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := filepath.Ext(path)
		if !slices.ContainsFunc(exts, func(e string) bool { return strings.EqualFold(e, ext) }) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		docs = append(docs, document{path: path, rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return natural.Less(filepath.ToSlash(docs[i].rel), filepath.ToSlash(docs[j].rel))
	})
	return docs, nil
}

// processDocument rewrites single stylesheet and writes result.
func processDocument(ctx context.Context, doc document, rw *bust.Rewriter, env *state.LocalEnv, log *zap.Logger) (st bust.Stats, rerr error) {
	if err := ctx.Err(); err != nil {
		return st, err
	}

	log.Debug("Processing stylesheet", zap.String("from", doc.path))
	defer func(start time.Time) {
		// keep going with the rest of the stylesheets
		if r := recover(); r != nil {
			log.Error("Processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("from", doc.path), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		} else if rerr == nil {
			log.Info("Stylesheet processed", zap.Duration("elapsed", time.Since(start)), zap.String("from", doc.path),
				zap.String("to", doc.output), zap.Int("rewritten", st.Rewritten), zap.Int("references", st.Tokens))
		}
	}(time.Now())

	if err := prepareOutput(doc.output, env.Overwrite, log); err != nil {
		return st, err
	}

	fi, err := os.Stat(doc.path)
	if err != nil {
		return st, err
	}
	data, err := os.ReadFile(doc.path)
	if err != nil {
		return st, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	enc := detectUTF(data)
	text, err := toUTF8(data, enc)
	if err != nil {
		return st, err
	}
	converted := enc != encUnknown && enc != encUTF8
	if converted {
		log.Debug("Stylesheet converted to UTF-8", zap.String("file", doc.path), zap.Stringer("encoding", enc))
	}

	parsed := css.NewParser(log).Parse(text, doc.path)
	for _, w := range parsed.Warnings {
		log.Warn("Stylesheet problem", zap.String("file", doc.path), zap.String("problem", w))
	}
	st = rw.Process(parsed, doc.path)

	if doc.output == doc.path && st.Rewritten == 0 && !converted {
		log.Debug("Nothing changed, leaving stylesheet as is", zap.String("file", doc.path))
		return st, nil
	}

	out := []byte(parsed.String())
	if env.Rpt != nil {
		name := filepath.ToSlash(doc.rel)
		if doc.output == doc.path {
			// source is about to be replaced
			if err := env.Rpt.StoreCopy("input/"+name, doc.path); err != nil {
				log.Warn("Unable to copy stylesheet to report", zap.String("file", doc.path), zap.Error(err))
			}
		} else {
			env.Rpt.StoreData("input/"+name, data)
		}
		env.Rpt.StoreData("output/"+name, out)
	}
	if err := os.WriteFile(doc.output, out, fi.Mode().Perm()); err != nil {
		return st, fmt.Errorf("unable to write output: %w", err)
	}
	return st, nil
}
