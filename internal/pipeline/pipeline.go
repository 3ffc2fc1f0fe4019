// Package pipeline prepares a directory of BiLSTM weight dumps: it converts
// every .txt to a Q4.12 .mem file and packs the recurrent weight files into
// wide rows, following a fixed rule table.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/23skdu/longbow-memprep/internal/config"
	"github.com/23skdu/longbow-memprep/internal/logger"
	"github.com/23skdu/longbow-memprep/internal/memfile"
	"github.com/23skdu/longbow-memprep/internal/metrics"
	"github.com/spf13/afero"
)

// Summary counts what one Run did.
type Summary struct {
	Converted    int
	Reshaped     int
	Cleaned      int
	GuardSkipped int
	LinesSkipped int
}

type Pipeline struct {
	fs    afero.Fs
	cfg   config.Config
	conv  *memfile.Converter
	rules []Rule
}

func New(fs afero.Fs, cfg config.Config) *Pipeline {
	return &Pipeline{
		fs:    fs,
		cfg:   cfg,
		conv:  memfile.NewConverter(fs, cfg.Format),
		rules: Rules(cfg.Gates),
	}
}

// runState tracks per-file decisions within one Run.
type runState struct {
	fresh   map[string]bool     // written by a convert rule this run
	skip    map[string]bool     // guard decided the file is already done
	applied map[string][]string // in-place rules applied this run
}

// Run applies every rule to cfg.Dir. With the guard enabled, in-place
// rewrites are skipped for files whose content matches what the previous
// run recorded, so running twice does not pack rows twice.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	dir := p.cfg.Dir

	var st *State
	statePath := filepath.Join(dir, p.cfg.StateFile)
	if p.cfg.Guard {
		var err error
		if st, err = loadState(p.fs, statePath); err != nil {
			return sum, err
		}
	}

	rs := &runState{
		fresh:   map[string]bool{},
		skip:    map[string]bool{},
		applied: map[string][]string{},
	}

	for _, rule := range p.rules {
		names, err := p.list(dir)
		if err != nil {
			return sum, err
		}
		for _, name := range names {
			if !rule.Match(name) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			if err := p.apply(rule, name, st, rs, &sum); err != nil {
				return sum, err
			}
		}
	}

	if st != nil {
		for name, rules := range rs.applied {
			data, err := afero.ReadFile(p.fs, filepath.Join(dir, name))
			if err != nil {
				return sum, fmt.Errorf("read %s: %w", name, err)
			}
			st.Files[name] = FileState{Digest: digest(data), Rules: rules}
		}
		if err := st.save(p.fs, statePath); err != nil {
			return sum, err
		}
	}

	logger.Log.Info("pipeline complete", "dir", dir,
		"converted", sum.Converted, "reshaped", sum.Reshaped, "cleaned", sum.Cleaned,
		"guard_skipped", sum.GuardSkipped, "lines_skipped", sum.LinesSkipped)
	return sum, nil
}

func (p *Pipeline) apply(rule Rule, name string, st *State, rs *runState, sum *Summary) error {
	path := filepath.Join(p.cfg.Dir, name)

	if rule.Action == ActionConvert {
		out := memName(name)
		outPath := filepath.Join(p.cfg.Dir, out)
		res, err := p.conv.ConvertFile(path, outPath)
		if err != nil {
			return err
		}
		rs.fresh[out] = true
		delete(rs.skip, out)
		delete(rs.applied, out)
		sum.Converted++
		sum.LinesSkipped += res.Skipped
		metrics.RecordFile(rule.Name)
		logger.Log.Info("converted", "rule", rule.Name, "input", path, "output", outPath,
			"words", res.Written, "skipped", res.Skipped)
		return nil
	}

	if st != nil && !rs.fresh[name] {
		skip, seen := rs.skip[name]
		if !seen {
			done, err := st.processed(p.fs, path, name)
			if err != nil {
				return err
			}
			skip = done
			rs.skip[name] = skip
		}
		if skip {
			sum.GuardSkipped++
			metrics.RecordGuardSkip()
			logger.Log.Warn("already processed, not rewriting", "rule", rule.Name, "file", path)
			return nil
		}
	}

	switch rule.Action {
	case ActionReshape:
		n, err := memfile.ReshapeFile(p.fs, path, rule.GroupSize)
		if err != nil {
			return err
		}
		sum.Reshaped++
		logger.Log.Info("reshaped", "rule", rule.Name, "file", path, "group", rule.GroupSize, "rows", n)
	case ActionClean:
		n, err := memfile.CleanFile(p.fs, path)
		if err != nil {
			return err
		}
		sum.Cleaned++
		logger.Log.Info("cleaned", "rule", rule.Name, "file", path, "rows", n)
	default:
		return fmt.Errorf("rule %s: unsupported action %s", rule.Name, rule.Action)
	}
	rs.applied[name] = append(rs.applied[name], rule.Name)
	metrics.RecordFile(rule.Name)
	return nil
}

// list returns the regular files in dir, sorted by name.
func (p *Pipeline) list(dir string) ([]string, error) {
	infos, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.Mode().IsRegular() {
			names = append(names, fi.Name())
		}
	}
	return names, nil
}
