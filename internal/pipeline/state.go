package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// State is the manifest kept next to the memory files. It records the
// content digest each in-place rewrite left behind.
type State struct {
	Files map[string]FileState `yaml:"files"`
}

type FileState struct {
	Digest string   `yaml:"digest"`
	Rules  []string `yaml:"rules"`
}

func digest(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

func loadState(afs afero.Fs, path string) (*State, error) {
	st := &State{Files: map[string]FileState{}}
	data, err := afero.ReadFile(afs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	if st.Files == nil {
		st.Files = map[string]FileState{}
	}
	return st, nil
}

func (s *State) save(afs afero.Fs, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := afero.WriteFile(afs, path, data, 0o644); err != nil {
		return fmt.Errorf("write state %s: %w", path, err)
	}
	return nil
}

// processed reports whether name still holds exactly what the last run
// left in it.
func (s *State) processed(afs afero.Fs, path, name string) (bool, error) {
	fst, ok := s.Files[name]
	if !ok {
		return false, nil
	}
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return digest(data) == fst.Digest, nil
}
