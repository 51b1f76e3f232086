// Package persist provides file-based JSON and YAML stores for
// statechart.Snapshot: the snapshot layout spec.md §6 calls an optional,
// not-required extension.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hsmgo/statechart"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a statechart.Snapshot: plain strings so
// it marshals cleanly to both JSON and YAML without custom (un)marshalers
// on statechart.StateID.
type document struct {
	Configuration []string            `json:"configuration" yaml:"configuration"`
	History       map[string][]string `json:"history,omitempty" yaml:"history,omitempty"`
}

func toDocument(snap statechart.Snapshot) document {
	doc := document{Configuration: make([]string, len(snap.Configuration))}
	for i, id := range snap.Configuration {
		doc.Configuration[i] = string(id)
	}
	if len(snap.History) > 0 {
		doc.History = make(map[string][]string, len(snap.History))
		for k, ids := range snap.History {
			strs := make([]string, len(ids))
			for i, id := range ids {
				strs[i] = string(id)
			}
			doc.History[string(k)] = strs
		}
	}
	return doc
}

func fromDocument(doc document) statechart.Snapshot {
	snap := statechart.Snapshot{Configuration: make([]statechart.StateID, len(doc.Configuration))}
	for i, id := range doc.Configuration {
		snap.Configuration[i] = statechart.StateID(id)
	}
	if len(doc.History) > 0 {
		snap.History = make(map[statechart.StateID][]statechart.StateID, len(doc.History))
		for k, strs := range doc.History {
			ids := make([]statechart.StateID, len(strs))
			for i, s := range strs {
				ids[i] = statechart.StateID(s)
			}
			snap.History[statechart.StateID(k)] = ids
		}
	}
	return snap
}

// JSONPersister is a stdlib-JSON, file-based Snapshot store, one file per
// machine ID.
type JSONPersister struct{ dir string }

// NewJSONPersister creates a JSONPersister, ensuring dir exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

// Save writes snap to <dir>/<machineID>.json.
func (p *JSONPersister) Save(machineID string, snap statechart.Snapshot) error {
	data, err := json.MarshalIndent(toDocument(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	fn := filepath.Join(p.dir, machineID+".json")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

// Load reads a Snapshot previously saved under machineID.
func (p *JSONPersister) Load(machineID string) (statechart.Snapshot, error) {
	fn := filepath.Join(p.dir, machineID+".json")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return statechart.Snapshot{}, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return statechart.Snapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return statechart.Snapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return fromDocument(doc), nil
}

// YAMLPersister is a gopkg.in/yaml.v3, file-based Snapshot store.
type YAMLPersister struct{ dir string }

// NewYAMLPersister creates a YAMLPersister, ensuring dir exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

// Save writes snap to <dir>/<machineID>.yaml.
func (p *YAMLPersister) Save(machineID string, snap statechart.Snapshot) error {
	data, err := yaml.Marshal(toDocument(snap))
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	fn := filepath.Join(p.dir, machineID+".yaml")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

// Load reads a Snapshot previously saved under machineID.
func (p *YAMLPersister) Load(machineID string) (statechart.Snapshot, error) {
	fn := filepath.Join(p.dir, machineID+".yaml")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return statechart.Snapshot{}, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return statechart.Snapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return statechart.Snapshot{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return fromDocument(doc), nil
}
