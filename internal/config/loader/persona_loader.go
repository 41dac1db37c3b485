// Package loader loads narrative-agent personas from a YAML file and hot
// reloads them when the file changes on disk.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tradecouncil/internal/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Persona describes one narrative agent: the investor character fed to
// the model as its system prompt plus optional extra guidance appended
// to every user prompt.
type Persona struct {
	Name     string `yaml:"name"`
	Style    string `yaml:"style"`
	System   string `yaml:"system"`
	Guidance string `yaml:"guidance"`
}

// SystemPrompt returns the effective system prompt, synthesized from
// Style when no explicit one is configured.
func (p Persona) SystemPrompt() string {
	if strings.TrimSpace(p.System) != "" {
		return p.System
	}
	style := p.Style
	if style == "" {
		style = "a pragmatic, concise investment analyst"
	}
	return fmt.Sprintf("You are %s. Be concise and practical; avoid disclaimers.", style)
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// PersonaSet holds the current personas; safe for concurrent readers
// while a watcher goroutine reloads behind the lock.
type PersonaSet struct {
	path string

	mu     sync.RWMutex
	order  []string
	byName map[string]Persona
}

// builtin personas mirror the default ensemble when no file is configured.
func builtinPersonas() []Persona {
	return []Persona{
		{
			Name:  "buffett",
			Style: "a Warren Buffett-style value investor focused on durable competitive advantage, ROIC, debt, earnings stability and fair price",
		},
		{
			Name:  "munger",
			Style: "a Charlie Munger-style investor: blunt, analytical, fond of mental models, inversion and avoiding stupidity",
		},
	}
}

// LoadPersonas reads the YAML file at path; an empty path yields the
// built-in defaults.
func LoadPersonas(path string) (*PersonaSet, error) {
	set := &PersonaSet{path: path, byName: make(map[string]Persona)}
	if strings.TrimSpace(path) == "" {
		set.replace(builtinPersonas())
		return set, nil
	}
	if err := set.reload(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *PersonaSet) reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading personas file: %w", err)
	}
	var f personaFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parsing personas file: %w", err)
	}
	if len(f.Personas) == 0 {
		return fmt.Errorf("personas file %s defines no personas", s.path)
	}
	for _, p := range f.Personas {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("persona with empty name in %s", s.path)
		}
	}
	s.replace(f.Personas)
	return nil
}

func (s *PersonaSet) replace(personas []Persona) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.byName = make(map[string]Persona, len(personas))
	for _, p := range personas {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if _, dup := s.byName[name]; dup {
			continue
		}
		s.byName[name] = p
		s.order = append(s.order, name)
	}
}

// Get returns the persona by case-insensitive name.
func (s *PersonaSet) Get(name string) (Persona, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Names returns persona names in file order.
func (s *PersonaSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Watch reloads the file on change until stop is closed. No-op for the
// built-in set.
func (s *PersonaSet) Watch(stop <-chan struct{}) error {
	if strings.TrimSpace(s.path) == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// watch the directory: editors replace files rather than write in place
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}
	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.reload(); err != nil {
					logger.Warnf("[personas] reload failed: %v", err)
					continue
				}
				logger.Infof("[personas] reloaded %s (%d personas)", s.path, len(s.Names()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debugf("[personas] watcher error: %v", err)
			}
		}
	}()
	return nil
}
