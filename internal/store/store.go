// SPDX-License-Identifier: BSD-3-Clause

// Package store implements the on-disk profile store. It persists fan
// profiles, LED color profiles, and global profiles under a directory
// tree, normalizes and validates documents on load, and tracks the active
// global profile as a relative symlink.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tuxedocomputers/tailord/internal/model"
)

// Namespace selects one of the store's three profile kinds.
type Namespace int

const (
	NamespaceFan Namespace = iota
	NamespaceLED
	NamespaceGlobal
)

func (n Namespace) dirName() string {
	switch n {
	case NamespaceFan:
		return "fan"
	case NamespaceLED:
		return "keyboard"
	case NamespaceGlobal:
		return "profiles"
	default:
		panic(fmt.Sprintf("store: unknown namespace %d", n))
	}
}

func (n Namespace) String() string {
	switch n {
	case NamespaceFan:
		return "fan"
	case NamespaceLED:
		return "led"
	case NamespaceGlobal:
		return "global"
	default:
		return "unknown"
	}
}

const activeProfileFile = "active_profile.json"

// Store is the on-disk profile store rooted at one directory. All
// mutating operations are serialized through mu since store files are
// shared between transport handlers and the coordinator.
type Store struct {
	root   string
	logger *slog.Logger

	mu sync.Mutex

	watchMu  sync.Mutex
	watchers map[Namespace][]chan struct{}
}

// New creates the store's directory tree (if absent) rooted at root and
// returns a ready-to-use Store.
func New(root string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		root:     root,
		logger:   logger,
		watchers: make(map[Namespace][]chan struct{}),
	}

	for _, ns := range []Namespace{NamespaceFan, NamespaceLED, NamespaceGlobal} {
		if err := os.MkdirAll(s.dir(ns), 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating %s directory: %v", ErrValidation, ns, err)
		}
	}
	return s, nil
}

func (s *Store) dir(ns Namespace) string {
	return filepath.Join(s.root, ns.dirName())
}

// Watch returns a best-effort, coalesced notification channel for
// mutations to namespace: each channel holds at most one pending
// notification and further mutations are dropped until it is read.
// internal/coordinator watches the fan and LED namespaces and turns each
// notification into a coalesced reload request.
func (s *Store) Watch(ns Namespace) <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.watchMu.Lock()
	s.watchers[ns] = append(s.watchers[ns], ch)
	s.watchMu.Unlock()

	return ch
}

func (s *Store) notify(ns Namespace) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, ch := range s.watchers[ns] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// addRaw parse-validates nothing itself; callers validate the typed
// document before calling, then pass its canonical re-serialization
// through here for the atomic write.
func (s *Store) addRaw(ns Namespace, name string, data []byte) error {
	fileName, err := normalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir(ns), fileName)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("store: writing %s/%s: %w", ns, name, err)
	}
	s.notify(ns)
	return nil
}

func (s *Store) getRaw(ns Namespace, name string) ([]byte, error) {
	fileName, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir(ns), fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, ns, name)
		}
		return nil, fmt.Errorf("store: reading %s/%s: %w", ns, name, err)
	}
	return data, nil
}

// listRaw enumerates stored names in namespace ns. Entries whose file name
// doesn't end in ".json" are skipped with a warning rather than failing
// the whole listing.
func (s *Store) listRaw(ns Namespace) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir(ns))
	if err != nil {
		return nil, fmt.Errorf("store: listing %s: %w", ns, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == activeProfileFile && ns == NamespaceGlobal {
			continue
		}
		name, ok := stripJSONSuffix(entry.Name())
		if !ok {
			s.logger.Warn("store: skipping unknown file type", "namespace", ns.String(), "file", entry.Name())
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) removeRaw(ns Namespace, name string) error {
	fileName, err := normalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir(ns), fileName)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, ns, name)
		}
		return fmt.Errorf("store: removing %s/%s: %w", ns, name, err)
	}
	s.notify(ns)
	return nil
}

// renameFile fails if to already exists, then moves from to to within ns.
// Callers of the exported Rename* wrappers must already have rewritten
// any referring global profiles before calling this.
func (s *Store) renameFile(ns Namespace, from, to string) error {
	fromFile, err := normalizeName(from)
	if err != nil {
		return err
	}
	toFile, err := normalizeName(to)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	toPath := filepath.Join(s.dir(ns), toFile)
	if _, err := os.Stat(toPath); err == nil {
		return fmt.Errorf("%w: %s/%s", ErrConflict, ns, to)
	}

	fromPath := filepath.Join(s.dir(ns), fromFile)
	if err := os.Rename(fromPath, toPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, ns, from)
		}
		return fmt.Errorf("store: renaming %s/%s to %s: %w", ns, from, to, err)
	}
	s.notify(ns)
	return nil
}

func (s *Store) copyFile(ns Namespace, from, to string) error {
	fromFile, err := normalizeName(from)
	if err != nil {
		return err
	}
	toFile, err := normalizeName(to)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	toPath := filepath.Join(s.dir(ns), toFile)
	if _, err := os.Stat(toPath); err == nil {
		return fmt.Errorf("%w: %s/%s", ErrConflict, ns, to)
	}

	data, err := os.ReadFile(filepath.Join(s.dir(ns), fromFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, ns, from)
		}
		return fmt.Errorf("store: reading %s/%s: %w", ns, from, err)
	}
	if err := writeFileAtomic(toPath, data); err != nil {
		return fmt.Errorf("store: copying %s/%s to %s: %w", ns, from, to, err)
	}
	s.notify(ns)
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory as path
// and renames it into place, so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// --- Fan profiles ---

// AddFanProfile parse-validates raw as a FanProfile, normalizes it, and
// writes the canonical re-serialization atomically.
func (s *Store) AddFanProfile(name string, raw []byte) error {
	var profile model.FanProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("%w: fan profile %q: %v", ErrValidation, name, err)
	}
	normalized, err := normalizeFanProfile(name, profile, s.logger)
	if err != nil {
		return err
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("store: marshaling fan profile %q: %w", name, err)
	}
	return s.addRaw(NamespaceFan, name, data)
}

// GetFanProfile loads and normalizes the named fan profile.
func (s *Store) GetFanProfile(name string) (model.FanProfile, error) {
	raw, err := s.getRaw(NamespaceFan, name)
	if err != nil {
		return nil, err
	}
	var profile model.FanProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("%w: fan profile %q: %v", ErrValidation, name, err)
	}
	return normalizeFanProfile(name, profile, s.logger)
}

func (s *Store) ListFanProfiles() ([]string, error) { return s.listRaw(NamespaceFan) }

func (s *Store) RemoveFanProfile(name string) error { return s.removeRaw(NamespaceFan, name) }

// RenameFanProfile fails if to already exists, rewrites every global
// profile referencing from so it references to, then moves the file.
func (s *Store) RenameFanProfile(from, to string) ([]string, error) {
	return s.renameReferenced(NamespaceFan, from, to)
}

func (s *Store) CopyFanProfile(from, to string) error {
	return s.copyFile(NamespaceFan, from, to)
}

// --- LED (color) profiles ---

func (s *Store) AddLedProfile(name string, raw []byte) error {
	var profile model.ColorProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("%w: led profile %q: %v", ErrValidation, name, err)
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("store: marshaling led profile %q: %w", name, err)
	}
	return s.addRaw(NamespaceLED, name, data)
}

func (s *Store) GetLedProfile(name string) (model.ColorProfile, error) {
	raw, err := s.getRaw(NamespaceLED, name)
	if err != nil {
		return model.ColorProfile{}, err
	}
	var profile model.ColorProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return model.ColorProfile{}, fmt.Errorf("%w: led profile %q: %v", ErrValidation, name, err)
	}
	return profile, nil
}

func (s *Store) ListLedProfiles() ([]string, error) { return s.listRaw(NamespaceLED) }

func (s *Store) RemoveLedProfile(name string) error { return s.removeRaw(NamespaceLED, name) }

func (s *Store) RenameLedProfile(from, to string) ([]string, error) {
	return s.renameReferenced(NamespaceLED, from, to)
}

func (s *Store) CopyLedProfile(from, to string) error {
	return s.copyFile(NamespaceLED, from, to)
}

// --- Global profiles ---

func (s *Store) AddGlobalProfile(name string, raw []byte) error {
	var profile model.GlobalProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("%w: global profile %q: %v", ErrValidation, name, err)
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("store: marshaling global profile %q: %w", name, err)
	}
	return s.addRaw(NamespaceGlobal, name, data)
}

func (s *Store) GetGlobalProfile(name string) (model.GlobalProfile, error) {
	raw, err := s.getRaw(NamespaceGlobal, name)
	if err != nil {
		return model.GlobalProfile{}, err
	}
	var profile model.GlobalProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return model.GlobalProfile{}, fmt.Errorf("%w: global profile %q: %v", ErrValidation, name, err)
	}
	return profile, nil
}

func (s *Store) ListGlobalProfiles() ([]string, error) { return s.listRaw(NamespaceGlobal) }

func (s *Store) RemoveGlobalProfile(name string) error { return s.removeRaw(NamespaceGlobal, name) }

// RenameGlobalProfile fails if to already exists; if from is the active
// profile, the active pointer is updated to to as part of the same call
// (the caller is still responsible for triggering a reload afterward).
func (s *Store) RenameGlobalProfile(from, to string) error {
	active, err := s.GetActiveProfileName()
	wasActive := err == nil && active == from

	if err := s.renameFile(NamespaceGlobal, from, to); err != nil {
		return err
	}

	if wasActive {
		if err := s.SetActiveProfileName(to); err != nil {
			return fmt.Errorf("store: renamed active global profile but failed updating pointer: %w", err)
		}
	}
	return nil
}

func (s *Store) CopyGlobalProfile(from, to string) error {
	return s.copyFile(NamespaceGlobal, from, to)
}

// renameReferenced renames a fan or LED profile and rewrites every global
// profile that names it, completing the rewrites before moving the
// renamed file so a failed move never leaves a global profile referencing
// a name that no longer exists without also failing outright.
func (s *Store) renameReferenced(ns Namespace, from, to string) ([]string, error) {
	if ns == NamespaceGlobal {
		panic("store: renameReferenced called with NamespaceGlobal")
	}

	toFile, err := normalizeName(to)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(filepath.Join(s.dir(ns), toFile)); statErr == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrConflict, ns, to)
	}

	names, err := s.ListGlobalProfiles()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		profile, err := s.GetGlobalProfile(name)
		if err != nil {
			s.logger.Warn("store: skipping unreadable global profile during rename scan", "name", name, "error", err)
			continue
		}
		if !rewriteReferences(&profile, ns, from, to) {
			continue
		}
		data, err := json.Marshal(profile)
		if err != nil {
			return nil, fmt.Errorf("store: marshaling updated global profile %q: %w", name, err)
		}
		if err := s.addRaw(NamespaceGlobal, name, data); err != nil {
			return nil, fmt.Errorf("store: rewriting global profile %q during rename: %w", name, err)
		}
	}

	if err := s.renameFile(ns, from, to); err != nil {
		return nil, err
	}
	return s.listRaw(ns)
}

func rewriteReferences(profile *model.GlobalProfile, ns Namespace, from, to string) bool {
	changed := false
	switch ns {
	case NamespaceFan:
		for i, name := range profile.Fans {
			if name == from {
				profile.Fans[i] = to
				changed = true
			}
		}
	case NamespaceLED:
		for i, assignment := range profile.Leds {
			if assignment.Profile == from {
				profile.Leds[i].Profile = to
				changed = true
			}
		}
	}
	return changed
}

// --- Active profile pointer ---

// SetActiveProfileName verifies that name resolves to an existing global
// profile, then atomically repoints the active_profile.json symlink at
// profiles/<name>.json.
func (s *Store) SetActiveProfileName(name string) error {
	if _, err := s.GetGlobalProfile(name); err != nil {
		return err
	}
	fileName, err := normalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := filepath.Join(NamespaceGlobal.dirName(), fileName)
	linkPath := filepath.Join(s.root, activeProfileFile)

	tmp := linkPath + ".tmp"
	os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("store: creating active profile symlink: %w", err)
	}
	if err := os.Rename(tmp, linkPath); err != nil {
		return fmt.Errorf("store: activating profile %q: %w", name, err)
	}
	return nil
}

// GetActiveProfileName reads the active pointer and returns the profile
// name (the link target's base name minus ".json").
func (s *Store) GetActiveProfileName() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	linkPath := filepath.Join(s.root, activeProfileFile)
	target, err := os.Readlink(linkPath)
	if err != nil {
		return "", fmt.Errorf("%w: no active profile set: %v", ErrNotFound, err)
	}
	name, ok := stripJSONSuffix(filepath.Base(target))
	if !ok {
		return "", fmt.Errorf("%w: active profile link target %q is not a profile file", ErrValidation, target)
	}
	return name, nil
}
