// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the durable credential store for authvault.
//
// The store is a single JSON document mapping username to an account
// record. It is read fresh from disk at the start of every operation
// and rewritten whole on every mutation; there is no long-lived cache.
// Mutate wraps a load-mutate-save sequence in an exclusive lock so a
// concurrent caller (e.g. a service wrapper around the engine) cannot
// interleave partial writes.
//
// Loading never fails fatally. A missing, unreadable or corrupt file
// yields a fresh store containing only the well-known administrator
// with no password set and a conservative policy, so a damaged file
// can never lock operators out permanently.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/jeranaias/authvault/internal/rules"
	"github.com/jeranaias/authvault/internal/util"
)

// AdminUsername is the well-known administrator identity. It is created
// at bootstrap, may never be blocked, and always has the admin role.
const AdminUsername = "admin"

// storeFileMode keeps the credential file owner-only.
const storeFileMode = 0600

// Account is one credential record. Username is the map key in the
// persisted form and is case-sensitive.
type Account struct {
	Username string
	Digest   string // empty means no password set yet
	Admin    bool
	Blocked  bool
	Rules    rules.Rules
}

// HasPassword reports whether a password digest has been established.
func (a *Account) HasPassword() bool {
	return a.Digest != ""
}

// Snapshot is an in-memory copy of the full store, valid for one
// load-mutate-save sequence.
type Snapshot struct {
	accounts map[string]*Account
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{accounts: make(map[string]*Account)}
}

// Get returns the account for username, or nil if absent.
func (s *Snapshot) Get(username string) *Account {
	return s.accounts[username]
}

// Has reports whether username exists in the snapshot.
func (s *Snapshot) Has(username string) bool {
	_, ok := s.accounts[username]
	return ok
}

// Put inserts or replaces an account, keyed by its Username.
func (s *Snapshot) Put(a *Account) {
	s.accounts[a.Username] = a
}

// Len returns the number of accounts.
func (s *Snapshot) Len() int {
	return len(s.accounts)
}

// Usernames returns all usernames in sorted order.
func (s *Snapshot) Usernames() []string {
	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// File is a credential store backed by a single JSON file.
type File struct {
	path string

	// mu serializes every load-mutate-save sequence. The design is
	// single-user, but the whole-file rewrite would corrupt under
	// overlapping writers, so the store enforces exclusivity itself.
	mu sync.Mutex
}

// Open returns a store backed by the given path. The file is not
// touched until the first Load or Save.
func Open(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the store from disk. It never fails: any read or parse
// problem is absorbed and a fresh default store is returned instead.
// Accounts stored with the legacy boolean policy form are migrated to
// structured rules in memory; the structured form is persisted on the
// next Save.
func (f *File) Load() *Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked()
}

// Save serializes the full snapshot and rewrites the backing file
// atomically.
func (f *File) Save(snap *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveLocked(snap)
}

// Mutate runs fn against a freshly loaded snapshot and, when fn
// succeeds, writes the snapshot back. The store lock is held across
// the whole sequence.
func (f *File) Mutate(fn func(*Snapshot) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.loadLocked()
	if err := fn(snap); err != nil {
		return err
	}
	return f.saveLocked(snap)
}

func (f *File) loadLocked() *Snapshot {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return DefaultSnapshot()
	}

	var records map[string]accountRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return DefaultSnapshot()
	}

	snap := NewSnapshot()
	for username, rec := range records {
		snap.Put(&Account{
			Username: username,
			Digest:   rec.Password,
			Admin:    rec.Admin,
			Blocked:  rec.Blocked,
			Rules:    rec.Rules.Rules,
		})
	}
	return snap
}

func (f *File) saveLocked(snap *Snapshot) error {
	records := make(map[string]accountRecord, snap.Len())
	for name, a := range snap.accounts {
		records[name] = accountRecord{
			Password: a.Digest,
			Admin:    a.Admin,
			Blocked:  a.Blocked,
			Rules:    rulesField{a.Rules},
		}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode credential store: %w", err)
	}
	if err := util.AtomicWriteFile(f.path, data, storeFileMode); err != nil {
		return fmt.Errorf("failed to write credential store: %w", err)
	}
	return nil
}

// DefaultSnapshot returns the fail-safe store: only the well-known
// administrator, no password set, conservative policy.
func DefaultSnapshot() *Snapshot {
	snap := NewSnapshot()
	snap.Put(&Account{
		Username: AdminUsername,
		Admin:    true,
		Rules:    rules.Conservative(),
	})
	return snap
}
