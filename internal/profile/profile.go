// Package profile keeps named bucket connections in a YAML file.
//
// A Store holds an ordered list of profiles and at most one active profile.
// Every mutation is written back to disk when the store was opened from a
// file. Profiles can be exported (optionally without secrets) and imported
// again with a conflict strategy for duplicate names.
package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koustreak/s3studio/internal/client"
	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filestore"
	"go.yaml.in/yaml/v3"
)

const fileVersion = 1

// Profile is one saved connection.
type Profile struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	Config    filestore.Config `yaml:"config"`
	CreatedAt time.Time        `yaml:"created_at"`
	UpdatedAt time.Time        `yaml:"updated_at"`
}

// Credentials returns the client credentials for p.
func (p Profile) Credentials() client.Credentials {
	return client.CredentialsFrom(p.Config)
}

// Patch lists the fields Update changes; nil fields are left alone.
type Patch struct {
	Name         *string
	Endpoint     *string
	AccessKey    *string
	SecretKey    *string
	SessionToken *string
	Region       *string
	Bucket       *string
	UseSSL       *bool
}

func (p Patch) touchesConfig() bool {
	return p.Endpoint != nil || p.AccessKey != nil || p.SecretKey != nil ||
		p.SessionToken != nil || p.Region != nil || p.Bucket != nil || p.UseSSL != nil
}

type fileState struct {
	Version         int       `yaml:"version"`
	ActiveProfileID string    `yaml:"active_profile_id,omitempty"`
	Profiles        []Profile `yaml:"profiles"`
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	path  string
	state fileState
	tests map[string]client.ConnectionTestResult

	now   func() time.Time
	newID func() string
}

// NewMemory returns a store that is never written to disk.
func NewMemory() *Store {
	return &Store{
		state: fileState{Version: fileVersion},
		tests: map[string]client.ConnectionTestResult{},
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Open loads the store at path. A missing file yields an empty store that
// will be created on the first change.
func Open(path string) (*Store, error) {
	s := NewMemory()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindBackend, "failed to read profiles", err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse profiles "+path, err)
	}
	if s.state.Version == 0 {
		s.state.Version = fileVersion
	}
	return s, nil
}

// List returns all profiles in insertion order.
func (s *Store) List() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Profile(nil), s.state.Profiles...)
}

// Get returns the profile with id.
func (s *Store) Get(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Profile{}, notFound(id)
	}
	return s.state.Profiles[i], nil
}

// Add saves a new profile and returns it.
func (s *Store) Add(name string, cfg filestore.Config) (Profile, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Profile{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, errs.New(errs.ErrKindInvalidInput, "profile name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := Profile{ID: s.newID(), Name: name, Config: cfg, CreatedAt: now, UpdatedAt: now}
	s.state.Profiles = append(s.state.Profiles, p)
	return p, s.save()
}

// Update applies patch to the profile with id.
func (s *Store) Update(id string, patch Patch) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Profile{}, notFound(id)
	}
	p := s.state.Profiles[i]

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Profile{}, errs.New(errs.ErrKindInvalidInput, "profile name is required")
		}
		p.Name = name
	}
	if patch.touchesConfig() {
		cfg := p.Config
		setString(&cfg.Endpoint, patch.Endpoint)
		setString(&cfg.AccessKey, patch.AccessKey)
		setString(&cfg.SecretKey, patch.SecretKey)
		setString(&cfg.SessionToken, patch.SessionToken)
		setString(&cfg.Region, patch.Region)
		setString(&cfg.Bucket, patch.Bucket)
		if patch.UseSSL != nil {
			cfg.UseSSL = *patch.UseSSL
		}
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			return Profile{}, err
		}
		p.Config = cfg
		delete(s.tests, id)
	}
	p.UpdatedAt = s.now()

	s.state.Profiles[i] = p
	return p, s.save()
}

// Delete removes the profile with id. If it was active, the first
// remaining profile becomes active.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	s.state.Profiles = append(s.state.Profiles[:i], s.state.Profiles[i+1:]...)
	delete(s.tests, id)

	if s.state.ActiveProfileID == id {
		s.state.ActiveProfileID = ""
		if len(s.state.Profiles) > 0 {
			s.state.ActiveProfileID = s.state.Profiles[0].ID
		}
	}
	return s.save()
}

// SetActive marks id as the active profile. An empty id clears it.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.indexOf(id) < 0 {
		return notFound(id)
	}
	s.state.ActiveProfileID = id
	return s.save()
}

// Active returns the active profile, if any.
func (s *Store) Active() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.state.ActiveProfileID)
	if i < 0 {
		return Profile{}, false
	}
	return s.state.Profiles[i], true
}

// RecordTest remembers the last connection test of a profile. Results are
// not persisted.
func (s *Store) RecordTest(id string, res client.ConnectionTestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests[id] = res
}

// LastTest returns the last recorded connection test of a profile.
func (s *Store) LastTest(id string) (client.ConnectionTestResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.tests[id]
	return res, ok
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.state.Profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// save writes the state through a temp file; callers hold s.mu.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return errs.Wrap(errs.ErrKindSerialization, "failed to encode profiles", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errs.Wrap(errs.ErrKindBackend, "failed to create profile dir", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errs.Wrap(errs.ErrKindBackend, "failed to write profiles", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errs.Wrap(errs.ErrKindBackend, "failed to replace profiles", err)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func notFound(id string) error {
	return errs.New(errs.ErrKindNotFound, "profile "+id+" not found")
}
