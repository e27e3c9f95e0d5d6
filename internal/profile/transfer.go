package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filestore"
	"go.yaml.in/yaml/v3"
)

const (
	exportVersion      = 1
	defaultImportName  = "Imported Profile"
	importedNameFormat = "%s (Imported %d)"
)

// Strategy decides what Import does with a profile whose name already
// exists (compared case-insensitively).
type Strategy string

const (
	StrategyRename    Strategy = "rename"
	StrategySkip      Strategy = "skip"
	StrategyOverwrite Strategy = "overwrite"
)

// ExportItem is one profile in an export file.
type ExportItem struct {
	Name      string           `yaml:"name"`
	Config    filestore.Config `yaml:"config"`
	CreatedAt *time.Time       `yaml:"created_at,omitempty"`
	UpdatedAt *time.Time       `yaml:"updated_at,omitempty"`
}

// ExportPayload is the document written by Export.
type ExportPayload struct {
	Version        int          `yaml:"version"`
	ExportedAt     time.Time    `yaml:"exported_at"`
	IncludeSecrets bool         `yaml:"include_secrets"`
	Profiles       []ExportItem `yaml:"profiles"`
}

// ImportResult counts what Import did.
type ImportResult struct {
	Imported    int `yaml:"imported" json:"imported"`
	Overwritten int `yaml:"overwritten" json:"overwritten"`
	Skipped     int `yaml:"skipped" json:"skipped"`
	Renamed     int `yaml:"renamed" json:"renamed"`
}

// Export returns every profile in order. Secret key and session token are
// blanked unless includeSecrets is set.
func (s *Store) Export(includeSecrets bool) ExportPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]ExportItem, 0, len(s.state.Profiles))
	for _, p := range s.state.Profiles {
		cfg := p.Config
		if !includeSecrets {
			cfg.SecretKey = ""
			cfg.SessionToken = ""
		}
		created, updated := p.CreatedAt, p.UpdatedAt
		items = append(items, ExportItem{Name: p.Name, Config: cfg, CreatedAt: &created, UpdatedAt: &updated})
	}

	return ExportPayload{
		Version:        exportVersion,
		ExportedAt:     s.now(),
		IncludeSecrets: includeSecrets,
		Profiles:       items,
	}
}

// MarshalExport encodes Export(includeSecrets) as YAML.
func (s *Store) MarshalExport(includeSecrets bool) ([]byte, error) {
	payload := s.Export(includeSecrets)
	data, err := yaml.Marshal(&payload)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindSerialization, "failed to encode export", err)
	}
	return data, nil
}

// ParseImport decodes an export document, or a bare list of items, and
// normalizes every config. YAML and JSON are both accepted.
func ParseImport(data []byte) ([]ExportItem, error) {
	var payload ExportPayload
	items := []ExportItem(nil)
	if err := yaml.Unmarshal(data, &payload); err == nil && payload.Profiles != nil {
		items = payload.Profiles
	} else if err := yaml.Unmarshal(data, &items); err != nil || items == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "invalid import file: missing profiles list")
	}

	if len(items) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "import file has no profiles")
	}

	out := make([]ExportItem, len(items))
	for i, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			item.Name = defaultImportName
		}
		item.Config.Normalize()
		if err := item.Config.Validate(); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("profile %q", item.Name), err)
		}
		out[i] = item
	}
	return out, nil
}

// Import adds the profiles in data. Nothing changes when data is invalid.
// An empty strategy means StrategyRename.
func (s *Store) Import(data []byte, strategy Strategy) (ImportResult, error) {
	if strategy == "" {
		strategy = StrategyRename
	}
	switch strategy {
	case StrategyRename, StrategySkip, StrategyOverwrite:
	default:
		return ImportResult{}, errs.New(errs.ErrKindInvalidInput, "unknown import strategy "+string(strategy))
	}

	items, err := ParseImport(data)
	if err != nil {
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res ImportResult
	now := s.now()
	names := make(map[string]bool, len(s.state.Profiles))
	for _, p := range s.state.Profiles {
		names[strings.ToLower(p.Name)] = true
	}

	for _, item := range items {
		match := s.indexOfName(item.Name)

		if match >= 0 {
			switch strategy {
			case StrategySkip:
				res.Skipped++
				continue
			case StrategyOverwrite:
				p := &s.state.Profiles[match]
				p.Name = item.Name
				p.Config = item.Config
				p.UpdatedAt = now
				delete(s.tests, p.ID)
				res.Imported++
				res.Overwritten++
				continue
			}
		}

		name := item.Name
		if match >= 0 {
			name = uniqueName(names, item.Name)
			res.Renamed++
		} else {
			names[strings.ToLower(name)] = true
		}

		s.state.Profiles = append(s.state.Profiles, Profile{
			ID:        s.newID(),
			Name:      name,
			Config:    item.Config,
			CreatedAt: now,
			UpdatedAt: now,
		})
		res.Imported++
	}

	if s.state.ActiveProfileID == "" && len(s.state.Profiles) > 0 {
		s.state.ActiveProfileID = s.state.Profiles[0].ID
	}
	return res, s.save()
}

func (s *Store) indexOfName(name string) int {
	for i, p := range s.state.Profiles {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// uniqueName returns base, or "base (Imported N)" for the first free N,
// and reserves the result in taken.
func uniqueName(taken map[string]bool, base string) string {
	if !taken[strings.ToLower(base)] {
		taken[strings.ToLower(base)] = true
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf(importedNameFormat, base, i)
		if !taken[strings.ToLower(candidate)] {
			taken[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}
