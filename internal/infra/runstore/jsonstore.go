package runstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

const (
	defaultRunsDir = "runs"
	indexFile      = "index.jsonl"
)

type JSONStore struct {
	rootDir     string
	runsDirName string
	writeIndex  bool
	now         func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}

	s := &JSONStore{
		rootDir:     root,
		runsDirName: runsDir,
		writeIndex:  false,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*JSONStore)(nil)

func (s *JSONStore) dir() string {
	return filepath.Join(s.rootDir, s.runsDirName)
}

// Path returns the file of a saved run.
func (s *JSONStore) Path(id string) string {
	return filepath.Join(s.dir(), id+".json")
}

func (s *JSONStore) SaveRun(run domain.RunArtifact) (string, error) {
	dir := s.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	ts := run.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}
	modelPart := run.ModelName
	if strings.TrimSpace(modelPart) == "" {
		modelPart = strings.TrimSuffix(filepath.Base(run.ModelPath), filepath.Ext(run.ModelPath))
	}
	slug := slugify(modelPart)
	if slug == "" {
		slug = "run"
	}
	if run.Kind == domain.RunStudy {
		slug += "-study"
	}

	id := fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), slug)
	// Several runs can start within the same second (parameter studies, API).
	for n := 2; ; n++ {
		if _, err := os.Stat(s.Path(id)); errors.Is(err, os.ErrNotExist) {
			break
		}
		id = fmt.Sprintf("%s_%s-%d", ts.Format("20060102T150405Z"), slug, n)
	}
	toSave.ID = id
	path := s.Path(id)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, toSave)
	}

	return id, nil
}

type indexEntry struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Kind      string    `json:"kind"`
	Model     string    `json:"model"`
	StartedAt time.Time `json:"started_at"`
}

func (s *JSONStore) appendIndex(dir string, run domain.RunArtifact) error {
	line, err := json.Marshal(indexEntry{
		ID:        run.ID,
		File:      run.ID + ".json",
		Kind:      string(run.Kind),
		Model:     run.ModelName,
		StartedAt: run.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, indexFile)
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

func (s *JSONStore) LoadRun(id string) (domain.RunArtifact, error) {
	id = strings.TrimSuffix(filepath.Base(strings.TrimSpace(id)), ".json")
	if id == "" || id == "." {
		return domain.RunArtifact{}, &domain.OpError{
			Op:   "runstore.load",
			Kind: domain.KindNotFound,
			Err:  fmt.Errorf("empty run id: %w", domain.ErrNotFound),
		}
	}

	path := s.Path(id)
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindNotFound
			err = fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
		return domain.RunArtifact{}, &domain.OpError{
			Op:   "runstore.load",
			Kind: kind,
			Path: path,
			Err:  err,
		}
	}

	var run domain.RunArtifact
	if err := json.Unmarshal(b, &run); err != nil {
		return domain.RunArtifact{}, &domain.OpError{
			Op:   "runstore.decode",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	if run.ID == "" {
		run.ID = id
	}
	return run, nil
}

// LoadRaw returns the stored JSON of a run, for JSONPath queries.
func (s *JSONStore) LoadRaw(id string) ([]byte, error) {
	run, err := s.LoadRun(id)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path(run.ID))
}

// ListRuns returns saved runs, newest first. The index is used when present;
// otherwise the run files are scanned.
func (s *JSONStore) ListRuns() ([]domain.RunRef, error) {
	dir := s.dir()
	refs, err := s.readIndex(filepath.Join(dir, indexFile))
	if err != nil {
		refs, err = s.scan(dir)
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].StartedAt.Equal(refs[j].StartedAt) {
			return refs[i].ID > refs[j].ID
		}
		return refs[i].StartedAt.After(refs[j].StartedAt)
	})
	return refs, nil
}

func (s *JSONStore) readIndex(path string) ([]domain.RunRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []domain.RunRef
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e indexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		p := filepath.Join(filepath.Dir(path), e.File)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		refs = append(refs, domain.RunRef{
			ID:        e.ID,
			Path:      p,
			Kind:      domain.RunKind(e.Kind),
			ModelName: e.Model,
			StartedAt: e.StartedAt,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

func (s *JSONStore) scan(dir string) ([]domain.RunRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.OpError{
			Op:   "runstore.list",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.RunRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		run, err := s.LoadRun(id)
		if err != nil {
			continue
		}
		refs = append(refs, domain.RunRef{
			ID:        id,
			Path:      filepath.Join(dir, name),
			Kind:      run.Kind,
			ModelName: run.ModelName,
			StartedAt: run.StartedAt,
		})
	}
	return refs, nil
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
