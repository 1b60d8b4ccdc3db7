package jsonmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

const (
	defaultModelsDir = "models"
	Ext              = ".json"
)

// Store reads and writes models as JSON files.
type Store struct {
	modelsDir string
}

type Option func(*Store)

func WithModelsDir(dir string) Option {
	return func(s *Store) {
		if strings.TrimSpace(dir) != "" {
			s.modelsDir = dir
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{modelsDir: defaultModelsDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ModelStore = (*Store)(nil)

// fileModel is the on-disk layout. Fields are declared in ASCII key order so the
// output has sorted keys.
type fileModel struct {
	E            float64 `json:"E"`
	A            float64 `json:"a"`
	B            float64 `json:"b"`
	BEnd         float64 `json:"bend"`
	ElSizeFactor float64 `json:"el_size_factor"`
	ElType       int     `json:"el_type"`
	H            float64 `json:"h"`
	ParamSteps   int     `json:"paramSteps"`
	Q            float64 `json:"q"`
	QEnd         float64 `json:"qend"`
	T            float64 `json:"t"`
	V            float64 `json:"v"`
	Version      int     `json:"version"`
	W            float64 `json:"w"`
}

// loadModel tells missing keys from zero values. Integers are read as numbers
// so that files written as 10.0 still load.
type loadModel struct {
	E            *float64 `json:"E"`
	A            *float64 `json:"a"`
	B            *float64 `json:"b"`
	BEnd         *float64 `json:"bend"`
	ElSizeFactor *float64 `json:"el_size_factor"`
	ElType       *float64 `json:"el_type"`
	H            *float64 `json:"h"`
	ParamSteps   *float64 `json:"paramSteps"`
	Q            *float64 `json:"q"`
	QEnd         *float64 `json:"qend"`
	T            *float64 `json:"t"`
	V            *float64 `json:"v"`
	Version      *float64 `json:"version"`
	W            *float64 `json:"w"`
}

// Marshal encodes a model with sorted keys and 4-space indentation.
func Marshal(in domain.InputData) ([]byte, error) {
	fm := fileModel{
		E:            in.E,
		A:            in.A,
		B:            in.B,
		BEnd:         in.BEnd,
		ElSizeFactor: in.ElSizeFactor,
		ElType:       int(in.ElType),
		H:            in.H,
		ParamSteps:   in.ParamSteps,
		Q:            in.Q,
		QEnd:         in.QEnd,
		T:            in.T,
		V:            in.V,
		Version:      in.Version,
		W:            in.W,
	}
	if fm.Version == 0 {
		fm.Version = domain.CurrentVersion
	}
	return json.MarshalIndent(fm, "", "    ")
}

// Unmarshal decodes a model; every key is required.
func Unmarshal(b []byte) (domain.InputData, error) {
	var lm loadModel
	if err := json.Unmarshal(b, &lm); err != nil {
		return domain.InputData{}, err
	}

	var missing []string
	num := func(key string, p *float64) float64 {
		if p == nil {
			missing = append(missing, key)
			return 0
		}
		return *p
	}
	var notInt []string
	integer := func(key string, p *float64) int {
		v := num(key, p)
		if v != math.Trunc(v) {
			notInt = append(notInt, key)
		}
		return int(v)
	}

	in := domain.InputData{
		E:            num("E", lm.E),
		A:            num("a", lm.A),
		B:            num("b", lm.B),
		BEnd:         num("bend", lm.BEnd),
		ElSizeFactor: num("el_size_factor", lm.ElSizeFactor),
		ElType:       domain.ElementType(integer("el_type", lm.ElType)),
		H:            num("h", lm.H),
		ParamSteps:   integer("paramSteps", lm.ParamSteps),
		Q:            num("q", lm.Q),
		QEnd:         num("qend", lm.QEnd),
		T:            num("t", lm.T),
		V:            num("v", lm.V),
		Version:      integer("version", lm.Version),
		W:            num("w", lm.W),
	}

	if len(missing) > 0 {
		return domain.InputData{}, fmt.Errorf("missing keys: %s", strings.Join(missing, ", "))
	}
	if len(notInt) > 0 {
		return domain.InputData{}, fmt.Errorf("keys must be integers: %s", strings.Join(notInt, ", "))
	}
	if in.Version > domain.CurrentVersion {
		return domain.InputData{}, fmt.Errorf("model version %d is newer than supported version %d", in.Version, domain.CurrentVersion)
	}
	return in, nil
}

func (s *Store) LoadModel(path string) (domain.InputData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.InputData{}, &domain.OpError{
			Op:   "jsonmodel.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	in, err := Unmarshal(b)
	if err != nil {
		return domain.InputData{}, &domain.OpError{
			Op:   "jsonmodel.load",
			Kind: domain.KindInvalidModel,
			Path: path,
			Err:  fmt.Errorf("%w: %v", domain.ErrInvalidModel, err),
		}
	}
	return in, nil
}

func (s *Store) SaveModel(path string, in domain.InputData) error {
	b, err := Marshal(in)
	if err != nil {
		return &domain.OpError{
			Op:   "jsonmodel.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &domain.OpError{
				Op:   "jsonmodel.mkdir",
				Kind: domain.KindExecution,
				Path: dir,
				Err:  err,
			}
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return &domain.OpError{
			Op:   "jsonmodel.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "jsonmodel.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}

func (s *Store) ListModels(root string) ([]domain.ModelRef, error) {
	dir := filepath.Join(root, s.modelsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "jsonmodel.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ModelRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, Ext) {
			continue
		}
		refs = append(refs, domain.ModelRef{
			Name: strings.TrimSuffix(name, Ext),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// ResolvePath turns a bare model name into a path under the models directory.
// Paths with a directory or an extension are returned unchanged.
func (s *Store) ResolvePath(root, nameOrPath string) string {
	p := strings.TrimSpace(nameOrPath)
	if p == "" {
		return ""
	}
	if strings.ContainsAny(p, `/\`) || filepath.Ext(p) != "" {
		return p
	}
	return filepath.Join(root, s.modelsDir, p+Ext)
}
