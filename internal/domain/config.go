package domain

// Config represents the workspace configuration loaded from pnfem.yaml.
type Config struct {
	Paths   PathsConfig
	Solver  SolverConfig
	Checks  ChecksConfig
	Study   StudyConfig
	Logging LoggingConfig
}

type PathsConfig struct {
	ModelsDir  string
	RunsDir    string
	FiguresDir string
	VTKDir     string
	ExportsDir string
}

type SolverConfig struct {
	// MaxDofs rejects meshes with more degrees of freedom.
	MaxDofs int
	// DenseLimit is the largest number of free dofs solved with a dense factorization.
	DenseLimit  int
	CGTolerance float64
	CGMaxIter   int
	// Magnification scales displacements in the deformed-mesh figure.
	Magnification float64
}

// JSONPathCheck is a bound on the value found at a JSONPath in a run.
type JSONPathCheck struct {
	Exists bool
	Lt     *float64
	Gt     *float64
}

type ChecksConfig struct {
	MaxVonMises     *float64
	MaxDisplacement *float64
	JSONPath        map[string]JSONPathCheck
}

type StudyConfig struct {
	// Metrics maps a metric name to a JSONPath evaluated on every step's output.
	Metrics map[string]string
	Plot    bool
}

type LoggingConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig provides sane defaults if pnfem.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			ModelsDir:  "models",
			RunsDir:    "runs",
			FiguresDir: "figures",
			VTKDir:     "vtks",
			ExportsDir: "exports",
		},
		Solver: SolverConfig{
			MaxDofs:       400000,
			DenseLimit:    2500,
			CGTolerance:   1e-10,
			CGMaxIter:     20000,
			Magnification: 1000,
		},
		Checks: ChecksConfig{
			JSONPath: map[string]JSONPathCheck{},
		},
		Study: StudyConfig{
			Metrics: map[string]string{},
			Plot:    true,
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// WorkspaceSpec describes a workspace to initialize.
type WorkspaceSpec struct {
	Root string
}
