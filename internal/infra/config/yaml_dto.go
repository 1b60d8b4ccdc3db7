package config

// YAMLConfig mirrors pnfem.yaml. Pointer fields distinguish "unset" from zero.
type YAMLConfig struct {
	PNFEM struct {
		Paths   YAMLPaths   `yaml:"paths"`
		Solver  YAMLSolver  `yaml:"solver"`
		Checks  YAMLChecks  `yaml:"checks"`
		Study   YAMLStudy   `yaml:"study"`
		Logging YAMLLogging `yaml:"logging"`
	} `yaml:"pnfem"`
}

type YAMLPaths struct {
	ModelsDir  string `yaml:"models_dir"`
	RunsDir    string `yaml:"runs_dir"`
	FiguresDir string `yaml:"figures_dir"`
	VTKDir     string `yaml:"vtk_dir"`
	ExportsDir string `yaml:"exports_dir"`
}

type YAMLSolver struct {
	MaxDofs       *int     `yaml:"max_dofs"`
	DenseLimit    *int     `yaml:"dense_limit"`
	CGTolerance   *float64 `yaml:"cg_tolerance"`
	CGMaxIter     *int     `yaml:"cg_max_iter"`
	Magnification *float64 `yaml:"magnification"`
}

type YAMLChecks struct {
	MaxVonMises     *float64 `yaml:"max_von_mises"`
	MaxDisplacement *float64 `yaml:"max_displacement"`

	JSONPath map[string]YAMLJSONPathCheck `yaml:"jsonpath"`
}

type YAMLJSONPathCheck struct {
	Exists bool     `yaml:"exists"`
	Lt     *float64 `yaml:"lt"`
	Gt     *float64 `yaml:"gt"`
}

type YAMLStudy struct {
	Metrics map[string]string `yaml:"metrics"`
	Plot    *bool             `yaml:"plot"`
}

type YAMLLogging struct {
	MaxSizeMB  *int  `yaml:"max_size_mb"`
	MaxBackups *int  `yaml:"max_backups"`
	MaxAgeDays *int  `yaml:"max_age_days"`
	Compress   *bool `yaml:"compress"`
}
