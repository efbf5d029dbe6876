package models

// Config is the full set of configuration knobs named in spec §6, bound
// by viper in cmd/ and threaded down to every pipeline stage.
type Config struct {
	Ruleset Ruleset `mapstructure:"ruleset" yaml:"ruleset"`

	ShingleK int `mapstructure:"shingle_k" yaml:"shingle.k"`

	MinHashNumPerm int `mapstructure:"minhash_num_perm" yaml:"minhash.num_perm"`

	MinLines    int `mapstructure:"min_lines" yaml:"lsh.min_lines"`
	WindowSize  int `mapstructure:"window_size" yaml:"lsh.window_size"`
	WindowStride int `mapstructure:"window_stride" yaml:"lsh.stride"`

	RegionThreshold    float64 `mapstructure:"region_threshold" yaml:"lsh.region_threshold"`
	RegionMinSimilarity float64 `mapstructure:"region_min_similarity" yaml:"lsh.region_min_similarity"`
	LineThreshold      float64 `mapstructure:"line_threshold" yaml:"lsh.line_threshold"`
	LineMinSimilarity  float64 `mapstructure:"line_min_similarity" yaml:"lsh.line_min_similarity"`

	// MergeGapLines bounds how far apart two windows' line ranges may be
	// and still be merged into one lines region (default 5, spec 4.7).
	MergeGapLines int `mapstructure:"merge_gap_lines" yaml:"lsh.merge_gap_lines"`

	// VerifyOrderSensitive toggles the optional LCS verification pass
	// (enabled by default per spec 4.6).
	VerifyOrderSensitive bool `mapstructure:"verify" yaml:"lsh.verify"`

	IgnorePatterns     []string `mapstructure:"ignore_patterns" yaml:"ignore_patterns"`
	IgnoreFilePatterns []string `mapstructure:"ignore_file_patterns" yaml:"ignore_file_patterns"`

	// MaxValueLength bounds shingle value length before truncation
	// (default 50, spec 4.4 step 6).
	MaxValueLength int `mapstructure:"max_value_length" yaml:"shingle.max_value_length"`
}

// DefaultConfig returns the configuration spec §6 names as defaults.
func DefaultConfig() Config {
	return Config{
		Ruleset:             RulesetDefault,
		ShingleK:            3,
		MinHashNumPerm:      DefaultNumPerm,
		MinLines:            5,
		WindowSize:          20,
		WindowStride:        5,
		RegionThreshold:     0.85,
		RegionMinSimilarity: 0.85,
		LineThreshold:       0.80,
		LineMinSimilarity:   0.80,
		MergeGapLines:       5,
		VerifyOrderSensitive: true,
		MaxValueLength:      50,
	}
}

// MinShingles returns the minimum shingle count a window must have to be
// considered (spec 4.7: max(1, min_lines / k)).
func (c Config) MinShingles() int {
	v := c.MinLines / c.ShingleK
	if v < 1 {
		return 1
	}
	return v
}

// LSHThreshold caps the configured threshold at 0.98 per spec 4.6.
func LSHThreshold(configured float64) float64 {
	if configured > 0.98 {
		return 0.98
	}
	return configured
}
