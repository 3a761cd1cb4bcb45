package types

// Config is the complete configuration for one compression run. It mirrors
// the teacher's root Config: one struct per concern, YAML tags throughout,
// defaults applied by internal/config before validation.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Entropy   EntropyConfig   `yaml:"entropy"`
	Container ContainerConfig `yaml:"container"`
}

// AppConfig contains process-wide settings.
type AppConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`  // trace, debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json, text
}

// PipelineConfig configures the extraction/encoding pipeline (§6 knobs).
type PipelineConfig struct {
	MinSupport         int  `yaml:"min_support"`
	BinaryIP           bool `yaml:"binary_ip"`
	WordDictionaries   bool `yaml:"word_dictionaries"`
	WordDictMinFreq    int  `yaml:"word_dict_min_freq"`
	BWT                bool `yaml:"bwt"`
	BWTBlockSizeBytes  int  `yaml:"bwt_block_size_bytes"`
}

// EntropyConfig configures the outer entropy coder (§4.5).
type EntropyConfig struct {
	Algorithm    string `yaml:"algorithm"` // zstd, lz4, snappy, none
	Level        int    `yaml:"level"`
	DictPath     string `yaml:"dict_path"`
	DictID       string `yaml:"dict_id"`
}

// ContainerConfig configures container I/O.
type ContainerConfig struct {
	OutputPath string `yaml:"output_path"`
}
