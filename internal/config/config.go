package config

import (
	"fmt"
	"os"
	"strconv"

	"logpress/pkg/errors"
	"logpress/pkg/types"

	"gopkg.in/yaml.v2"
)

// LoadConfig loads configuration from an optional YAML file, applies
// defaults, overlays environment variables, and validates the result
// (§6, §1 ambient config stack — three-stage shape grounded on the
// teacher's LoadConfig/applyDefaults/ValidateConfig pipeline).
func LoadConfig(configFile string) (*types.Config, error) {
	config := &types.Config{}

	if configFile != "" {
		if err := loadConfigFile(configFile, config); err != nil {
			fmt.Printf("Warning: failed to load config file %s: %v\n", configFile, err)
		} else {
			fmt.Printf("Loaded configuration from file: %s\n", configFile)
		}
	}

	applyDefaults(config)
	applyEnvironmentOverrides(config)

	if err := ValidateConfig(config); err != nil {
		return nil, errors.ConfigError("load_config", err.Error())
	}

	return config, nil
}

func loadConfigFile(path string, config *types.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

// applyDefaults fills zero-value fields with the documented defaults
// (§6). Explicitly set fields are never overwritten.
func applyDefaults(config *types.Config) {
	if config.App.Name == "" {
		config.App.Name = "logpress"
	}
	if config.App.LogLevel == "" {
		config.App.LogLevel = "info"
	}
	if config.App.LogFormat == "" {
		config.App.LogFormat = "text"
	}

	if config.Pipeline.MinSupport <= 0 {
		config.Pipeline.MinSupport = 3
	}
	if config.Pipeline.WordDictMinFreq <= 0 {
		config.Pipeline.WordDictMinFreq = 2
	}
	if config.Pipeline.BWTBlockSizeBytes <= 0 {
		config.Pipeline.BWTBlockSizeBytes = 1 << 20
	}

	if config.Entropy.Algorithm == "" {
		config.Entropy.Algorithm = "zstd"
	}
	if config.Entropy.Level <= 0 {
		config.Entropy.Level = 3
	}

	if config.Container.OutputPath == "" {
		config.Container.OutputPath = "output.logpress"
	}
}

// applyEnvironmentOverrides lets LOGPRESS_-prefixed environment variables
// win over both defaults and file values, matching the teacher's
// env-override precedence.
func applyEnvironmentOverrides(config *types.Config) {
	config.App.Name = getEnvString("LOGPRESS_APP_NAME", config.App.Name)
	config.App.LogLevel = getEnvString("LOGPRESS_LOG_LEVEL", config.App.LogLevel)
	config.App.LogFormat = getEnvString("LOGPRESS_LOG_FORMAT", config.App.LogFormat)

	config.Pipeline.MinSupport = getEnvInt("LOGPRESS_MIN_SUPPORT", config.Pipeline.MinSupport)
	config.Pipeline.BinaryIP = getEnvBool("LOGPRESS_BINARY_IP", config.Pipeline.BinaryIP)
	config.Pipeline.WordDictionaries = getEnvBool("LOGPRESS_WORD_DICTIONARIES", config.Pipeline.WordDictionaries)
	config.Pipeline.WordDictMinFreq = getEnvInt("LOGPRESS_WORD_DICT_MIN_FREQ", config.Pipeline.WordDictMinFreq)
	config.Pipeline.BWT = getEnvBool("LOGPRESS_BWT", config.Pipeline.BWT)
	config.Pipeline.BWTBlockSizeBytes = getEnvInt("LOGPRESS_BWT_BLOCK_SIZE_BYTES", config.Pipeline.BWTBlockSizeBytes)

	config.Entropy.Algorithm = getEnvString("LOGPRESS_ENTROPY_ALGORITHM", config.Entropy.Algorithm)
	config.Entropy.Level = getEnvInt("LOGPRESS_ENTROPY_LEVEL", config.Entropy.Level)
	config.Entropy.DictPath = getEnvString("LOGPRESS_ENTROPY_DICT_PATH", config.Entropy.DictPath)
	config.Entropy.DictID = getEnvString("LOGPRESS_ENTROPY_DICT_ID", config.Entropy.DictID)

	config.Container.OutputPath = getEnvString("LOGPRESS_OUTPUT_PATH", config.Container.OutputPath)
}

// ValidateConfig rejects combinations that would produce a container the
// rest of the module cannot write or read.
func ValidateConfig(config *types.Config) error {
	switch config.App.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("app.log_format must be json or text, got %q", config.App.LogFormat)
	}

	switch config.App.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("app.log_level must be one of trace/debug/info/warn/error, got %q", config.App.LogLevel)
	}

	if config.Pipeline.MinSupport < 1 {
		return fmt.Errorf("pipeline.min_support must be >= 1, got %d", config.Pipeline.MinSupport)
	}
	if config.Pipeline.BWT && config.Pipeline.BWTBlockSizeBytes < 1 {
		return fmt.Errorf("pipeline.bwt_block_size_bytes must be >= 1 when bwt is enabled, got %d", config.Pipeline.BWTBlockSizeBytes)
	}

	switch config.Entropy.Algorithm {
	case "zstd", "lz4", "snappy", "none":
	default:
		return fmt.Errorf("entropy.algorithm must be one of zstd/lz4/snappy/none, got %q", config.Entropy.Algorithm)
	}
	if config.Entropy.DictPath != "" && config.Entropy.DictID == "" {
		return fmt.Errorf("entropy.dict_id is required when entropy.dict_path is set")
	}

	if config.Container.OutputPath == "" {
		return fmt.Errorf("container.output_path must not be empty")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
