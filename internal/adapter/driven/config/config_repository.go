package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ConfigRepositoryImpl implements ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository creates a new ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile loads a TOML, YAML or JSON configuration file.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w for config: %s", types.ErrUnsupportedFormat, fileExtension)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}

	return &config, nil
}

// validateConfig rejects company profiles and formulas that cannot be rendered.
func validateConfig(config *types.Config) error {
	for i, c := range config.Companies {
		if strings.TrimSpace(c.Code) == "" {
			return fmt.Errorf("companies[%d]: code is required", i)
		}
		if len(c.Columns) == 0 {
			return fmt.Errorf("company %s: at least one column is required", c.Code)
		}
		for j, col := range c.Columns {
			if col.Field == "" {
				return fmt.Errorf("company %s: columns[%d]: field is required", c.Code, j)
			}
		}
	}
	for i, d := range config.Measures.Differences {
		if d.Target == "" || d.Minuend == "" || d.Subtrahend == "" {
			return fmt.Errorf("measures.differences[%d]: target, minuend and subtrahend are required", i)
		}
	}
	for i, p := range config.Measures.Percents {
		if p.Target == "" || p.Numerator == "" || p.Denominator == "" {
			return fmt.Errorf("measures.percents[%d]: target, numerator and denominator are required", i)
		}
	}
	return nil
}
