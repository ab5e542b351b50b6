package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	configurationFileNameConstant         = "fleet"
	configurationFileTypeConstant         = "yaml"
	configurationSearchPathConstant       = "."
	environmentVariablePrefixConstant     = "GITFLEET"
	environmentKeySeparatorConstant       = "."
	environmentKeyReplacementConstant     = "_"
	readConfigurationFailureTemplate      = "unable to read configuration file: %w"
	unmarshalConfigurationFailureTemplate = "unable to decode configuration: %w"
)

// LoadResult describes the outcome of a configuration load.
type LoadResult struct {
	// ConfigFileUsed holds the path of the configuration file that was
	// read, or an empty string when no file was found.
	ConfigFileUsed string
}

// ConfigurationLoader resolves configuration from files and environment variables.
type ConfigurationLoader struct{}

// NewConfigurationLoader constructs a configuration loader.
func NewConfigurationLoader() *ConfigurationLoader {
	return &ConfigurationLoader{}
}

// LoadConfiguration populates target from the resolved configuration file,
// environment variables, and the supplied defaults. A missing configuration
// file is tolerated; callers inspect LoadResult.ConfigFileUsed to decide
// whether a file is mandatory for their command.
func (loader *ConfigurationLoader) LoadConfiguration(explicitConfigPath string, defaults map[string]any, target any) (LoadResult, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationFileTypeConstant)
	viperInstance.SetEnvPrefix(environmentVariablePrefixConstant)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeySeparatorConstant, environmentKeyReplacementConstant))
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaults {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(strings.TrimSpace(explicitConfigPath)) > 0 {
		viperInstance.SetConfigFile(explicitConfigPath)
	} else {
		viperInstance.SetConfigName(configurationFileNameConstant)
		viperInstance.AddConfigPath(configurationSearchPathConstant)
	}

	readError := viperInstance.ReadInConfig()
	if readError != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		missingExplicitFile := len(strings.TrimSpace(explicitConfigPath)) == 0
		if !errors.As(readError, &configFileNotFoundError) || !missingExplicitFile {
			return LoadResult{}, fmt.Errorf(readConfigurationFailureTemplate, readError)
		}
	}

	unmarshalError := viperInstance.Unmarshal(target)
	if unmarshalError != nil {
		return LoadResult{}, fmt.Errorf(unmarshalConfigurationFailureTemplate, unmarshalError)
	}

	return LoadResult{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
