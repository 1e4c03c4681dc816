package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	listValueSeparatorConstant                      = ","
	workingDirectorySearchPathConstant              = "."
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
)

// ConfigurationLoaderOptions describe where configuration is read from.
type ConfigurationLoaderOptions struct {
	ConfigurationName     string
	ConfigurationType     string
	EnvironmentPrefix     string
	SearchPaths           []string
	EmbeddedConfiguration []byte
}

// ConfigurationLoader layers embedded defaults, an optional configuration file,
// and environment variables, in increasing priority, using Viper.
type ConfigurationLoader struct {
	options                ConfigurationLoaderOptions
	environmentKeyReplacer *strings.Replacer
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader. Slices are copied.
func NewConfigurationLoader(options ConfigurationLoaderOptions) *ConfigurationLoader {
	options.SearchPaths = append([]string(nil), options.SearchPaths...)
	options.EmbeddedConfiguration = append([]byte(nil), options.EmbeddedConfiguration...)

	return &ConfigurationLoader{
		options:                options,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// DefaultSearchPaths returns the working directory and the per-user configuration
// directory for applicationName.
func DefaultSearchPaths(applicationName string) []string {
	searchPaths := []string{workingDirectorySearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationName))
	}
	return searchPaths
}

// LoadConfiguration populates targetConfiguration. An explicit configurationFilePath
// must exist; otherwise the search paths are consulted and a missing file is not an error.
// Durations accept Go duration strings and lists accept comma-separated strings.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.options.ConfigurationName)
	viperInstance.SetConfigType(loader.options.ConfigurationType)

	if len(loader.options.EmbeddedConfiguration) > 0 {
		mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.options.EmbeddedConfiguration))
		if mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
	}

	for _, searchPath := range loader.options.SearchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.options.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	viperInstance.AutomaticEnv()

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	if readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listValueSeparatorConstant),
	))
	unmarshalError := viperInstance.Unmarshal(targetConfiguration, decodeHook)
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
