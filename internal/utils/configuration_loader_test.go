package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmcp/internal/utils"
)

const (
	testEnvironmentPrefixConstant                  = "TESTGHMCP"
	testConfigurationNameConstant                  = "config"
	testConfigurationTypeConstant                  = "yaml"
	testConfigFileNameConstant                     = "config.yaml"
	testEmbeddedConfigurationConstant              = "common:\n  log_level: info\ngithub:\n  executable: gh\n  command_timeout: 0s\nserver:\n  allowed_origins: []\n"
	testFileConfigurationTemplateConstant          = "common:\n  log_level: %s\n"
	testDefaultLogLevelConstant                    = "info"
	testFileLogLevelConstant                       = "warn"
	testEnvironmentLogLevelConstant                = "error"
	configurationLoaderSubtestNameTemplateConstant = "%d_%s"
	testUserConfigurationDirectoryNameConstant     = "ghmcp"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
	GitHub configurationGitHubFixture `mapstructure:"github"`
	Server configurationServerFixture `mapstructure:"server"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

type configurationGitHubFixture struct {
	Executable     string        `mapstructure:"executable"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

type configurationServerFixture struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func newTestLoader(searchPaths []string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName:     testConfigurationNameConstant,
		ConfigurationType:     testConfigurationTypeConstant,
		EnvironmentPrefix:     testEnvironmentPrefixConstant,
		SearchPaths:           searchPaths,
		EmbeddedConfiguration: []byte(testEmbeddedConfigurationConstant),
	})
}

func TestConfigurationLoaderLayering(testInstance *testing.T) {
	testCases := []struct {
		name                string
		fileLogLevel        string
		environmentLogLevel string
		expectedLogLevel    string
	}{
		{name: "embedded_defaults", expectedLogLevel: testDefaultLogLevelConstant},
		{name: "file_overrides_embedded", fileLogLevel: testFileLogLevelConstant, expectedLogLevel: testFileLogLevelConstant},
		{
			name:                "environment_overrides_file",
			fileLogLevel:        testFileLogLevelConstant,
			environmentLogLevel: testEnvironmentLogLevelConstant,
			expectedLogLevel:    testEnvironmentLogLevelConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			configurationFilePath := ""
			if len(testCase.fileLogLevel) > 0 {
				configurationFilePath = filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
				content := fmt.Sprintf(testFileConfigurationTemplateConstant, testCase.fileLogLevel)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), 0o600))
			}
			if len(testCase.environmentLogLevel) > 0 {
				testInstance.Setenv(testEnvironmentPrefixConstant+"_COMMON_LOG_LEVEL", testCase.environmentLogLevel)
			}

			loadedConfiguration := configurationFixture{}
			metadata, loadError := newTestLoader(nil).LoadConfiguration(configurationFilePath, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)
			require.Equal(testInstance, "gh", loadedConfiguration.GitHub.Executable)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderDecodesDurationsAndLists(testInstance *testing.T) {
	testInstance.Setenv(testEnvironmentPrefixConstant+"_GITHUB_COMMAND_TIMEOUT", "90s")
	testInstance.Setenv(testEnvironmentPrefixConstant+"_SERVER_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	loadedConfiguration := configurationFixture{}
	_, loadError := newTestLoader(nil).LoadConfiguration("", &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 90*time.Second, loadedConfiguration.GitHub.CommandTimeout)
	require.Equal(testInstance, []string{"https://a.example.com", "https://b.example.com"}, loadedConfiguration.Server.AllowedOrigins)
}

func TestConfigurationLoaderMissingExplicitFile(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), "absent.yaml")

	loadedConfiguration := configurationFixture{}
	_, loadError := newTestLoader(nil).LoadConfiguration(missingPath, &loadedConfiguration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}

func TestConfigurationLoaderSearchPaths(testInstance *testing.T) {
	firstDirectory := testInstance.TempDir()
	secondDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(secondDirectory, testConfigFileNameConstant)
	content := fmt.Sprintf(testFileConfigurationTemplateConstant, testFileLogLevelConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), 0o600))

	loadedConfiguration := configurationFixture{}
	metadata, loadError := newTestLoader([]string{firstDirectory, secondDirectory}).LoadConfiguration("", &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testFileLogLevelConstant, loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestDefaultSearchPaths(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, "config"))

	userConfigurationDirectory, directoryError := os.UserConfigDir()
	require.NoError(testInstance, directoryError)

	require.Equal(testInstance,
		[]string{".", filepath.Join(userConfigurationDirectory, testUserConfigurationDirectoryNameConstant)},
		utils.DefaultSearchPaths(testUserConfigurationDirectoryNameConstant),
	)
}
