package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/ghmcp/internal/dispatch"
	"github.com/temirov/ghmcp/internal/execshell"
	"github.com/temirov/ghmcp/internal/githubauth"
	"github.com/temirov/ghmcp/internal/githubcli"
	"github.com/temirov/ghmcp/internal/metrics"
	"github.com/temirov/ghmcp/internal/utils"
)

const (
	applicationNameConstant                 = "ghmcp"
	applicationShortDescriptionConstant     = "Model Context Protocol server for the GitHub CLI"
	applicationLongDescriptionConstant      = "ghmcp exposes a fixed catalog of GitHub CLI operations as MCP tools. Running it without a subcommand starts the server."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	environmentPrefixConstant               = "GHMCP"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationExecutableFieldConstant    = "executable"
	configurationTokenSourceFieldConstant   = "token_source"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	executorCreationErrorTemplateConstant   = "unable to create command executor: %w"
	dispatcherCreationErrorTemplateConstant = "unable to create dispatcher: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Server ApplicationServerConfiguration `mapstructure:"server"`
	GitHub ApplicationGitHubConfiguration `mapstructure:"github"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationServerConfiguration selects the MCP transport.
type ApplicationServerConfiguration struct {
	Name           string   `mapstructure:"name"`
	Transport      string   `mapstructure:"transport"`
	ListenAddress  string   `mapstructure:"listen_address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ApplicationGitHubConfiguration controls how the GitHub CLI is launched.
type ApplicationGitHubConfiguration struct {
	Executable               string        `mapstructure:"executable"`
	WorkingDirectory         string        `mapstructure:"working_directory"`
	MaxConcurrentInvocations int64         `mapstructure:"max_concurrent_invocations"`
	CommandTimeout           time.Duration `mapstructure:"command_timeout"`
	ValidateJSONOutput       bool          `mapstructure:"validate_json_output"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	commandRunner         execshell.CommandRunner
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	serveFlags            serveFlagValues
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName:     configurationNameConstant,
		ConfigurationType:     embeddedConfigurationType,
		EnvironmentPrefix:     environmentPrefixConstant,
		SearchPaths:           utils.DefaultSearchPaths(applicationNameConstant),
		EmbeddedConfiguration: embeddedConfiguration,
	})

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		commandRunner:       execshell.NewOSCommandRunner(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runServe(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	application.bindServeFlags(cobraCommand.Flags())

	cobraCommand.AddCommand(
		application.newServeCommand(),
		application.newCallCommand(),
		newCatalogCommand(),
		newVersionCommand(),
	)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	application.applyServeFlagOverrides(command)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationExecutableFieldConstant, application.configuration.GitHub.Executable),
		zap.String(configurationTokenSourceFieldConstant, githubauth.ResolveTokenSource(nil)),
	)

	return nil
}

// buildDispatcher assembles the executor and dispatcher from the loaded configuration.
// A nil recorder disables metrics.
func (application *Application) buildDispatcher(recorder *metrics.PrometheusRecorder) (*dispatch.Dispatcher, error) {
	githubConfiguration := application.configuration.GitHub

	executorOptions := []execshell.ShellExecutorOption{
		execshell.WithGitHubExecutable(execshell.CommandName(githubConfiguration.Executable)),
		execshell.WithConcurrencyLimit(githubConfiguration.MaxConcurrentInvocations),
		execshell.WithCommandTimeout(githubConfiguration.CommandTimeout),
	}
	dispatcherOptions := []dispatch.DispatcherOption{
		dispatch.WithCommandBuilder(githubcli.NewCommandBuilder(githubConfiguration.Executable)),
		dispatch.WithProgramName(githubConfiguration.Executable),
		dispatch.WithWorkingDirectory(githubConfiguration.WorkingDirectory),
		dispatch.WithJSONOutputValidation(githubConfiguration.ValidateJSONOutput),
	}
	if recorder != nil {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(recorder))
		dispatcherOptions = append(dispatcherOptions, dispatch.WithOutcomeRecorder(recorder))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, application.commandRunner, executorOptions...)
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	dispatcher, dispatcherError := dispatch.NewDispatcher(application.logger, shellExecutor, dispatcherOptions...)
	if dispatcherError != nil {
		return nil, fmt.Errorf(dispatcherCreationErrorTemplateConstant, dispatcherError)
	}
	return dispatcher, nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.Flags(),
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
