package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/ghmcp/internal/mcpserver"
	"github.com/temirov/ghmcp/internal/metrics"
)

const (
	serveCommandUseConstant              = "serve"
	serveCommandShortDescriptionConstant = "Serve the GitHub CLI tools over MCP"
	transportFlagNameConstant            = "transport"
	transportFlagUsageConstant           = "Override the configured transport (stdio or http)."
	listenFlagNameConstant               = "listen"
	listenFlagUsageConstant              = "Override the configured listen address for the http transport."
	transportStdioConstant               = "stdio"
	transportHTTPConstant                = "http"
	unsupportedTransportTemplateConstant = "unsupported transport: %s"
	logFieldServerNameConstant           = "server_name"
	logFieldServerVersionConstant        = "server_version"
	serverConfiguredMessageConstant      = "MCP server configured"
)

type serveFlagValues struct {
	transport     string
	listenAddress string
}

func (application *Application) bindServeFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&application.serveFlags.transport, transportFlagNameConstant, "", transportFlagUsageConstant)
	flagSet.StringVar(&application.serveFlags.listenAddress, listenFlagNameConstant, "", listenFlagUsageConstant)
}

func (application *Application) applyServeFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, transportFlagNameConstant) {
		application.configuration.Server.Transport = application.serveFlags.transport
	}
	if application.persistentFlagChanged(command, listenFlagNameConstant) {
		application.configuration.Server.ListenAddress = application.serveFlags.listenAddress
	}
}

func (application *Application) newServeCommand() *cobra.Command {
	serveCommand := &cobra.Command{
		Use:   serveCommandUseConstant,
		Short: serveCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runServe(command)
		},
	}
	application.bindServeFlags(serveCommand.Flags())
	return serveCommand
}

// runServe blocks until the transport finishes or the process receives SIGINT or SIGTERM.
func (application *Application) runServe(command *cobra.Command) error {
	serverConfiguration := application.configuration.Server
	transport := strings.ToLower(strings.TrimSpace(serverConfiguration.Transport))
	if transport != transportStdioConstant && transport != transportHTTPConstant {
		return fmt.Errorf(unsupportedTransportTemplateConstant, serverConfiguration.Transport)
	}

	recorder := metrics.NewPrometheusRecorder()
	dispatcher, dispatcherError := application.buildDispatcher(recorder)
	if dispatcherError != nil {
		return dispatcherError
	}

	identity := mcpserver.ServerIdentity{Name: serverConfiguration.Name, Version: resolveApplicationVersion()}
	mcpServer := mcpserver.NewServer(dispatcher, identity)
	application.logger.Info(serverConfiguredMessageConstant,
		zap.String(logFieldServerNameConstant, identity.Name),
		zap.String(logFieldServerVersionConstant, identity.Version),
	)

	serveContext, stopSignals := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if transport == transportHTTPConstant {
		handler := mcpserver.NewHTTPHandler(mcpServer, mcpserver.HTTPHandlerOptions{
			Gatherer:       recorder.Gatherer(),
			AllowedOrigins: serverConfiguration.AllowedOrigins,
		})
		return mcpserver.ServeHTTP(serveContext, serverConfiguration.ListenAddress, handler, application.logger)
	}

	return mcpserver.ServeStdio(serveContext, mcpServer, application.logger, command.InOrStdin(), command.OutOrStdout())
}
