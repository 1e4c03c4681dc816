package mcpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	mcpRoutePathConstant          = "/mcp"
	metricsRoutePathConstant      = "/metrics"
	healthRoutePathConstant       = "/healthz"
	healthResponseBodyConstant    = "ok"
	contentTypeHeaderConstant     = "Content-Type"
	plainTextContentTypeConstant  = "text/plain; charset=utf-8"
	sessionHeaderConstant         = "Mcp-Session-Id"
	shutdownGracePeriodConstant   = 5 * time.Second
	readHeaderTimeoutConstant     = 10 * time.Second
	corsMaxAgeSecondsConstant     = 300
	logFieldTransportConstant     = "transport"
	logFieldListenAddressConstant = "listen_address"
	stdioTransportNameConstant    = "stdio"
	httpTransportNameConstant     = "http"
	serverStartingMessageConstant = "Serving MCP requests"
	serverStoppingMessageConstant = "Stopping MCP server"
)

// ServeStdio answers MCP requests read from input until the context is
// cancelled or input is closed. Library errors are routed to the logger.
func ServeStdio(serveContext context.Context, mcpServer *server.MCPServer, logger *zap.Logger, input io.Reader, output io.Writer) error {
	stdioServer := server.NewStdioServer(mcpServer)
	errorLogger, loggerError := zap.NewStdLogAt(logger, zapcore.ErrorLevel)
	if loggerError == nil {
		stdioServer.SetErrorLogger(errorLogger)
	}

	logger.Info(serverStartingMessageConstant, zap.String(logFieldTransportConstant, stdioTransportNameConstant))
	listenError := stdioServer.Listen(serveContext, input, output)
	if listenError != nil && !errors.Is(listenError, context.Canceled) && !errors.Is(listenError, io.EOF) {
		return listenError
	}
	return nil
}

// HTTPHandlerOptions configures the HTTP router.
type HTTPHandlerOptions struct {
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewHTTPHandler mounts streamable HTTP MCP at /mcp, Prometheus metrics at
// /metrics, and a liveness probe at /healthz.
func NewHTTPHandler(mcpServer *server.MCPServer, options HTTPHandlerOptions) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	if len(options.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: options.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", sessionHeaderConstant},
			ExposedHeaders: []string{sessionHeaderConstant},
			MaxAge:         corsMaxAgeSecondsConstant,
		}))
	}

	router.Get(healthRoutePathConstant, func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.Header().Set(contentTypeHeaderConstant, plainTextContentTypeConstant)
		_, _ = io.WriteString(responseWriter, healthResponseBodyConstant)
	})

	if options.Gatherer != nil {
		router.Handle(metricsRoutePathConstant, promhttp.HandlerFor(options.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Handle(mcpRoutePathConstant, server.NewStreamableHTTPServer(mcpServer))

	return router
}

// ServeHTTP listens on listenAddress until the context is cancelled, then shuts down gracefully.
func ServeHTTP(serveContext context.Context, listenAddress string, handler http.Handler, logger *zap.Logger) error {
	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeoutConstant,
	}

	serveErrors := make(chan error, 1)
	go func() {
		logger.Info(serverStartingMessageConstant,
			zap.String(logFieldTransportConstant, httpTransportNameConstant),
			zap.String(logFieldListenAddressConstant, listenAddress),
		)
		serveErrors <- httpServer.ListenAndServe()
	}()

	select {
	case serveError := <-serveErrors:
		if errors.Is(serveError, http.ErrServerClosed) {
			return nil
		}
		return serveError
	case <-serveContext.Done():
		logger.Info(serverStoppingMessageConstant, zap.String(logFieldTransportConstant, httpTransportNameConstant))
		shutdownContext, cancelShutdown := context.WithTimeout(context.WithoutCancel(serveContext), shutdownGracePeriodConstant)
		defer cancelShutdown()
		return httpServer.Shutdown(shutdownContext)
	}
}
