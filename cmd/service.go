package cmd

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/isometry/zadarma-go/internal/config"
	"github.com/isometry/zadarma-go/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		Short:   "Serve the webhook receiver over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeService)
			return runService(cmd)
		},
	}
	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)
	return cmd
}

func newRouter(rt *runtime.Runtime) *mux.Router {
	r := mux.NewRouter()
	r.Handle(config.Service.Path, rt).Methods(http.MethodGet, http.MethodPost)
	return r
}

func runService(cmd *cobra.Command) error {
	logger.Info("spawning...")
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup service")
	}

	logger.Debug("creating HTTP server...")
	s := &http.Server{
		Handler:      newRouter(rt),
		Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
		WriteTimeout: config.Service.Timeout,
		ReadTimeout:  config.Service.Timeout,
		IdleTimeout:  config.Service.Timeout,
	}

	go func() {
		<-cmd.Context().Done()
		ctx, cancel := context.WithTimeout(context.Background(), config.Service.Timeout)
		defer cancel()
		_ = s.Shutdown(ctx)
	}()

	logger.Info("serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
	if err = s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
