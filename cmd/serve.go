package main

import (
	"context"

	"github.com/desertthunder/foodgram/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		r.config.Server.Port = port
	}
	if r.config.Auth.JWTSecret == "" {
		r.logger.Warn("auth.jwt_secret is empty; every request will be anonymous")
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	return server.New(svc, r.config, r.logger).ListenAndServe(ctx)
}
