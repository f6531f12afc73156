// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

/*
Package supervisor provides process supervision for Resonance using suture v4.

The tree isolates failures by layer:

	RootSupervisor ("resonance")
	├── BackgroundSupervisor ("background-layer")
	│   └── CacheStatsService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's exponential backoff. Supervisor
events are logged through sutureslog, which main wires to zerolog via
logging.NewSlogLogger.

# Usage

	logger := logging.NewSlogLogger(logging.WithComponent("supervisor"))
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, 15*time.Second))
	tree.AddBackgroundService(services.NewCacheStatsService(sources, 30*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

After Serve returns, UnstoppedServiceReport lists services that ignored
cancellation past ShutdownTimeout.
*/
package supervisor
