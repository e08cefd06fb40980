// Package bootstrap runs the service lifecycle: typed configuration,
// logger initialization, startup hooks, blocking on a shutdown signal and
// graceful shutdown within a timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    // build collaborators from a.Cfg
//	    return nil
//	})
//	app.OnStart(srv.Start)
//	app.OnStop(srv.Stop)
//	err = app.Run(context.Background())
package bootstrap
