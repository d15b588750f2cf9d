// Package metrics provides observability hooks for the application state graph.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional:
//
//	recorder := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.Metrics.Enabled {
//	    reg := prom.NewRegistry()
//	    recorder = metrics.NewPrometheusRecorder(reg)
//	    server := metrics.NewServer(cfg.Metrics.Address, reg, logger)
//	}
//
// PrometheusRecorder methods are safe on a nil receiver.
package metrics
