// Package resilience provides the concurrency and failure-isolation
// primitives the pipeline is built on.
//
//   - Gate: admission control. At most N jobs run at once; extra callers
//     wait in arrival order for as long as it takes.
//   - CircuitBreaker: fails fast when a collaborator is down, so a dead
//     speech engine is reported once instead of per chunk.
//
//	gate := resilience.NewGate(resilience.GateConfig{Name: "pipeline", MaxConcurrent: 2})
//	permit, err := gate.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer permit.Release()
package resilience
