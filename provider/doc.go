// Package provider keeps named, swappable backends behind one interface.
//
// A Registry stores providers in registration order. A Manager adds a
// default and a Selector on top and reports per-provider health. Each
// configured speech engine is one provider:
//
//	mgr := provider.NewManager(provider.NewRegistry[transcription.Provider](), nil, log)
//	_ = mgr.Add("whisper-ur", urdu)
//	_ = mgr.SetDefault("whisper-ur")
//	p, err := mgr.Get(ctx)
package provider
