// Package version reports what build of chunkscribe is running.
//
//	go build -ldflags "-X github.com/kbukum/chunkscribe/version.Version=1.4.0" ./cmd/chunkscribe
package version
