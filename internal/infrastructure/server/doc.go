// Package server wires the state service together and serves it.
//
// Server Lifecycle:
//  1. Load configuration from environment and the optional TOML file
//  2. Initialize logger (production or development)
//  3. Open the durable backend (sqlite or memory) behind the guarded KV
//  4. Hydrate the state tree from defaults overlaid with durable values
//  5. Build the desktop helpers, snapshot service and WebSocket hub
//  6. Setup HTTP routes and middleware
//  7. Start HTTP server
//  8. Graceful shutdown on signal
//
// OpenStack builds steps 3 to 5 without HTTP, for tools that only need the
// store and the snapshot service.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
