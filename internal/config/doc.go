// Package config provides configuration parsing for patchwork.
//
// The configuration is stored in patchwork.yaml (or patchwork.json) in the
// working directory. Every field is optional.
//
// # Configuration File Structure
//
//	rootId: app
//	drainMode: deferred
//	logLevel: info
//	server:
//	  addr: localhost:8080
//	  path: /ws
//	  route: /a
//	  writeTimeout: 10s
//	metrics:
//	  enabled: true
//	  namespace: patchwork
//	tracing:
//	  enabled: false
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Server.Addr)
package config
