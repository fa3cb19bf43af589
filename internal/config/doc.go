// Package config provides configuration for the routectl tool.
//
// The configuration is stored in routectl.json. Every field has a default,
// so the file is optional, and ROUTECTL_* environment variables override
// what the file says.
//
// # Configuration File Structure
//
//	{
//	  "manifest": "routes.yaml",
//	  "basePath": "/app",
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "inspect": {
//	    "addr": "localhost:7070",
//	    "startURL": "/"
//	  },
//	  "metrics": {
//	    "namespace": "viewrouter"
//	  },
//	  "tracing": {
//	    "name": "github.com/vango-dev/viewrouter"
//	  },
//	  "s3": {
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000",
//	    "pathStyle": true
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.Log.NewLogger(os.Stderr)
package config
