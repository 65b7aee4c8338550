package mongo

import (
	"testing"
	"time"
)

func TestClientOptions(t *testing.T) {
	opts, timeout, err := clientOptions(Config{
		URI:         "mongodb://localhost:27017",
		Database:    "portal_core",
		MaxPoolSize: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeout != defaultTimeout {
		t.Errorf("timeout = %s", timeout)
	}
	if opts.MaxPoolSize == nil || *opts.MaxPoolSize != 50 {
		t.Errorf("MaxPoolSize = %v", opts.MaxPoolSize)
	}
	if opts.AppName == nil || *opts.AppName != defaultAppName {
		t.Errorf("AppName = %v", opts.AppName)
	}
	if opts.WriteConcern == nil || opts.WriteConcern.W != "majority" {
		t.Errorf("expected majority write concern, got %+v", opts.WriteConcern)
	}
	if opts.ReadConcern == nil || opts.ReadConcern.Level != "majority" {
		t.Errorf("expected majority read concern, got %+v", opts.ReadConcern)
	}
}

func TestClientOptions_Errors(t *testing.T) {
	cases := map[string]Config{
		"missing database": {URI: "mongodb://localhost:27017"},
		"bad scheme":       {URI: "postgres://localhost:5432", Database: "portal_core", Timeout: time.Second},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := clientOptions(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
