package conf

import (
	"testing"
	"time"
)

func TestConfSetDefaults(t *testing.T) {
	c := Conf{}
	c.setDefaults()

	if c.Local.Port != 7000 {
		t.Errorf("expected default port 7000, got %d", c.Local.Port)
	}
	if c.Session.IdleTimeout_ != "5m" {
		t.Errorf("expected default idleTimeout 5m, got %s", c.Session.IdleTimeout_)
	}
	if c.Session.SweepInterval_ != "30s" {
		t.Errorf("expected default sweepInterval 30s, got %s", c.Session.SweepInterval_)
	}
	if c.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", c.Log.Level)
	}
}

func TestConfSetDefaultsPreservesExisting(t *testing.T) {
	c := Conf{Local: Local{Port: 9999}, Log: Log{Level: "debug"}}
	c.setDefaults()

	if c.Local.Port != 9999 {
		t.Errorf("expected port to stay 9999, got %d", c.Local.Port)
	}
	if c.Log.Level != "debug" {
		t.Errorf("expected log level to stay debug, got %s", c.Log.Level)
	}
}

func TestConfValidateRequiresEndpoint(t *testing.T) {
	c := Conf{}
	c.setDefaults()

	if err := c.validate(); err == nil {
		t.Error("expected error when no endpoints are configured")
	}
}

func TestConfValidateParsesDurations(t *testing.T) {
	c := Conf{Endpoints: []Endpoint{{Address: "127.0.0.1:25565"}}}
	c.setDefaults()

	if err := c.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Session.IdleTimeout != 5*time.Minute {
		t.Errorf("expected IdleTimeout=5m, got %s", c.Session.IdleTimeout)
	}
	if c.Session.SweepInterval != 30*time.Second {
		t.Errorf("expected SweepInterval=30s, got %s", c.Session.SweepInterval)
	}
}

func TestConfValidateRejectsBadDuration(t *testing.T) {
	c := Conf{
		Endpoints: []Endpoint{{Address: "127.0.0.1:25565"}},
		Session:   Session{IdleTimeout_: "not-a-duration"},
	}
	c.setDefaults()
	c.Session.IdleTimeout_ = "not-a-duration"

	if err := c.validate(); err == nil {
		t.Error("expected error for malformed idleTimeout")
	}
}

func TestConfValidateRejectsUnknownLogLevel(t *testing.T) {
	c := Conf{
		Endpoints: []Endpoint{{Address: "127.0.0.1:25565"}},
		Log:       Log{Level: "verbose"},
	}
	c.setDefaults()
	c.Log.Level = "verbose"

	if err := c.validate(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestEndpointValidateParsesAddress(t *testing.T) {
	e := Endpoint{Address: "127.0.0.1:25565"}
	if err := e.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.AddrPort.Port() != 25565 {
		t.Errorf("expected port 25565, got %d", e.AddrPort.Port())
	}
}

func TestEndpointValidateRejectsMalformedAddress(t *testing.T) {
	e := Endpoint{Address: "not-an-address"}
	if err := e.validate(); err == nil {
		t.Error("expected error for malformed address")
	}
}

func TestEndpointValidateRejectsEmptyAddress(t *testing.T) {
	e := Endpoint{}
	if err := e.validate(); err == nil {
		t.Error("expected error for empty address")
	}
}
