package config

import (
	"fmt"
	"maps"

	"github.com/neox5/pushbox/internal/version"
)

const (
	// OTLP defaults
	DefaultOTLPProtocol = ProtocolGRPC
	DefaultOTLPHost     = "localhost"
	DefaultOTLPPortGRPC = 4317
	DefaultOTLPPortHTTP = 4318
	DefaultServiceName  = "pushbox"
)

// Transport names the push transport.
type Transport string

const (
	TransportPushgateway Transport = "pushgateway"
	TransportOTLP        Transport = "otlp"
)

// Protocol names the OTLP wire protocol.
type Protocol string

const (
	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http"
)

// ExportConfig selects how built gauges leave the process.
type ExportConfig struct {
	Transport Transport
	OTLP      *OTLPConfig
}

// OTLPConfig defines OTLP push settings.
type OTLPConfig struct {
	Protocol Protocol
	Host     string
	Port     int
	Resource map[string]string
	Headers  map[string]string
}

// Endpoint returns the host:port address.
func (c *OTLPConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// resolveExport applies transport defaults
func resolveExport(raw *RawExportConfig) ExportConfig {
	e := ExportConfig{Transport: Transport(raw.Transport)}
	if e.Transport == "" {
		e.Transport = TransportPushgateway
	}

	if e.Transport != TransportOTLP {
		return e
	}

	rawOTLP := raw.OTLP
	if rawOTLP == nil {
		rawOTLP = &RawOTLPConfig{}
	}

	c := &OTLPConfig{
		Protocol: Protocol(rawOTLP.Protocol),
		Host:     rawOTLP.Host,
		Port:     rawOTLP.Port,
		Resource: make(map[string]string, len(rawOTLP.Resource)+2),
		Headers:  make(map[string]string, len(rawOTLP.Headers)),
	}
	maps.Copy(c.Resource, rawOTLP.Resource)
	maps.Copy(c.Headers, rawOTLP.Headers)

	if c.Protocol == "" {
		c.Protocol = DefaultOTLPProtocol
	}
	if c.Host == "" {
		c.Host = DefaultOTLPHost
	}
	if c.Port == 0 {
		if c.Protocol == ProtocolHTTP {
			c.Port = DefaultOTLPPortHTTP
		} else {
			c.Port = DefaultOTLPPortGRPC
		}
	}
	if _, exists := c.Resource["service.name"]; !exists {
		c.Resource["service.name"] = DefaultServiceName
	}
	if _, exists := c.Resource["service.version"]; !exists {
		c.Resource["service.version"] = version.Version
	}

	e.OTLP = c
	return e
}
