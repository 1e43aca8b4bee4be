// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config defines the charm configuration accepted by the
// cloudflared configurator and validates the loosely typed attributes
// delivered by the Juju runtime into a strongly typed value.
package config

import (
	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/juju/environschema.v1"

	"github.com/canonical/cloudflared-configurator/core/secrets"
)

const (
	// DomainKey is the config key holding the domain routed through
	// the cloudflared tunnel.
	DomainKey = "domain"

	// NameserverKey is the config key holding the nameserver used to
	// resolve services behind the tunnel.
	NameserverKey = "nameserver"

	// TunnelTokenKey is the config key holding the secret URI of the
	// cloudflared tunnel token.
	TunnelTokenKey = "tunnel-token"
)

var configSchema = environschema.Fields{
	DomainKey: {
		Description: "The domain served by the cloudflared tunnel.",
		Type:        environschema.Tstring,
	},
	NameserverKey: {
		Description: "The nameserver used by the cloudflared tunnel to resolve in-cluster services.",
		Type:        environschema.Tstring,
	},
	TunnelTokenKey: {
		Description: "Juju secret URI holding the cloudflared tunnel token.",
		Type:        environschema.Tstring,
		Secret:      true,
	},
}

var configDefaults = schema.Defaults{
	DomainKey:      schema.Omit,
	NameserverKey:  schema.Omit,
	TunnelTokenKey: schema.Omit,
}

var configFields = func() schema.Fields {
	fs, _, err := configSchema.ValidationSchema()
	if err != nil {
		panic(err)
	}
	return fs
}()

// Config holds the validated charm configuration.
type Config struct {
	validAttrs map[string]interface{}
}

// NewConfig validates attrs against the charm config schema and
// returns the typed configuration. Unset and empty string attributes
// are both treated as absent, matching how Juju delivers unset
// options.
func NewConfig(attrs map[string]interface{}) (Config, error) {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	checker := schema.FieldMap(configFields, configDefaults)
	coerced, err := checker.Coerce(attrs, nil)
	if err != nil {
		return Config{}, errors.Annotate(err, "validating charm config")
	}
	cfg := Config{validAttrs: coerced.(map[string]interface{})}
	if uriStr, ok := cfg.attr(TunnelTokenKey); ok {
		if _, err := secrets.ParseURI(uriStr); err != nil {
			return Config{}, errors.Annotatef(err, "config %q", TunnelTokenKey)
		}
	}
	return cfg, nil
}

func (c Config) attr(key string) (string, bool) {
	v, ok := c.validAttrs[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Domain returns the configured domain, if set.
func (c Config) Domain() (string, bool) {
	return c.attr(DomainKey)
}

// Nameserver returns the configured nameserver, if set.
func (c Config) Nameserver() (string, bool) {
	return c.attr(NameserverKey)
}

// TunnelTokenSecret returns the secret URI referencing the tunnel
// token, if set.
func (c Config) TunnelTokenSecret() (*secrets.URI, bool) {
	uriStr, ok := c.attr(TunnelTokenKey)
	if !ok {
		return nil, false
	}
	// Already validated in NewConfig.
	uri, err := secrets.ParseURI(uriStr)
	if err != nil {
		return nil, false
	}
	return uri, true
}

// Schema returns the charm config schema, for tooling that renders
// config documentation.
func Schema() environschema.Fields {
	fields := make(environschema.Fields, len(configSchema))
	for k, v := range configSchema {
		fields[k] = v
	}
	return fields
}
