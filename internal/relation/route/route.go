// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package route models the data exchanged over the cloudflared-route
// relation. The tunnel token never travels in the databag directly:
// the provider stores it in a Juju secret granted to the requirer and
// publishes only the secret URI.
package route

import (
	"github.com/juju/errors"

	"github.com/canonical/cloudflared-configurator/core/secrets"
)

const (
	// DefaultNameserver is the cluster DNS service name advertised
	// when the operator does not configure a nameserver explicitly.
	DefaultNameserver = "kube-dns.kube-system.svc"

	// DomainKey is the databag key holding the routed domain.
	DomainKey = "domain"

	// NameserverKey is the databag key holding the nameserver the
	// tunnel should resolve in-cluster services with.
	NameserverKey = "nameserver"

	// TunnelTokenSecretIDKey is the databag key holding the URI of the
	// secret carrying the tunnel token.
	TunnelTokenSecretIDKey = "tunnel_token_secret_id"
)

// Advertisement is the fully resolved route configuration published
// for the cloudflared charm to consume.
type Advertisement struct {
	Domain      string
	Nameserver  string
	TunnelToken string
}

// Validate returns an error if the advertisement is not complete
// enough to publish.
func (a Advertisement) Validate() error {
	if a.Domain == "" {
		return errors.NotValidf("advertisement with empty domain")
	}
	if a.TunnelToken == "" {
		return errors.NotValidf("advertisement with empty tunnel token")
	}
	return nil
}

// MarshalBag renders the advertisement into the provider side
// application databag. tokenSecret is the URI of the granted secret
// holding the tunnel token under secrets.TokenFieldName.
func MarshalBag(a Advertisement, tokenSecret *secrets.URI) (map[string]string, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if err := tokenSecret.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	bag := map[string]string{
		DomainKey:              a.Domain,
		TunnelTokenSecretIDKey: tokenSecret.String(),
	}
	if a.Nameserver != "" {
		bag[NameserverKey] = a.Nameserver
	}
	return bag, nil
}

// UnmarshalBag reads a provider application databag back into an
// Advertisement, resolving the token secret with resolve. It is the
// requirer half of the interface and exists so the cloudflared charm
// side can share the wire format.
func UnmarshalBag(bag map[string]string, resolve func(*secrets.URI) (secrets.SecretValue, error)) (Advertisement, error) {
	adv := Advertisement{
		Domain:     bag[DomainKey],
		Nameserver: bag[NameserverKey],
	}
	uriStr, ok := bag[TunnelTokenSecretIDKey]
	if !ok || uriStr == "" {
		return adv, nil
	}
	uri, err := secrets.ParseURI(uriStr)
	if err != nil {
		return Advertisement{}, errors.Trace(err)
	}
	value, err := resolve(uri)
	if err != nil {
		return Advertisement{}, errors.Trace(err)
	}
	token, err := value.KeyValue(secrets.TokenFieldName)
	if err != nil {
		return Advertisement{}, errors.Annotatef(err, "secret %q", uri.String())
	}
	adv.TunnelToken = token
	return adv, nil
}
