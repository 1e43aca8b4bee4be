// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package ingress decodes the data published by an ingress requirer
// over the "ingress" relation. The relation carries the v2 ingress
// interface: every databag value is a JSON encoded document, with the
// application databag describing the requested route and each unit
// databag naming the host serving it.
package ingress

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/juju/collections/transform"
	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

const (
	// DefaultScheme is the protocol assumed for requirers that do not
	// ask for one explicitly.
	DefaultScheme = "http"

	appModelKey         = "model"
	appNameKey          = "name"
	appPortKey          = "port"
	appSchemeKey        = "scheme"
	appStripPrefixKey   = "strip-prefix"
	appRedirectHTTPSKey = "redirect-https"

	unitHostKey = "host"
	unitIPKey   = "ip"
)

// AppData is the route requested by the remote application.
type AppData struct {
	Model         string `json:"model"`
	Name          string `json:"name"`
	Port          int    `json:"port"`
	Scheme        string `json:"scheme"`
	StripPrefix   bool   `json:"strip_prefix"`
	RedirectHTTPS bool   `json:"redirect_https"`
}

// UnitData is one remote unit's address information.
type UnitData struct {
	Host string `json:"host"`
	IP   string `json:"ip"`
}

// Request is the complete ingress request of a single remote peer.
// Units are ordered by host so diagnostic output is stable.
type Request struct {
	App   AppData    `json:"application-data"`
	Units []UnitData `json:"unit-data"`
}

// ParseRequest validates the remote application and unit databags of
// an ingress relation into a Request. Unit bags are keyed by the
// remote unit name.
func ParseRequest(appBag map[string]string, unitBags map[string]map[string]string) (Request, error) {
	var req Request
	req.App.Scheme = DefaultScheme
	if err := decodeField(appBag, appModelKey, true, &req.App.Model); err != nil {
		return Request{}, errors.Trace(err)
	}
	if err := decodeField(appBag, appNameKey, true, &req.App.Name); err != nil {
		return Request{}, errors.Trace(err)
	}
	if err := decodeField(appBag, appPortKey, true, &req.App.Port); err != nil {
		return Request{}, errors.Trace(err)
	}
	if err := decodeField(appBag, appSchemeKey, false, &req.App.Scheme); err != nil {
		return Request{}, errors.Trace(err)
	}
	if err := decodeField(appBag, appStripPrefixKey, false, &req.App.StripPrefix); err != nil {
		return Request{}, errors.Trace(err)
	}
	if err := decodeField(appBag, appRedirectHTTPSKey, false, &req.App.RedirectHTTPS); err != nil {
		return Request{}, errors.Trace(err)
	}
	for unit, bag := range unitBags {
		if !names.IsValidUnit(unit) {
			return Request{}, errors.NotValidf("ingress unit name %q", unit)
		}
		var data UnitData
		if err := decodeField(bag, unitHostKey, true, &data.Host); err != nil {
			return Request{}, errors.Annotatef(err, "unit %q", unit)
		}
		if err := decodeField(bag, unitIPKey, false, &data.IP); err != nil {
			return Request{}, errors.Annotatef(err, "unit %q", unit)
		}
		req.Units = append(req.Units, data)
	}
	sort.Slice(req.Units, func(i, j int) bool {
		return req.Units[i].Host < req.Units[j].Host
	})
	return req, nil
}

func decodeField(bag map[string]string, key string, required bool, into interface{}) error {
	raw, ok := bag[key]
	if !ok || raw == "" {
		if required {
			return errors.NotFoundf("ingress field %q", key)
		}
		return nil
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return errors.NewNotValid(err, fmt.Sprintf("ingress field %q", key))
	}
	return nil
}

// Describe returns the requests of the connected ingress peers in a
// stable order. It is read only and returns an empty slice when no
// peer is connected.
func Describe(peers []Request) []Request {
	if len(peers) == 0 {
		return []Request{}
	}
	result := transform.Slice(peers, func(r Request) Request { return r })
	sort.Slice(result, func(i, j int) bool {
		return result[i].App.Name < result[j].App.Name
	})
	return result
}

// URL returns the ingress URL published back to the requirer once the
// tunnel routes the given domain.
func URL(domain string) string {
	return fmt.Sprintf("https://%s/", domain)
}
