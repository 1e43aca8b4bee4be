// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"github.com/juju/cmd/v4"
	"github.com/juju/collections/transform"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/canonical/cloudflared-configurator/internal/relation/ingress"
)

// GetIngressDataCommand implements the get-ingress-data action.
type GetIngressDataCommand struct {
	cmd.CommandBase
	ctx Context
	out cmd.Output
}

// NewGetIngressDataCommand returns a command that prints the data
// published by the ingress requirer.
func NewGetIngressDataCommand(ctx Context) (cmd.Command, error) {
	if ctx == nil {
		return nil, errors.NotValidf("nil hook context")
	}
	return &GetIngressDataCommand{ctx: ctx}, nil
}

// Info implements cmd.Command.
func (c *GetIngressDataCommand) Info() *cmd.Info {
	doc := `
get-ingress-data prints the routing metadata requested by the related
ingress requirer: the application level route (model, name, port,
scheme) and the per-unit host addresses, ordered by host.

The command is a diagnostic aid and never changes relation data. With
no ingress relation established the output is an empty list.
`
	examples := `
    get-ingress-data
    get-ingress-data --format json
`
	return &cmd.Info{
		Name:     "get-ingress-data",
		Purpose:  "Print the requests received over the ingress relation.",
		Doc:      doc,
		Examples: examples,
	}
}

// SetFlags implements cmd.Command.
func (c *GetIngressDataCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "yaml", map[string]cmd.Formatter{
		"yaml": cmd.FormatYaml,
		"json": cmd.FormatJson,
	})
}

// Init implements cmd.Command.
func (c *GetIngressDataCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *GetIngressDataCommand) Run(ctx *cmd.Context) error {
	requests, err := c.ctx.IngressRequests(ctx)
	if err != nil {
		return errors.Annotate(err, "reading ingress relation data")
	}
	formatted := transform.Slice(ingress.Describe(requests), formatRequest)
	return c.out.Write(ctx, formatted)
}

// formatRequest renders a request as plain maps so the yaml and json
// formatters emit identical key names.
func formatRequest(req ingress.Request) map[string]interface{} {
	units := transform.Slice(req.Units, func(u ingress.UnitData) interface{} {
		return map[string]interface{}{
			"host": u.Host,
			"ip":   u.IP,
		}
	})
	return map[string]interface{}{
		"application-data": map[string]interface{}{
			"model":          req.App.Model,
			"name":           req.App.Name,
			"port":           req.App.Port,
			"scheme":         req.App.Scheme,
			"strip_prefix":   req.App.StripPrefix,
			"redirect_https": req.App.RedirectHTTPS,
		},
		"unit-data": units,
	}
}
