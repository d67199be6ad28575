package authorizations

import (
	"github.com/brizzai/tokenctl/internal/config"
	"github.com/brizzai/tokenctl/internal/requester"
	"go.uber.org/fx"
)

type ClientParams struct {
	fx.In

	Connection requester.ApiConnection[Authorization]
	TwoFactor  *config.TwoFactorConfig `optional:"true"`
}

// NewClientFromParams builds a Client with the configured round cap
func NewClientFromParams(params ClientParams) (*Client, error) {
	var opts []Option
	if params.TwoFactor != nil {
		opts = append(opts, WithMaxChallengeRounds(params.TwoFactor.MaxRounds))
	}
	return NewClient(params.Connection, opts...)
}

// NewConnection is the HTTP connection for authorization resources
func NewConnection(doer requester.Doer) requester.ApiConnection[Authorization] {
	return requester.NewHTTPConnection[Authorization](doer)
}

var Module = fx.Module("authorizations",
	fx.Provide(
		NewConnection,
		NewClientFromParams,
	),
)
