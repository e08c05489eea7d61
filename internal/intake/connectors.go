// Package intake receives order sheets the stores email in, extracts
// their line items and resolves them against the catalog.
package intake

import (
	"context"
	"fmt"

	"mimiops/internal"
	"mimiops/internal/config"
)

// MailConnector fetches raw messages from one mailbox provider.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}

// connectorFactories is populated by the provider subpackages through
// RegisterConnector at init time, keeping this package free of their
// dependencies.
var connectorFactories = map[string]func(config.Config) (MailConnector, error){}

func RegisterConnector(name string, factory func(config.Config) (MailConnector, error)) {
	connectorFactories[name] = factory
}

func MakeConnector(cfg config.Config, provider string) (MailConnector, error) {
	factory, ok := connectorFactories[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported mail provider: %s", provider)
	}
	return factory(cfg)
}
