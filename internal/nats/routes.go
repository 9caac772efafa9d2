package nats

import "github.com/File-Sharing-BondBridg/files-manager/internal/configuration"

// Route binds a subject to the durable consumer that processes it.
type Route struct {
	Subject string
	Durable string
	Handler JobHandler
}

func Routes(cfg configuration.NATSConfig, thumbnails JobHandler) []Route {
	return []Route{
		// File events
		{Subject: cfg.Subject, Durable: cfg.Durable, Handler: thumbnails},
	}
}
