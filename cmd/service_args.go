package cmd

import (
	"time"

	"github.com/isometry/zadarma-go/internal/config"
	"github.com/isometry/zadarma-go/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&config.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The listen address of the webhook receiver (default all interfaces)",
		Short:       helpers.Ptr("H"),
	},
	&config.Service.Port: {
		Name:        "service-host-port",
		Description: "The listen port of the webhook receiver",
		Short:       helpers.Ptr("p"),
	},
	&config.Service.Path: {
		Name:        "service-host-path",
		Description: "The URL path webhook deliveries are posted to",
		Short:       helpers.Ptr("P"),
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The I/O timeout of HTTP connections",
		Short:       helpers.Ptr("t"),
	},
}
