package cmd

import (
	"github.com/isometry/zadarma-go/internal/config"
	"github.com/isometry/zadarma-go/internal/runtime"
)

var lambdaEnvMapString = map[*string]boundEnvVar[string]{
	&config.Lambda.PayloadType: {
		Name: "lambda-payload-type",
		Description: "The invocation payload of 'lambda http'. Supported values are '" +
			runtime.PayloadTypeAPIGatewayV1 + "', '" + runtime.PayloadTypeAPIGatewayV2 + "' and '" + runtime.PayloadTypeLambdaURL + "'",
	},
}
