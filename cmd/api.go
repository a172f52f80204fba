package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/isometry/zadarma-go/internal/api"
	"github.com/isometry/zadarma-go/internal/query"
	"github.com/isometry/zadarma-go/internal/transport"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdAPI() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Call the Zadarma API",
	}

	cmd.AddCommand(
		cmdAPICall(),
		apiInfoCommand("balance", "Show the account balance", (*api.API).GetBalance),
		apiInfoCommand("timezone", "Show the account timezone", (*api.API).GetTimezone),
		apiInfoCommand("tariff", "Show the current tariff", (*api.API).GetTariff),
		apiInfoCommand("sip", "List the SIP numbers", (*api.API).GetSIPs),
		apiInfoCommand("numbers", "List the direct numbers", (*api.API).GetDirectNumbers),
		cmdAPIPrice(),
		cmdAPISMS(),
		cmdAPICallback(),
	)
	return cmd
}

// apiSession resolves the credentials and returns the cached client pair.
func apiSession(ctx context.Context) (*transport.Client, *api.API, error) {
	aws, err := newAWSController(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create AWS controller")
	}
	zc, err := newZadarmaController(aws)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create zadarma controller")
	}
	client, err := zc.Transport(ctx)
	if err != nil {
		return nil, nil, err
	}
	a, err := zc.API(ctx)
	if err != nil {
		return nil, nil, err
	}
	return client, a, nil
}

func cmdAPICall() *cobra.Command {
	var (
		verb, format string
		data         []string
	)
	cmd := &cobra.Command{
		Use:   "call METHOD",
		Short: "Call an arbitrary API method, e.g. 'info/balance'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseData(data)
			if err != nil {
				return err
			}
			client, _, err := apiSession(cmd.Context())
			if err != nil {
				return err
			}

			method := strings.TrimPrefix(strings.Trim(args[0], "/"), api.Version+"/")
			resp, callErr := client.Call(cmd.Context(), api.MethodPath(method), params, verb, format)
			if resp != nil {
				if err = printBody(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			}
			printLimits(cmd.ErrOrStderr(), client.Limits())
			return callErr
		},
	}
	cmd.Flags().StringVarP(&verb, "request", "X", "GET", "The HTTP verb: GET, POST, PUT or DELETE")
	cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "A request parameter as key=value. Repeat for several parameters or array values")
	cmd.Flags().StringVar(&format, "format", transport.FormatJSON, "The response format: json or xml")
	return cmd
}

func apiInfoCommand[T any](use, short string, fn func(*api.API, context.Context) (T, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, a, err := apiSession(cmd.Context())
			if err != nil {
				return err
			}
			out, err := fn(a, cmd.Context())
			printLimits(cmd.ErrOrStderr(), client.Limits())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func cmdAPIPrice() *cobra.Command {
	var callerID string
	cmd := &cobra.Command{
		Use:   "price NUMBER",
		Short: "Show the price of a call to NUMBER",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, a, err := apiSession(cmd.Context())
			if err != nil {
				return err
			}
			price, err := a.GetPrice(cmd.Context(), args[0], callerID)
			printLimits(cmd.ErrOrStderr(), client.Limits())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), price)
		},
	}
	cmd.Flags().StringVar(&callerID, "caller-id", "", "The caller ID the call would be made with")
	return cmd
}

func cmdAPISMS() *cobra.Command {
	var message, callerID string
	cmd := &cobra.Command{
		Use:   "sms NUMBER...",
		Short: "Send an SMS to one or more numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return errors.New("missing --message")
			}
			client, a, err := apiSession(cmd.Context())
			if err != nil {
				return err
			}
			sms, err := a.SendSMS(cmd.Context(), args, message, callerID)
			printLimits(cmd.ErrOrStderr(), client.Limits())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sms)
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "The message text")
	cmd.Flags().StringVar(&callerID, "caller-id", "", "The sender number")
	return cmd
}

func cmdAPICallback() *cobra.Command {
	var (
		sip       string
		predicted bool
	)
	cmd := &cobra.Command{
		Use:   "callback FROM TO",
		Short: "Request a callback from FROM to TO",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, a, err := apiSession(cmd.Context())
			if err != nil {
				return err
			}
			cb, err := a.RequestCallback(cmd.Context(), args[0], args[1], sip, predicted)
			printLimits(cmd.ErrOrStderr(), client.Limits())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cb)
		},
	}
	cmd.Flags().StringVar(&sip, "sip", "", "The SIP number the call is made from")
	cmd.Flags().BoolVar(&predicted, "predicted", false, "Dial TO first and FROM once TO answers")
	return cmd
}

// parseData turns key=value pairs into params, keeping their order.
func parseData(data []string) (query.Params, error) {
	params := make(query.Params, 0, len(data))
	for _, kv := range data {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("malformed parameter %q, expected key=value", kv)
		}
		params = append(params, query.Param{Key: key, Value: value})
	}
	return params, nil
}

func printBody(w io.Writer, resp *transport.Response) error {
	if resp.Format == transport.FormatJSON {
		var buf bytes.Buffer
		if json.Indent(&buf, resp.Body, "", "  ") == nil {
			buf.WriteByte('\n')
			_, err := buf.WriteTo(w)
			return err
		}
	}
	_, err := fmt.Fprintln(w, string(resp.Body))
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLimits(w io.Writer, limits transport.RateLimits) {
	if len(limits) == 0 {
		return
	}
	pairs := make([]string, 0, len(limits))
	for _, k := range slices.Sorted(maps.Keys(limits)) {
		pairs = append(pairs, fmt.Sprintf("%s=%d", k, limits[k]))
	}
	_, _ = fmt.Fprintf(w, "rate limits: %s\n", strings.Join(pairs, " "))
}
