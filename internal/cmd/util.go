package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/resdevops/maintenance-proxy/internal/server"
)

const (
	ENV_PREFIX = "MAINTENANCE_PROXY"
)

func registerConfigFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a configuration file (YAML, TOML or JSON)")

	flags.String("bind", "", "Address to bind listeners to (empty for all interfaces)")
	flags.Int("http-port", server.DefaultHttpPort, "Port to serve HTTP traffic on")
	flags.Int("https-port", server.DefaultHttpsPort, "Port to serve HTTPS traffic on, when TLS is configured")
	flags.Int("metrics-port", 0, "Publish metrics on the specified port (default zero to disable)")
	flags.Bool("http3", false, "Enable HTTP/3 on the HTTPS port")
	flags.Int("max-connections", 0, "Maximum simultaneous connections per listener (zero for no limit)")

	flags.String("tls-certificate-path", "", "Path to a TLS certificate")
	flags.String("tls-private-key-path", "", "Path to the TLS certificate's private key")
	flags.StringSlice("acme-host", []string{}, "Host to obtain a certificate for automatically (may be repeated)")
	flags.String("acme-directory", "", "ACME directory URL (empty for Let's Encrypt)")
	flags.String("acme-cache-path", "", "Where to store ACME certificates (empty to use default system paths)")

	flags.String("origin", "", "Origin to forward trusted requests to (host:port or URL)")
	flags.Duration("forward-timeout", 0, "How long to wait for the origin's response headers (zero for no limit)")
	flags.Int64("max-request-body", 0, "Largest request body forwarded to the origin, in bytes (zero for no limit)")
	flags.String("origin-health-path", "", "Path on the origin to health check (empty to disable)")
	flags.Duration("origin-health-interval", server.DefaultHealthCheckInterval, "Interval between origin health checks")
	flags.Duration("origin-health-timeout", server.DefaultHealthCheckTimeout, "Time each origin health check must complete in")

	flags.StringSlice("trusted", []string{}, "Client address or CIDR range allowed past the maintenance page (may be repeated)")
	flags.String("client-address-header", server.DefaultClientAddressHeader, "Header carrying the client address (empty to use the connecting peer)")

	flags.String("team", server.DefaultTeam, "Team named on the maintenance page")
	flags.String("background-path", "", "Image to use as the maintenance page background")
	flags.String("page-path", "", "HTML file to serve instead of the built-in maintenance page")
}

// loadConfig reads configuration with flag > environment > file > default
// precedence.
func loadConfig(flags *pflag.FlagSet) (*server.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	err := v.BindPFlags(flags)
	if err != nil {
		return nil, err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		err = v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("unable to read config file %s: %w", path, err)
		}
	}

	return &server.Config{
		Bind:           v.GetString("bind"),
		HttpPort:       v.GetInt("http-port"),
		HttpsPort:      v.GetInt("https-port"),
		MetricsPort:    v.GetInt("metrics-port"),
		HTTP3Enabled:   v.GetBool("http3"),
		MaxConnections: v.GetInt("max-connections"),

		TLSCertificatePath: v.GetString("tls-certificate-path"),
		TLSPrivateKeyPath:  v.GetString("tls-private-key-path"),
		ACMEHosts:          splitList(v.GetStringSlice("acme-host")),
		ACMEDirectory:      v.GetString("acme-directory"),
		ACMECachePath:      v.GetString("acme-cache-path"),

		OriginURL: v.GetString("origin"),
		OriginOptions: server.OriginOptions{
			ResponseTimeout:    v.GetDuration("forward-timeout"),
			MaxRequestBodySize: v.GetInt64("max-request-body"),
			HealthCheckConfig: server.HealthCheckConfig{
				Path:     v.GetString("origin-health-path"),
				Interval: v.GetDuration("origin-health-interval"),
				Timeout:  v.GetDuration("origin-health-timeout"),
			},
		},
		TrustedEntries:      splitList(v.GetStringSlice("trusted")),
		ClientAddressHeader: v.GetString("client-address-header"),
		PageOptions: server.PageOptions{
			Team:           v.GetString("team"),
			BackgroundPath: v.GetString("background-path"),
			DocumentPath:   v.GetString("page-path"),
		},
	}, nil
}

// splitList accepts both repeated values and comma separated ones, which is
// how lists arrive from environment variables.
func splitList(values []string) []string {
	result := []string{}
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
