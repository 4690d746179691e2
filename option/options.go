package option

import (
	"bytes"
	"context"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/json"
)

type Options struct {
	Schema                  string        `json:"$schema,omitempty"`
	Log                     *LogOptions   `json:"log,omitempty"`
	Environment             string        `json:"environment,omitempty"`
	UserAgent               string        `json:"user_agent,omitempty"`
	Proxy                   *ProxyOptions `json:"proxy,omitempty"`
	CensorshipCircumvention bool          `json:"censorship_circumvention,omitempty"`
	DisableIPv6             bool          `json:"disable_ipv6,omitempty"`
	DNSServers              []string      `json:"dns_servers,omitempty"`
}

type LogOptions struct {
	Disabled     bool   `json:"disabled,omitempty"`
	Level        string `json:"level,omitempty"`
	Output       string `json:"output,omitempty"`
	Timestamp    bool   `json:"timestamp,omitempty"`
	DisableColor bool   `json:"-"`
}

func ParseOptions(ctx context.Context, content []byte) (Options, error) {
	var options Options
	decoder := json.NewDecoderContext(ctx, bytes.NewReader(content))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&options)
	if err != nil {
		return Options{}, E.Cause(err, "decode options")
	}
	return options, nil
}
