package socket

import (
	libval "github.com/go-playground/validator/v10"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/security"
)

// TLSConfig is the TLS leg of a Config: whether TLS applies to this
// socket and, if so, the declarative parameters to materialize.
type TLSConfig struct {
	Enabled    bool
	Parameters *security.Parameters
}

// Config names the network, address, and TLS legality of a socket
// before it is opened. QUIC is TLS-native and does not use TLSConfig.Enabled
// (its Parameters, if any, are taken unconditionally); UDP has no TLS
// wrapping in this adapter set (no DTLS adapter), so Validate rejects
// TLSConfig.Enabled on it.
type Config struct {
	Network adapter.Name `validate:"required"`
	Address string       `validate:"required"`
	TLS     TLSConfig
}

type validatedConfig struct {
	Network adapter.Name `validate:"required"`
	Address string       `validate:"required"`
}

// Validate checks field presence and protocol/TLS legality.
func (c Config) Validate() error {
	v := libval.New()
	if err := v.Struct(validatedConfig{Network: c.Network, Address: c.Address}); err != nil {
		return errors.New(errors.InvalidArgument, err)
	}

	if c.TLS.Enabled && c.Network == adapter.UDP {
		return errors.Newf(errors.InvalidArgument, "TLS is not supported over plain UDP sockets")
	}

	return nil
}
