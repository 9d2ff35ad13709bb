package sweep

import (
	"context"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

const oidSysName = ".1.3.6.1.2.1.1.5.0"

// SNMPHint resolves a device name by querying sysName over SNMP v2c with
// the public community. Most consumer gear does not answer, so the timeout
// is kept short and every failure is silent.
type SNMPHint struct {
	community string
	timeout   time.Duration
	logger    *zap.Logger
}

var _ NameHint = (*SNMPHint)(nil)

// NewSNMPHint creates an SNMPHint. community defaults to "public".
func NewSNMPHint(community string, logger *zap.Logger) *SNMPHint {
	if community == "" {
		community = "public"
	}
	return &SNMPHint{
		community: community,
		timeout:   500 * time.Millisecond,
		logger:    logger,
	}
}

// HostName implements NameHint.
func (h *SNMPHint) HostName(ctx context.Context, addr string) string {
	client := &gosnmp.GoSNMP{
		Target:    addr,
		Port:      161,
		Community: h.community,
		Version:   gosnmp.Version2c,
		Timeout:   h.timeout,
		Retries:   0,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}

	if err := client.Connect(); err != nil {
		return ""
	}
	defer client.Conn.Close()

	result, err := client.Get([]string{oidSysName})
	if err != nil || result.Error != gosnmp.NoError {
		return ""
	}

	for _, v := range result.Variables {
		if v.Type == gosnmp.OctetString {
			if name, ok := v.Value.([]byte); ok && len(name) > 0 {
				h.logger.Debug("snmp sysName resolved",
					zap.String("addr", addr),
					zap.ByteString("name", name))
				return string(name)
			}
		}
	}
	return ""
}
