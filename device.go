package mobsquid

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// hostInfo is swapped in tests.
var hostInfo = host.InfoWithContext

const deviceInfoTimeout = 2 * time.Second

// deviceContext gathers host facts used to seed the session context.
func deviceContext(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, deviceInfoTimeout)
	defer cancel()

	info, err := hostInfo(ctx)
	if err != nil {
		return nil, err
	}

	facts := map[string]any{
		"os":               info.OS,
		"platform":         info.Platform,
		"platform_version": info.PlatformVersion,
		"kernel_arch":      info.KernelArch,
	}
	for k, v := range facts {
		if v == "" {
			delete(facts, k)
		}
	}
	return facts, nil
}
