// Package diskspace reports free space of the filesystem holding a path.
package diskspace

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/disk"
)

const GiB = 1 << 30

type Prober struct{}

func New() *Prober {
	return &Prober{}
}

// Free returns the number of bytes available to an unprivileged user.
func (p *Prober) Free(ctx context.Context, path string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to query disk usage of %s", path)
	}

	return usage.Free, nil
}

// BytesFromGB converts a (fractional) amount of gigabytes to bytes.
func BytesFromGB(gb float64) uint64 {
	if gb <= 0 {
		return 0
	}

	return uint64(gb * GiB)
}
