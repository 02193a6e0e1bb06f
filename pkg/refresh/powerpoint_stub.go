//go:build !windows

package refresh

import "context"

// 🏭 NewPowerPointFactory is only functional on Windows, where the
// presentation application is automated over COM.
func NewPowerPointFactory() Factory {
	return func(ctx context.Context) (Automation, error) {
		return nil, ErrUnsupported
	}
}
