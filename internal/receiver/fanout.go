package receiver

import (
	"context"
	"errors"

	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

// Fanout delivers to every receiver in order. One failing receiver does not
// stop the others; their errors are joined.
type Fanout []platform.Receiver

// Receive hands d to each receiver.
func (f Fanout) Receive(ctx context.Context, d *platform.Delivery) error {
	var errs []error

	for _, r := range f {
		// Each receiver gets its own copy.
		delivery := *d
		if err := r.Receive(ctx, &delivery); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
