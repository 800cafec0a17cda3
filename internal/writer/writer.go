// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"strings"

	"github.com/tamzrod/posturelink/internal/display"
)

// Multi fans one view out to every sink. A failing sink does not stop the
// others; errors are joined.
type Multi []Sink

func (m Multi) Show(ctx context.Context, v display.View) error {
	var errs []string
	for _, s := range m {
		if err := s.Show(ctx, v); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}
