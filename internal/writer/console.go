// internal/writer/console.go
package writer

import (
	"context"
	"fmt"
	"io"

	"github.com/tamzrod/posturelink/internal/display"
)

// Console prints one status line per visible change.
type Console struct {
	w       io.Writer
	last    display.View
	started bool
}

func NewConsole(w io.Writer) *Console { return &Console{w: w} }

func (c *Console) Show(_ context.Context, v display.View) error {
	if c.started && !v.Changed(c.last) {
		return nil
	}
	c.started = true
	c.last = v

	link := "--"
	if v.Connected {
		link = "ok"
	}
	_, err := fmt.Fprintf(c.w, "%-16s link=%s P:%.0f R:%.0f bat=%d%% water=%d/8 next=%s cal=%s\n",
		v.Header(), link, v.Pitch, v.Roll, v.Battery, v.Drinks, v.WaterClock, v.CalibrateLabel())
	return err
}
