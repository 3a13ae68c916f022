package dispatch

import (
	"context"

	"github.com/cory-johannsen/taleweaver/internal/game/tool"
)

// CheckRegistrations runs the table construction checks over names.
func CheckRegistrations(names []tool.Name) error {
	regs := make([]registration, len(names))
	for i, n := range names {
		regs[i] = registration{name: n, fn: func(context.Context, *request) (any, error) { return nil, nil }}
	}
	_, err := buildTable(regs)
	return err
}
