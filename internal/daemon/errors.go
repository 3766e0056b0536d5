package daemon

import (
	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/hostmux"
)

func errTabNotFound(id hostmux.TabID) error {
	return errors.Errorf("tab %q not found", string(id))
}

func errPaneNotFound(id hostmux.PaneID) error {
	return errors.Errorf("pane %q not found", string(id))
}
