package desktop

import (
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/shared/id"
	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

const (
	windowsPath      = "windows"
	activeWindowPath = "ui.activeWindow"
)

// storeOwned fields are stamped by the helpers and never taken from a patch.
var storeOwned = map[string]bool{"id": true, "zIndex": true}

// AddWindow stores a copy of data as a new window with a fresh z-index,
// makes it active and returns the created record. An id is assigned when
// data has none.
func (d *Desktop) AddWindow(data map[string]any) (types.Window, error) {
	w := types.Window(data).Clone()
	if w.ID() == "" {
		w["id"] = id.NewWindowID().String()
	}
	w["zIndex"] = d.store.NextZIndex()
	w["minimized"] = false
	w["maximized"] = false

	windows, err := d.list(windowsPath)
	if err != nil {
		return nil, err
	}
	windows = append(windows, map[string]any(w))
	if err := d.store.Set(windowsPath, windows, false); err != nil {
		return nil, err
	}
	if err := d.store.Set(activeWindowPath, w.ID(), false); err != nil {
		return nil, err
	}

	d.metrics.SetWindowsOpen(len(windows))
	d.logger.Debug("window added", zap.String("id", w.ID()), zap.Int("zIndex", w.ZIndex()))
	return w.Clone(), nil
}

// RemoveWindow drops the window with id. When it was active, the last
// remaining window in list order becomes active, or none when the list is
// empty. Stacking order is not consulted; use FocusWindow for that.
func (d *Desktop) RemoveWindow(windowID string) (bool, error) {
	windows, err := d.list(windowsPath)
	if err != nil {
		return false, err
	}
	idx := indexOf(windows, windowID)
	if idx < 0 {
		return false, nil
	}
	windows = append(windows[:idx:idx], windows[idx+1:]...)
	if err := d.store.Set(windowsPath, windows, false); err != nil {
		return false, err
	}
	d.metrics.SetWindowsOpen(len(windows))

	if active, _ := d.store.Get(activeWindowPath); active == windowID {
		var next any
		if len(windows) > 0 {
			next = recordID(windows[len(windows)-1])
		}
		if err := d.store.Set(activeWindowPath, next, false); err != nil {
			return true, err
		}
	}
	return true, nil
}

// FocusWindow raises the window above every other, restores it if it was
// minimized and makes it active.
func (d *Desktop) FocusWindow(windowID string) (bool, error) {
	ok, err := d.updateWindow(windowID, func(w map[string]any) {
		w["zIndex"] = d.store.NextZIndex()
		w["minimized"] = false
	})
	if !ok || err != nil {
		return ok, err
	}
	return true, d.store.Set(activeWindowPath, windowID, false)
}

// MinimizeWindow minimizes the window. If it was active, no window is.
func (d *Desktop) MinimizeWindow(windowID string) (bool, error) {
	ok, err := d.updateWindow(windowID, func(w map[string]any) {
		w["minimized"] = true
	})
	if !ok || err != nil {
		return ok, err
	}
	if active, _ := d.store.Get(activeWindowPath); active == windowID {
		return true, d.store.Set(activeWindowPath, nil, false)
	}
	return true, nil
}

// ToggleMaximize flips the maximized flag.
func (d *Desktop) ToggleMaximize(windowID string) (bool, error) {
	return d.updateWindow(windowID, func(w map[string]any) {
		w["maximized"] = !types.Window(w).Maximized()
	})
}

// UpdateWindow merges patch into the window. id and zIndex are owned by the
// helpers and ignored.
func (d *Desktop) UpdateWindow(windowID string, patch map[string]any) (types.Window, bool, error) {
	var updated types.Window
	ok, err := d.updateWindow(windowID, func(w map[string]any) {
		for k, v := range patch {
			if !storeOwned[k] {
				w[k] = v
			}
		}
		updated = types.Window(w).Clone()
	})
	return updated, ok, err
}

// Window returns a copy of the window with id.
func (d *Desktop) Window(windowID string) (types.Window, bool) {
	windows, _ := d.list(windowsPath)
	idx := indexOf(windows, windowID)
	if idx < 0 {
		return nil, false
	}
	return types.Window(cloneRecord(windows[idx])), true
}

// Windows returns copies of every open window in list order. A windows
// value that is not a list reads as no windows.
func (d *Desktop) Windows() []types.Window {
	windows, _ := d.list(windowsPath)
	out := make([]types.Window, 0, len(windows))
	for _, w := range windows {
		if _, ok := record(w); ok {
			out = append(out, types.Window(cloneRecord(w)))
		}
	}
	return out
}

func (d *Desktop) updateWindow(windowID string, fn func(w map[string]any)) (bool, error) {
	windows, err := d.list(windowsPath)
	if err != nil {
		return false, err
	}
	idx := indexOf(windows, windowID)
	if idx < 0 {
		return false, nil
	}
	w := cloneRecord(windows[idx])
	fn(w)
	windows[idx] = w
	if err := d.store.Set(windowsPath, windows, false); err != nil {
		return false, err
	}
	return true, nil
}
