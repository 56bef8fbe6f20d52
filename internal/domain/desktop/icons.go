package desktop

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

const (
	iconsPath         = "icons"
	recycledPath      = "recycledItems"
	filePositionsPath = "filePositions"
)

// Icons returns the desktop icons.
func (d *Desktop) Icons() []types.Icon {
	icons, _ := state.Icons.Get(d.store)
	return icons
}

// AddIcon appends icon to the desktop.
func (d *Desktop) AddIcon(icon types.Icon) error {
	if icon.ID == "" {
		return ErrInvalidIcon
	}
	icons, err := d.list(iconsPath)
	if err != nil {
		return err
	}
	if indexOf(icons, icon.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateIcon, icon.ID)
	}
	rec, err := state.Normalize(icon)
	if err != nil {
		return err
	}
	return d.store.Set(iconsPath, append(icons, rec), true)
}

// RemoveIcon deletes the icon without recycling it.
func (d *Desktop) RemoveIcon(iconID string) (bool, error) {
	icons, err := d.list(iconsPath)
	if err != nil {
		return false, err
	}
	idx := indexOf(icons, iconID)
	if idx < 0 {
		return false, nil
	}
	icons = append(icons[:idx:idx], icons[idx+1:]...)
	return true, d.store.Set(iconsPath, icons, true)
}

// MoveIcon places the icon at x, y.
func (d *Desktop) MoveIcon(iconID string, x, y float64) (bool, error) {
	icons, err := d.list(iconsPath)
	if err != nil {
		return false, err
	}
	idx := indexOf(icons, iconID)
	if idx < 0 {
		return false, nil
	}
	icon := cloneRecord(icons[idx])
	icon["x"] = x
	icon["y"] = y
	icons[idx] = icon
	return true, d.store.Set(iconsPath, icons, true)
}

// SetFilePosition records a layout override for a file icon. File paths
// contain dots, so the whole map is rewritten instead of addressing the
// entry by path.
func (d *Desktop) SetFilePosition(filePath string, x, y float64) error {
	v, _ := d.store.GetCopy(filePositionsPath)
	positions, _ := v.(map[string]any)
	if positions == nil {
		positions = make(map[string]any, 1)
	}
	positions[filePath] = map[string]any{"x": x, "y": y}
	return d.store.Set(filePositionsPath, positions, true)
}

// RecycleIcon moves the icon with id to the end of the recycle bin. It is a
// no-op reporting false when no icon has that id.
func (d *Desktop) RecycleIcon(iconID string) (bool, error) {
	icons, err := d.list(iconsPath)
	if err != nil {
		return false, err
	}
	idx := indexOf(icons, iconID)
	if idx < 0 {
		return false, nil
	}
	recycled, err := d.list(recycledPath)
	if err != nil {
		return false, err
	}
	item := icons[idx]
	icons = append(icons[:idx:idx], icons[idx+1:]...)
	recycled = append(recycled, item)

	if err := d.store.Set(iconsPath, icons, true); err != nil {
		return false, err
	}
	if err := d.store.Set(recycledPath, recycled, true); err != nil {
		return false, err
	}
	d.logger.Debug("icon recycled", zap.String("id", iconID))
	return true, nil
}

// RestoreIcon moves the recycle bin entry at index to the end of the
// desktop icons. The index is positional; callers holding a stale index
// restore whatever now sits there.
func (d *Desktop) RestoreIcon(index int) (bool, error) {
	recycled, err := d.list(recycledPath)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(recycled) {
		return false, nil
	}
	icons, err := d.list(iconsPath)
	if err != nil {
		return false, err
	}
	item := recycled[index]
	recycled = append(recycled[:index:index], recycled[index+1:]...)
	icons = append(icons, item)

	if err := d.store.Set(recycledPath, recycled, true); err != nil {
		return false, err
	}
	if err := d.store.Set(iconsPath, icons, true); err != nil {
		return false, err
	}
	return true, nil
}

// RecycledItems returns copies of the recycle bin entries.
func (d *Desktop) RecycledItems() []map[string]any {
	items, _ := d.list(recycledPath)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if _, ok := record(item); ok {
			out = append(out, cloneRecord(item))
		}
	}
	return out
}

// EmptyRecycleBin drops every recycled entry and returns how many there were.
func (d *Desktop) EmptyRecycleBin() (int, error) {
	items, err := d.list(recycledPath)
	if err != nil {
		return 0, err
	}
	n := len(items)
	if err := d.store.Set(recycledPath, []any{}, true); err != nil {
		return 0, err
	}
	return n, nil
}
