package desktop

import (
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/infrastructure/events"
)

const achievementsPath = "achievements"

// UnlockAchievement records the achievement once. It returns false without
// writing when the id is already unlocked; otherwise it persists the list
// and emits achievement:unlock.
func (d *Desktop) UnlockAchievement(achievementID string) (bool, error) {
	unlocked, err := d.list(achievementsPath)
	if err != nil {
		return false, err
	}
	if containsID(unlocked, achievementID) {
		return false, nil
	}
	unlocked = append(unlocked, achievementID)
	if err := d.store.Set(achievementsPath, unlocked, true); err != nil {
		return false, err
	}

	d.metrics.IncAchievementsUnlocked()
	d.logger.Info("achievement unlocked", zap.String("id", achievementID))
	if d.emitter != nil {
		d.emitter.Emit(events.TopicAchievementUnlock, events.AchievementUnlock{ID: achievementID})
	}
	return true, nil
}

// HasAchievement reports whether the id is unlocked.
func (d *Desktop) HasAchievement(achievementID string) bool {
	items, _ := d.list(achievementsPath)
	return containsID(items, achievementID)
}

// Achievements returns the unlocked ids in unlock order.
func (d *Desktop) Achievements() []string {
	items, _ := d.list(achievementsPath)
	out := make([]string, 0, len(items))
	for _, a := range items {
		if s, ok := a.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsID(items []any, achievementID string) bool {
	for _, a := range items {
		if a == achievementID {
			return true
		}
	}
	return false
}
