package service

import "math"

// MaxLevel caps the leveling curve; XP keeps accumulating past it but the
// level no longer changes.
const MaxLevel = 100

// XP awarded per task priority, fixed at completion time.
const (
	ExperienceLowPriority    = 5
	ExperienceMediumPriority = 10
	ExperienceHighPriority   = 20
)

// LevelStatus describes where a user sits on the leveling curve.
type LevelStatus struct {
	Level                 int     `json:"level"`
	ExperiencePoints      int     `json:"experience_points"`
	ExperienceToNextLevel int     `json:"experience_to_next_level"`
	NextLevelAt           int     `json:"next_level_at"`
	Progress              float64 `json:"progress"` // 0-100 toward the next level
}

// experienceForLevel is the XP needed to advance from level-1 to level.
func experienceForLevel(level int) int {
	return 50 + 50*level
}

// TotalExperienceForLevel returns the cumulative XP threshold for a level:
// the sum of experienceForLevel(1..level). Level 0 requires 0 XP.
func TotalExperienceForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	// Closed form of sum(50+50k) for k=1..level
	return 25 * level * (level + 3)
}

// LevelForExperience returns the highest level whose cumulative threshold the
// given XP meets, capped at MaxLevel.
func LevelForExperience(xp int) int {
	level := 0
	total := 0
	for l := 1; l <= MaxLevel; l++ {
		total += experienceForLevel(l)
		if xp < total {
			break
		}
		level = l
	}
	return level
}

// ExperienceToNextLevel returns the XP still needed for the next level, or 0
// at the cap.
func ExperienceToNextLevel(xp int) int {
	level := LevelForExperience(xp)
	if level >= MaxLevel {
		return 0
	}
	return TotalExperienceForLevel(level+1) - xp
}

// LevelStatusForExperience computes the full leveling status for an XP total.
func LevelStatusForExperience(xp int) LevelStatus {
	level := LevelForExperience(xp)

	status := LevelStatus{
		Level:            level,
		ExperiencePoints: xp,
	}

	if level >= MaxLevel {
		status.NextLevelAt = TotalExperienceForLevel(MaxLevel)
		status.Progress = 100
		return status
	}

	floor := TotalExperienceForLevel(level)
	status.NextLevelAt = TotalExperienceForLevel(level + 1)
	status.ExperienceToNextLevel = status.NextLevelAt - xp
	status.Progress = float64(xp-floor) / float64(status.NextLevelAt-floor) * 100
	status.Progress = math.Round(status.Progress*100) / 100

	return status
}

// PriorityExperience maps a task priority to its completion XP.
func PriorityExperience(priority string) int {
	switch priority {
	case "low":
		return ExperienceLowPriority
	case "high":
		return ExperienceHighPriority
	default:
		return ExperienceMediumPriority
	}
}
