package dto

type Goal struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Benefits    []string `json:"benefits"`
}

type SetGoalRequest struct {
	Goal string `json:"goal" binding:"required,oneof=productivity health focus learning social creativity"`
}

type NeedsOnboardingResponse struct {
	NeedsOnboarding bool    `json:"needs_onboarding"`
	SelectedGoal    *string `json:"selected_goal,omitempty"`
}

type GenerateTasksResponse struct {
	Generated int    `json:"generated"`
	Goal      string `json:"goal"`
}
