package update

import "fmt"

// TaskListPath is the supply chain's list of strategic actions.
func TaskListPath(supplyChain string) string {
	return fmt.Sprintf("/%s/", supplyChain)
}

// StartPath starts or resumes the current period's update of an action.
func StartPath(supplyChain, action string) string {
	return fmt.Sprintf("/%s/%s/updates/start/", supplyChain, action)
}

func StepPath(supplyChain, action, month string, step StepID) string {
	return fmt.Sprintf("/%s/%s/updates/%s/%s/", supplyChain, action, month, step)
}

func ReviewPath(supplyChain, action, month string) string {
	return fmt.Sprintf("/%s/%s/updates/%s/review/", supplyChain, action, month)
}

// SupplyChainSummaryPath lists the department's supply chains.
func SupplyChainSummaryPath() string {
	return "/summary/"
}

func StrategicActionsPath(supplyChain string) string {
	return fmt.Sprintf("/%s/strategic-actions/", supplyChain)
}

// CompletePath confirms every action of the supply chain has been updated.
func CompletePath(supplyChain string) string {
	return fmt.Sprintf("/%s/complete/", supplyChain)
}
