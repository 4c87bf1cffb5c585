package model

// Permission represents a string code for a specific staff action.
type Permission string

const (
	// PermissionDashboardsRead allows viewing any learner's dashboard.
	PermissionDashboardsRead Permission = "dashboards:read"

	// PermissionLearnersRead allows viewing raw learner records such as usage logs.
	PermissionLearnersRead Permission = "learners:read"
)
