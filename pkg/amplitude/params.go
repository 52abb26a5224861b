package amplitude

type RequestDecoratorFunc func([]string) []string

// Recommendations asks the profile endpoint to include the recommendations
// computed for the user.
func Recommendations() RequestDecoratorFunc {
	return func(params []string) []string {
		return append(params, "get_recs=true")
	}
}

// AmplitudeProperties asks the profile endpoint to include the tracked
// user properties.
func AmplitudeProperties() RequestDecoratorFunc {
	return func(params []string) []string {
		return append(params, "get_amp_props=true")
	}
}

// CohortIDs asks the profile endpoint to include the cohorts the user is a
// member of.
func CohortIDs() RequestDecoratorFunc {
	return func(params []string) []string {
		return append(params, "get_cohort_ids=true")
	}
}
