package cache

import "context"

// Cache key names.
const (
	KeyKPISummary      = "kpi:summary"
	KeyKPIProductivity = "kpi:productivity"
	KeyProjectList     = "projects:list"
)

// Mutation names the kinds of writes that can stale cached aggregates.
type Mutation string

const (
	MutationTaskWrite       Mutation = "task_write"
	MutationTaskStateChange Mutation = "task_state_change"
	MutationProjectWrite    Mutation = "project_write"
	MutationBriefWrite      Mutation = "brief_write"
	MutationDoDWrite        Mutation = "dod_write"
	MutationSampleWrite     Mutation = "sample_write"
)

// invalidationTable maps each mutation to every cache key it can stale. Any
// new cached aggregate gets a row here rather than ad-hoc deletes at call
// sites.
var invalidationTable = map[Mutation][]string{
	MutationTaskWrite:       {KeyKPISummary, KeyKPIProductivity, KeyProjectList},
	MutationTaskStateChange: {KeyKPISummary, KeyKPIProductivity},
	MutationProjectWrite:    {KeyKPISummary, KeyKPIProductivity, KeyProjectList},
	MutationBriefWrite:      {KeyKPISummary, KeyKPIProductivity},
	MutationDoDWrite:        {KeyKPISummary, KeyKPIProductivity},
	MutationSampleWrite:     {KeyKPISummary, KeyKPIProductivity},
}

// KeysFor returns the cache keys staled by the mutation.
func KeysFor(m Mutation) []string {
	return invalidationTable[m]
}

// Invalidate drops every cache entry the mutation can have staled.
func (c *Cache) Invalidate(ctx context.Context, m Mutation) {
	c.Delete(ctx, KeysFor(m)...)
}
