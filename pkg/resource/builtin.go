package resource

// Resource names
const (
	Users        = "users"
	Logs         = "logs"
	Projects     = "projects"
	Transactions = "transactions"
	Campaigns    = "campaigns"
	Webhooks     = "webhooks"
)

// Builtins returns the default specs for every mock collection
func Builtins() []Spec {
	return []Spec{
		{
			Name:           Users,
			TimestampField: "created_at",
			DefaultLimit:   10,
			MaxLimit:       100,
			Filters:        []string{"role", "status", "project_id"},
			Search:         []string{"name", "email"},
			Sortable:       []string{"name", "email", "last_login"},
			Seed:           25,
			NewBody:        func() interface{} { return &UserBody{} },
		},
		{
			Name:           Logs,
			TimestampField: "timestamp",
			DefaultLimit:   50,
			MaxLimit:       500,
			Filters:        []string{"level", "channel", "userId", "status"},
			Search:         []string{"message", "recipient", "event"},
			Sortable:       []string{"level", "channel"},
			ReadOnly:       true,
			Seed:           200,
		},
		{
			Name:           Projects,
			TimestampField: "created_at",
			DefaultLimit:   10,
			MaxLimit:       100,
			Filters:        []string{"status", "owner_id", "environment"},
			Search:         []string{"name", "description"},
			Sortable:       []string{"name"},
			Seed:           8,
			NewBody:        func() interface{} { return &ProjectBody{} },
		},
		{
			Name:           Transactions,
			TimestampField: "timestamp",
			DefaultLimit:   20,
			MaxLimit:       200,
			Filters:        []string{"type", "status", "currency", "userId"},
			Search:         []string{"description", "reference"},
			Sortable:       []string{"amount"},
			ReadOnly:       true,
			Seed:           120,
		},
		{
			Name:           Campaigns,
			TimestampField: "created_at",
			DefaultLimit:   10,
			MaxLimit:       100,
			Filters:        []string{"status", "channel", "project_id"},
			Search:         []string{"name", "description"},
			Sortable:       []string{"name", "audience_size", "scheduled_at"},
			Seed:           15,
			NewBody:        func() interface{} { return &CampaignBody{} },
		},
		{
			Name:           Webhooks,
			TimestampField: "created_at",
			DefaultLimit:   10,
			MaxLimit:       100,
			Filters:        []string{"status", "project_id"},
			Search:         []string{"url", "description"},
			Seed:           6,
			NewBody:        func() interface{} { return &WebhookBody{} },
		},
	}
}
