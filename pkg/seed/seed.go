// Package seed generates the deterministic mock data the admin API serves.
// The same seed and reference time always produce the same collections.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// ReferenceTime anchors every generated timestamp
var ReferenceTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// AdminEmail is the login of the first generated user, always an active admin
const AdminEmail = "ada.lovelace@cpaas.example"

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Linus", "Margaret", "Dennis", "Barbara", "Ken", "Radia", "Edsger", "Frances", "Tim", "Hedy", "Vint", "Katherine"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Torvalds", "Hamilton", "Ritchie", "Liskov", "Thompson", "Perlman", "Dijkstra", "Allen", "Berners-Lee", "Lamarr", "Cerf", "Johnson"}

	projectNames = []string{"Checkout Alerts", "Driver Dispatch", "OTP Gateway", "Support Desk", "Marketing Hub", "Clinic Reminders", "Fraud Watch", "Loyalty Program", "Field Service", "Status Page"}
	environments = []string{"production", "staging", "development"}

	roles        = []string{"admin", "developer", "developer", "viewer", "viewer"}
	userStatuses = []string{"active", "active", "active", "suspended", "invited"}

	logLevels   = []string{"info", "info", "info", "warn", "error", "debug"}
	logStatuses = []string{"delivered", "delivered", "sent", "queued", "failed"}
	providers   = []string{"twilio", "vonage", "sinch", "meta", "sendgrid"}

	txnTypes    = []string{"credit", "debit", "debit", "debit", "refund"}
	txnStatuses = []string{"completed", "completed", "completed", "pending", "failed"}
	currencies  = []string{"USD", "EUR", "GBP"}

	campaignStatuses = []string{"draft", "scheduled", "running", "paused", "completed"}
	campaignThemes   = []string{"Spring Sale", "Appointment Reminder", "Cart Recovery", "Welcome Series", "Survey", "Flash Deal", "Renewal Notice", "Product Launch"}

	channelLabels = map[string]string{
		"sms":      "SMS",
		"whatsapp": "WhatsApp",
		"voice":    "Voice call",
		"email":    "Email",
		"rcs":      "RCS",
	}
)

// Generator produces mock records from a seeded PRNG
type Generator struct {
	rng *rand.Rand
	ref time.Time

	userIDs    []string
	projectIDs []string
}

// NewGenerator creates a generator; ref anchors all timestamps
func NewGenerator(seed int64, ref time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		ref: ref.UTC(),
	}
}

// Generate builds every built-in collection sized by its Seed count.
// Specs for resources the generator does not know are skipped.
func (g *Generator) Generate(specs []resource.Spec) map[string][]domain.Record {
	counts := make(map[string]int, len(specs))
	for _, s := range specs {
		counts[s.Name] = s.Seed
	}

	// Ids are allocated up front so cross references resolve in any order
	g.userIDs = sequence("usr", counts[resource.Users], 3)
	g.projectIDs = sequence("prj", counts[resource.Projects], 2)

	out := make(map[string][]domain.Record, len(counts))
	for _, s := range specs {
		var records []domain.Record
		switch s.Name {
		case resource.Users:
			records = g.users(s.Seed)
		case resource.Projects:
			records = g.projects(s.Seed)
		case resource.Logs:
			records = g.logs(s.Seed)
		case resource.Transactions:
			records = g.transactions(s.Seed)
		case resource.Campaigns:
			records = g.campaigns(s.Seed)
		case resource.Webhooks:
			records = g.webhooks(s.Seed)
		default:
			continue
		}
		out[s.Name] = records
	}
	return out
}

// Populate fills every empty collection in repo with generated records and
// returns how many were created per collection. Non-empty collections, such
// as ones restored from a snapshot, are left untouched.
func Populate(ctx context.Context, repo domain.Repository, specs []resource.Spec, seed int64, logger *zap.Logger) (map[string]int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data := NewGenerator(seed, ReferenceTime).Generate(specs)

	created := make(map[string]int, len(data))
	for _, s := range specs {
		records, ok := data[s.Name]
		if !ok || len(records) == 0 {
			continue
		}
		existing, err := repo.List(ctx, s.Name)
		if err != nil {
			return created, fmt.Errorf("failed to list %s: %w", s.Name, err)
		}
		if len(existing) > 0 {
			logger.Debug("collection already populated", zap.String("collection", s.Name), zap.Int("records", len(existing)))
			continue
		}
		for _, rec := range records {
			if _, err := repo.Create(ctx, s.Name, rec); err != nil {
				return created, fmt.Errorf("failed to seed %s: %w", s.Name, err)
			}
			created[s.Name]++
		}
		logger.Info("seeded collection", zap.String("collection", s.Name), zap.Int("records", created[s.Name]))
	}
	return created, nil
}

func (g *Generator) users(n int) []domain.Record {
	out := make([]domain.Record, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		role := pick(g.rng, roles)
		status := pick(g.rng, userStatuses)
		if i == 0 {
			first, last, role, status = "Ada", "Lovelace", "admin", "active"
		}
		email := fmt.Sprintf("%s.%s@cpaas.example", strings.ToLower(first), strings.ToLower(strings.ReplaceAll(last, "-", "")))
		if i >= len(firstNames) {
			email = fmt.Sprintf("%s.%s%d@cpaas.example", strings.ToLower(first), strings.ToLower(strings.ReplaceAll(last, "-", "")), i)
		}
		created := g.ago(365 * 24 * time.Hour)
		rec := domain.Record{
			"id":         g.userIDs[i],
			"name":       first + " " + last,
			"email":      email,
			"role":       role,
			"status":     status,
			"phone":      fmt.Sprintf("+1555%07d", g.rng.IntN(10_000_000)),
			"created_at": stamp(created),
		}
		if len(g.projectIDs) > 0 {
			rec["project_id"] = pick(g.rng, g.projectIDs)
		}
		if status != "invited" {
			rec["last_login"] = stamp(g.between(created, g.ref))
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) projects(n int) []domain.Record {
	out := make([]domain.Record, 0, n)
	for i := 0; i < n; i++ {
		name := projectNames[i%len(projectNames)]
		status := "active"
		if g.rng.IntN(5) == 0 {
			status = "archived"
		}
		rec := domain.Record{
			"id":          g.projectIDs[i],
			"name":        name,
			"description": fmt.Sprintf("%s messaging for %s", channelLabels[pick(g.rng, resource.Channels)], strings.ToLower(name)),
			"status":      status,
			"environment": pick(g.rng, environments),
			"created_at":  stamp(g.ago(2 * 365 * 24 * time.Hour)),
		}
		if len(g.userIDs) > 0 {
			rec["owner_id"] = pick(g.rng, g.userIDs)
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) logs(n int) []domain.Record {
	out := make([]domain.Record, 0, n)
	at := g.ref
	for i := 0; i < n; i++ {
		at = at.Add(-time.Duration(1+g.rng.IntN(90)) * time.Minute)
		channel := pick(g.rng, resource.Channels)
		status := pick(g.rng, logStatuses)
		level := pick(g.rng, logLevels)
		if status == "failed" {
			level = "error"
		}
		event := logEvent(channel, status)
		recipient := g.recipient(channel)
		rec := domain.Record{
			"id":        fmt.Sprintf("log_%04d", i+1),
			"timestamp": stamp(at),
			"level":     level,
			"channel":   channel,
			"event":     event,
			"status":    status,
			"recipient": recipient,
			"message":   logMessage(channel, status, recipient),
			"metadata": map[string]interface{}{
				"provider": pick(g.rng, providers),
				"segments": float64(1 + g.rng.IntN(3)),
				"latency":  float64(20 + g.rng.IntN(900)),
			},
		}
		if len(g.userIDs) > 0 {
			rec["userId"] = pick(g.rng, g.userIDs)
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) transactions(n int) []domain.Record {
	out := make([]domain.Record, 0, n)
	at := g.ref
	for i := 0; i < n; i++ {
		at = at.Add(-time.Duration(1+g.rng.IntN(12)) * time.Hour)
		typ := pick(g.rng, txnTypes)
		amount := math.Round((5+g.rng.Float64()*495)*100) / 100
		var description string
		switch typ {
		case "credit":
			description = "Account top-up"
		case "refund":
			description = "Refund for failed deliveries"
		default:
			description = fmt.Sprintf("%s usage charges", strings.ToUpper(pick(g.rng, resource.Channels)))
		}
		rec := domain.Record{
			"id":          fmt.Sprintf("txn_%04d", i+1),
			"timestamp":   stamp(at),
			"type":        typ,
			"status":      pick(g.rng, txnStatuses),
			"currency":    pick(g.rng, currencies),
			"amount":      amount,
			"description": description,
			"reference":   fmt.Sprintf("INV-%06d", 100000+g.rng.IntN(900000)),
		}
		if len(g.userIDs) > 0 {
			rec["userId"] = pick(g.rng, g.userIDs)
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) campaigns(n int) []domain.Record {
	out := make([]domain.Record, 0, n)
	for i := 0; i < n; i++ {
		channel := pick(g.rng, resource.Channels)
		theme := campaignThemes[i%len(campaignThemes)]
		created := g.ago(180 * 24 * time.Hour)
		scheduled := created.Add(time.Duration(1+g.rng.IntN(30)) * 24 * time.Hour)
		rec := domain.Record{
			"id":            fmt.Sprintf("cmp_%03d", i+1),
			"name":          fmt.Sprintf("%s %s", theme, strings.ToUpper(channel)),
			"description":   fmt.Sprintf("%s campaign sent over %s", theme, channel),
			"channel":       channel,
			"status":        pick(g.rng, campaignStatuses),
			"audience_size": float64(100 * (1 + g.rng.IntN(500))),
			"scheduled_at":  stamp(scheduled),
			"created_at":    stamp(created),
		}
		if len(g.projectIDs) > 0 {
			rec["project_id"] = pick(g.rng, g.projectIDs)
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) webhooks(n int) []domain.Record {
	out := make([]domain.Record, 0, n)
	for i := 0; i < n; i++ {
		events := make([]interface{}, 0, 3)
		for _, e := range resource.WebhookEvents {
			if g.rng.IntN(2) == 0 {
				events = append(events, e)
			}
		}
		if len(events) == 0 {
			events = append(events, resource.WebhookEvents[0])
		}
		status := "active"
		if g.rng.IntN(4) == 0 {
			status = "disabled"
		}
		rec := domain.Record{
			"id":          fmt.Sprintf("whk_%02d", i+1),
			"url":         fmt.Sprintf("https://hooks.example.com/cpaas/%d", i+1),
			"description": fmt.Sprintf("Delivery receipts endpoint %d", i+1),
			"events":      events,
			"status":      status,
			"created_at":  stamp(g.ago(90 * 24 * time.Hour)),
		}
		if len(g.projectIDs) > 0 {
			rec["project_id"] = pick(g.rng, g.projectIDs)
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) recipient(channel string) string {
	if channel == "email" {
		return fmt.Sprintf("customer%d@mail.example", g.rng.IntN(1000))
	}
	return fmt.Sprintf("+44770%07d", g.rng.IntN(10_000_000))
}

// ago returns a random instant within window before the reference time
func (g *Generator) ago(window time.Duration) time.Time {
	return g.ref.Add(-time.Duration(g.rng.Int64N(int64(window))))
}

func (g *Generator) between(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(g.rng.Int64N(int64(span))))
}

func logEvent(channel, status string) string {
	switch {
	case channel == "voice" && status == "failed":
		return "call.failed"
	case channel == "voice":
		return "call.completed"
	case status == "failed":
		return "message.failed"
	case status == "delivered":
		return "message.delivered"
	default:
		return "message.sent"
	}
}

func logMessage(channel, status, recipient string) string {
	return fmt.Sprintf("%s to %s %s", channelLabels[channel], recipient, status)
}

func sequence(prefix string, n, width int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s_%0*d", prefix, width, i+1)
	}
	return ids
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
