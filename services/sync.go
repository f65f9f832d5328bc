package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Remote collection names
const (
	transactionsCollection  = "transactions"
	goalsCollection         = "goals"
	subscriptionsCollection = "subscriptions"
	usersCollection         = "users"
)

// Subscriptions cap their live result sets; personal data never gets
// near this, it only guards runaway collections.
const maxSubscriptionResults = 500

const localIDPrefix = "local_"

// newLocalID builds an unconfirmed temporary identifier. The timestamp
// keeps temp ids monotonically distinguishable, the uuid fragment keeps
// two adds within the same nanosecond distinct.
func newLocalID() string {
	return fmt.Sprintf("%s%d_%s", localIDPrefix, time.Now().UnixNano(), uuid.New().String()[:8])
}

// IsLocalID reports whether id is a temporary identifier that has not
// been confirmed by the remote store yet.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// Cache keys are scoped per owner so two accounts on one device never
// see each other's data.
func transactionsKey(ownerID string) string { return "user_transactions_" + ownerID }
func goalsKey(ownerID string) string        { return "user_goals_" + ownerID }
func subscriptionsKey(ownerID string) string {
	return "user_subscriptions_" + ownerID
}
func budgetKey(ownerID string) string { return "user_budget_" + ownerID }

// ---- document field accessors ----
//
// Remote documents arrive as map[string]any with times already
// normalized to time.Time by the Remote implementation; values that
// were replayed from the cache may still be RFC 3339 strings. These
// accessors fold both representations down to native types at the
// service boundary so nothing downstream inspects representations.

func docString(d Doc, key string) string {
	s, _ := d[key].(string)
	return s
}

func docInt(d Doc, key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func docDecimal(d Doc, key string) decimal.Decimal {
	switch v := d[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int32:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		dec, err := decimal.NewFromString(v)
		if err == nil {
			return dec
		}
	}
	return decimal.Zero
}

func docTime(d Doc, key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// normalizeDocTimes re-parses RFC 3339 strings in a payload that went
// through the JSON round-trip of the pending queue, so a replayed
// create stores real datetimes remotely.
func normalizeDocTimes(d Doc, fields ...string) Doc {
	for _, f := range fields {
		if s, ok := d[f].(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				d[f] = t
			}
		}
	}
	return d
}
