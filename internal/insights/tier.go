package insights

// Tier is the analytics entitlement derived from a vendor's subscription.
// Tiers nest: each one includes every metric of the tiers below it.
type Tier string

// Insight tiers, lowest first.
const (
	TierNone  Tier = "none"
	TierBasic Tier = "basic"
	TierPro   Tier = "pro"
	TierBoss  Tier = "boss"
)

// TierFromSubscription maps a subscription level to its insight tier. Free and
// unrecognized subscriptions get no insights.
func TierFromSubscription(subscription string) Tier {
	switch subscription {
	case "basic":
		return TierBasic
	case "pro":
		return TierPro
	case "boss":
		return TierBoss
	default:
		return TierNone
	}
}

// Includes reports whether t grants at least the metrics of other.
func (t Tier) Includes(other Tier) bool {
	return t.rank() >= other.rank()
}

func (t Tier) rank() int {
	switch t {
	case TierBasic:
		return 1
	case TierPro:
		return 2
	case TierBoss:
		return 3
	default:
		return 0
	}
}
