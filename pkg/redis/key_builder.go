package redis

import (
	"strconv"
	"strings"
)

const namespace = "fest"

// KeyBuilder namespaces cache keys by deployment so staging and production
// can share one Redis instance.
type KeyBuilder struct {
	prefix string
}

func NewKeyBuilder(environment string) *KeyBuilder {
	switch environment {
	case "development", "staging":
		return &KeyBuilder{prefix: "staging"}
	default:
		return &KeyBuilder{prefix: "prod"}
	}
}

// Prefix is the deployment segment every key starts with.
func (kb *KeyBuilder) Prefix() string {
	return kb.prefix
}

// BuildKey joins parts under the deployment prefix and the fest namespace.
func (kb *KeyBuilder) BuildKey(parts ...string) string {
	return kb.prefix + ":" + namespace + ":" + strings.Join(parts, ":")
}

func (kb *KeyBuilder) KeyEventsVerbose() string {
	return kb.BuildKey("events", "verbose")
}

func (kb *KeyBuilder) KeyEventByID(eventID string) string {
	return kb.BuildKey("event", eventID)
}

func (kb *KeyBuilder) KeyRoundResultsPage(roundID string, page, pageSize int) string {
	return kb.BuildKey("results", roundID, "p"+strconv.Itoa(page), "s"+strconv.Itoa(pageSize))
}

// KeyRoundResultsAll is a SCAN pattern matching every cached page of a round.
func (kb *KeyBuilder) KeyRoundResultsAll(roundID string) string {
	return kb.BuildKey("results", roundID, "*")
}
