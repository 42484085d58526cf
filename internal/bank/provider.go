// Package bank implements the question bank provider: deterministic
// selection of question items from a reference pool.
package bank

import (
	"strings"

	"quest-quiz-service/internal/models"
)

// Provider selects questions from a fixed reference pool. Selection is pure
// and deterministic: identical inputs always yield identical output ordering,
// which is what makes session setup reproducible.
type Provider struct {
	pool []models.QuestionItem
}

// NewProvider builds a provider over the given pool. Items are normalized
// (canonical true/false choices) and items whose correct answer does not
// reference a real choice are dropped, so every item handed to a session
// satisfies the pool invariant.
func NewProvider(pool []models.QuestionItem) *Provider {
	valid := make([]models.QuestionItem, 0, len(pool))
	for _, item := range pool {
		if item.Valid() {
			valid = append(valid, item)
		}
	}
	return &Provider{pool: valid}
}

// PoolSize returns the number of usable items in the pool.
func (p *Provider) PoolSize() int {
	return len(p.pool)
}

// SelectQuestions filters the pool by subject, topic substring, and
// difficulty ceiling, then takes the first count items in pool order.
//
// If the combined filter matches nothing, selection falls back to filtering
// by subject alone, so a request never comes back empty as long as the
// subject has any questions at all. An empty result therefore means the
// subject itself has no items, which callers must treat as a setup failure.
func (p *Provider) SelectQuestions(subject, topic string, count, difficultyCeiling int) []models.QuestionItem {
	if count <= 0 {
		return nil
	}

	matched := p.filter(subject, topic, difficultyCeiling)
	if len(matched) == 0 {
		// Fallback drops both the topic and the difficulty constraint.
		matched = p.filter(subject, "", 0)
	}

	if len(matched) > count {
		matched = matched[:count]
	}
	return matched
}

// Distribution reports how many pool items per difficulty level match the
// subject, for pool inspection endpoints.
func (p *Provider) Distribution(subject string) map[int]int {
	counts := make(map[int]int)
	for _, item := range p.pool {
		if subject != "" && !strings.EqualFold(item.Subject, subject) {
			continue
		}
		counts[item.Difficulty]++
	}
	return counts
}

func (p *Provider) filter(subject, topic string, difficultyCeiling int) []models.QuestionItem {
	var matched []models.QuestionItem
	for _, item := range p.pool {
		if subject != "" && !strings.EqualFold(item.Subject, subject) {
			continue
		}
		if topic != "" && !containsFold(item.Topic, topic) {
			continue
		}
		if difficultyCeiling > 0 && item.Difficulty > difficultyCeiling {
			continue
		}
		matched = append(matched, item)
	}
	return matched
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
