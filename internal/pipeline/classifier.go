package pipeline

import (
	"strings"

	"github.com/talentbridge/backend/internal/models"
)

// Classifier maps an inbound chat message to a status transition, or reports
// no signal. Implementations are heuristics: false positives and negatives
// are an accepted product tradeoff, distinct from the deterministic manual
// and calendar triggers.
type Classifier interface {
	Classify(senderRole, body string) (newStatus string, ok bool)
}

// KeywordClassifier is a case-insensitive substring matcher. Offer and
// rejection language only counts when recruiter-authored; acceptance
// language only when candidate-authored.
type KeywordClassifier struct {
	OfferPhrases      []string
	RejectionPhrases  []string
	AcceptancePhrases []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		OfferPhrases: []string{
			"pleased to offer",
			"extend an offer",
			"offer you the position",
			"official offer",
		},
		RejectionPhrases: []string{
			"unfortunately",
			"not to move forward",
			"decided to pursue other candidates",
			"will not be proceeding",
		},
		AcceptancePhrases: []string{
			"i accept",
			"accept the offer",
			"happy to accept",
			"delighted to accept",
		},
	}
}

var _ Classifier = (*KeywordClassifier)(nil)

func (c *KeywordClassifier) Classify(senderRole, body string) (string, bool) {
	text := strings.ToLower(body)
	switch senderRole {
	case models.SenderRoleRecruiter:
		if containsAny(text, c.RejectionPhrases) {
			return models.StatusRejected, true
		}
		if containsAny(text, c.OfferPhrases) {
			return models.StatusOfferExtended, true
		}
	case models.SenderRoleCandidate:
		if containsAny(text, c.AcceptancePhrases) {
			return models.StatusOfferAccepted, true
		}
	}
	return "", false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
