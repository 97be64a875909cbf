// AngelaMos | 2026
// dto.go

package quest

import (
	"github.com/angelamos/questledger/internal/progression"
)

type ClaimRequest struct {
	Wallet string `json:"wallet" validate:"required,max=128"`
}

type AwardResult struct {
	Awarded        bool             `json:"awarded"`
	XPGranted      int              `json:"xp_granted"`
	AlreadyClaimed bool             `json:"already_claimed"`
	TotalXP        int              `json:"total_xp"`
	Level          progression.Info `json:"level"`
}

type QuestResponse struct {
	ID              int64   `json:"id"`
	Code            string  `json:"code"`
	Title           string  `json:"title"`
	XPReward        int     `json:"xp_reward"`
	VerificationTag *string `json:"verification_tag,omitempty"`
}

func ToQuestResponse(q *Quest) QuestResponse {
	return QuestResponse{
		ID:              q.ID,
		Code:            q.Code,
		Title:           q.Title,
		XPReward:        q.XPReward,
		VerificationTag: q.VerificationTag,
	}
}

func ToQuestResponseList(quests []Quest) []QuestResponse {
	responses := make([]QuestResponse, 0, len(quests))
	for _, q := range quests {
		responses = append(responses, ToQuestResponse(&q))
	}
	return responses
}
