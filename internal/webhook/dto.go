// AngelaMos | 2026
// dto.go

package webhook

type Result struct {
	OK               bool   `json:"ok"`
	Status           string `json:"status"`
	IdempotentReplay bool   `json:"idempotent_replay"`
}
