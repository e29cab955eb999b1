package account

import (
	"time"

	"github.com/jonathan/hiredoor/internal/types"
)

// Summary is the usage state derived from a user record.
type Summary struct {
	Plan              Plan
	IsSubscribed      bool
	IsFree            bool
	IsExpired         bool
	TotalTokens       int
	IsOutOfTokens     bool
	NeedsSubscription bool
	CancelAt          *time.Time
	IsCancelling      bool

	AIEmailLimit       int
	AIEmailsUsed       int
	AIEmailsRemaining  int
	CanGenerateAIEmail bool
}

// Summarize derives the usage state of user at time now. A nil user is treated
// as a free account with no tokens.
func Summarize(user *types.UserResponse, now time.Time) Summary {
	var u types.UserResponse
	if user != nil {
		u = *user
	}

	plan := Plan(u.Plan)
	if plan == "" {
		plan = PlanFree
	}

	s := Summary{
		Plan:         plan,
		IsSubscribed: plan.Subscribable(),
		IsFree:       plan == PlanFree,
		IsExpired:    plan == PlanExpired,
		TotalTokens:  u.TokensRemaining + u.BonusTokens,
		CancelAt:     u.CancelAt,
	}
	s.IsOutOfTokens = s.TotalTokens <= 0
	s.IsCancelling = s.CancelAt != nil && s.IsSubscribed
	s.NeedsSubscription = s.IsExpired || (s.IsFree && s.IsOutOfTokens)

	s.AIEmailLimit = DailyAIEmailLimit(plan)
	// The daily counter is stale once its reset time has passed.
	if u.AIEmailsResetAt != nil && now.Before(*u.AIEmailsResetAt) {
		s.AIEmailsUsed = u.AIEmailsToday
	}
	s.AIEmailsRemaining = max(0, s.AIEmailLimit-s.AIEmailsUsed)
	s.CanGenerateAIEmail = s.AIEmailLimit > 0 && s.AIEmailsUsed < s.AIEmailLimit
	return s
}
