// Package account describes subscription plans and the usage state derived from the user record.
package account

import "fmt"

// Plan is the user's subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanPower   Plan = "power"
	PlanExpired Plan = "expired"
)

// PlanConfig describes a plan available for subscription.
type PlanConfig struct {
	ID           Plan
	Name         string
	Price        int
	Tokens       int
	DailyAIEmail int
	Description  string
	Popular      bool
}

// Plans lists the subscribable plans, cheapest first.
var Plans = []PlanConfig{
	{ID: PlanStarter, Name: "Starter", Price: 15, Tokens: 25, DailyAIEmail: 15, Description: "Great for occasional job searching"},
	{ID: PlanPro, Name: "Pro", Price: 35, Tokens: 75, DailyAIEmail: 30, Description: "Best for active job seekers", Popular: true},
	{ID: PlanPower, Name: "Power", Price: 59, Tokens: 150, DailyAIEmail: 50, Description: "For high-volume outreach"},
}

// CreditPack is a one-off token purchase, available to subscribers only.
type CreditPack struct {
	Tokens int
	Price  int
}

// ID is the value sent as the checkout token pack.
func (p CreditPack) ID() string {
	return fmt.Sprint(p.Tokens)
}

// CreditPacks lists the purchasable token packs.
var CreditPacks = []CreditPack{
	{Tokens: 50, Price: 15},
	{Tokens: 100, Price: 25},
}

var dailyAIEmailLimits = map[Plan]int{
	PlanFree:    0,
	PlanExpired: 0,
	PlanStarter: 15,
	PlanPro:     30,
	PlanPower:   50,
}

// DailyAIEmailLimit returns how many AI emails the plan allows per day.
func DailyAIEmailLimit(p Plan) int {
	return dailyAIEmailLimits[p]
}

// Subscribable reports whether p can be bought.
func (p Plan) Subscribable() bool {
	return p == PlanStarter || p == PlanPro || p == PlanPower
}

// PlanByID finds a subscribable plan.
func PlanByID(id string) (PlanConfig, bool) {
	for _, p := range Plans {
		if string(p.ID) == id {
			return p, true
		}
	}
	return PlanConfig{}, false
}

// CreditPackByTokens finds a credit pack by its token count.
func CreditPackByTokens(tokens int) (CreditPack, bool) {
	for _, p := range CreditPacks {
		if p.Tokens == tokens {
			return p, true
		}
	}
	return CreditPack{}, false
}
