package preferences

import (
	"errors"
	"time"
)

type PlanType string

const (
	PlanOrbit       PlanType = "orbit"
	PlanNovaMonthly PlanType = "nova_monthly"
	PlanNovaYearly  PlanType = "nova_yearly"
)

// messages per day on the free plan
const OrbitDailyLimit = 3

// reported as the limit of plans without a daily cap
const Unlimited = -1

var (
	ErrInvalidPlan   = errors.New("invalid plan type")
	ErrQuotaExceeded = errors.New("daily message limit reached")
)

func (p PlanType) Valid() bool {
	switch p {
	case PlanOrbit, PlanNovaMonthly, PlanNovaYearly:
		return true
	}

	return false
}

// daily message allowance for the plan, Unlimited for paid plans
func (p PlanType) DailyLimit() int {
	if p == PlanOrbit {
		return OrbitDailyLimit
	}

	return Unlimited
}

// a subject the user studies and the exam board it is assessed by
type Subject struct {
	Subject   string `json:"subject"`
	ExamBoard string `json:"examBoard"`
}

type Preferences struct {
	Subjects          []Subject `json:"subjects"`
	PlanType          PlanType  `json:"planType"`
	MessagesUsedToday int       `json:"messagesUsedToday"`
	LastMessageDate   *string   `json:"lastMessageDate"`
}

// the preferences reported for a user who never saved any
func Defaults() *Preferences {
	return &Preferences{
		Subjects: []Subject{},
		PlanType: PlanOrbit,
	}
}

// nil fields are left untouched
type Update struct {
	Subjects *[]Subject
	PlanType *PlanType
}

// the user's message allowance for one day
type Usage struct {
	PlanType  PlanType `json:"planType"`
	Date      string   `json:"date"`
	Used      int      `json:"used"`
	Limit     int      `json:"limit"`
	Remaining int      `json:"remaining"`
}

// formats t as the calendar day usage is counted against
func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func newUsage(plan PlanType, day string, used int) *Usage {
	limit := plan.DailyLimit()
	remaining := Unlimited

	if limit != Unlimited {
		remaining = max(limit-used, 0)
	}

	return &Usage{
		PlanType:  plan,
		Date:      day,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
	}
}
