// Package policy holds every numeric threshold the leave and activity
// validators enforce. The values are fixed by HR policy and change only with
// a code change; tests inject modified copies to probe boundaries.
package policy

import "github.com/shopspring/decimal"

type NoticeTier struct {
	// MaxDays is the largest requested duration this tier covers.
	// 0 means no upper bound.
	MaxDays    int
	NoticeDays int
}

type Config struct {
	// Paid family: vacation, sick, personal, paid_leave share one annual quota.
	PaidLeaveAnnualQuota decimal.Decimal

	// NoticeTiers are evaluated in order; the first tier whose MaxDays covers
	// the requested duration decides the minimum lead time.
	NoticeTiers []NoticeTier

	OverseasMinServiceYears float64

	EmergencyMonthlyLimit int

	BirthdayMaxDays    int
	AnniversaryMaxDays int

	MaternityMinServiceDays int
	MaternityMaxDays        int
	PaternityMaxDays        int

	WFHQuarterlyCap     int
	WFHPastWindowMonths int
	WFHMinNoticeDays    int

	PartialDayMonthlyCapMinutes int
	PartialDayMinNoticeDays     int
}

func Default() Config {
	return Config{
		PaidLeaveAnnualQuota: decimal.NewFromInt(15),
		NoticeTiers: []NoticeTier{
			{MaxDays: 1, NoticeDays: 3},
			{MaxDays: 3, NoticeDays: 5},
			{MaxDays: 0, NoticeDays: 10},
		},
		OverseasMinServiceYears:     3,
		EmergencyMonthlyLimit:       1,
		BirthdayMaxDays:             1,
		AnniversaryMaxDays:          1,
		MaternityMinServiceDays:     36,
		MaternityMaxDays:            90,
		PaternityMaxDays:            15,
		WFHQuarterlyCap:             2,
		WFHPastWindowMonths:         1,
		WFHMinNoticeDays:            1,
		PartialDayMonthlyCapMinutes: 500,
		PartialDayMinNoticeDays:     1,
	}
}

// RequiredNoticeDays returns the minimum lead time for a request of the given
// length.
func (c Config) RequiredNoticeDays(totalDays int) int {
	for _, tier := range c.NoticeTiers {
		if tier.MaxDays == 0 || totalDays <= tier.MaxDays {
			return tier.NoticeDays
		}
	}
	return 0
}
