package domain

import "github.com/crowdescrow/escrowd/pkg/safemath"

// RewardOf returns what contributor can withdraw from a round of a request
// resolved with ruling. Rounds that never escalated reimburse contributions.
// The last contributor entitled to a share of the pool also gets what the
// rounding of the previous shares left in it.
func (r *Round) RewardOf(contributor string, ruling Ruling) uint64 {
	c, ok := r.Contributions[contributor]
	if !ok {
		return 0
	}
	if !r.Appealed {
		return safemath.SaturatingAdd(c[0], c[1])
	}

	share := r.shareOf(c, ruling)
	if share == 0 || r.hasShareholdersBesides(contributor, ruling) {
		return share
	}
	return safemath.Max(share, safemath.SaturatingSub(r.RewardPool, r.Withdrawn))
}

func (r *Round) shareOf(c [2]uint64, ruling Ruling) uint64 {
	if ruling == RulingUndecided {
		total := r.TotalPaid()
		return safemath.SaturatingAdd(
			safemath.MulDiv(c[0], r.RewardPool, total),
			safemath.MulDiv(c[1], r.RewardPool, total),
		)
	}

	i := ruling.Winner().index()
	return safemath.MulDiv(c[i], r.RewardPool, r.Paid[i])
}

func (r *Round) hasShareholdersBesides(contributor string, ruling Ruling) bool {
	for who, c := range r.Contributions {
		if who == contributor {
			continue
		}
		if ruling == RulingUndecided {
			if c[0] > 0 || c[1] > 0 {
				return true
			}
			continue
		}
		if c[ruling.Winner().index()] > 0 {
			return true
		}
	}
	return false
}
