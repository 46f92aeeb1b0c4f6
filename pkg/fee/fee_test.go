package fee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyAppliesRateAboveFloor(t *testing.T) {
	p := Policy{Rate: 0.001, MinFee: 5}
	assert.InDelta(t, 10.0, p.Apply(10_000), 1e-9)
}

func TestPolicyFloorsSmallTrades(t *testing.T) {
	p := Policy{Rate: 0.001, MinFee: 5}
	assert.Equal(t, 5.0, p.Apply(100))
}

func TestScheduleBuyFeeIsCommissionOnly(t *testing.T) {
	s := Schedule{
		Commission: Policy{Rate: 0.0003, MinFee: 5},
		StampDuty:  Policy{Rate: 0.001},
	}
	assert.InDelta(t, 30.0, s.BuyFee(100_000), 1e-9)
}

func TestScheduleSellFeeAddsStampDuty(t *testing.T) {
	s := Schedule{
		Commission: Policy{Rate: 0.0003, MinFee: 5},
		StampDuty:  Policy{Rate: 0.001},
	}
	assert.InDelta(t, 130.0, s.SellFee(100_000), 1e-9)
}

func TestScheduleSellFeeFloorsBothLegsIndependently(t *testing.T) {
	s := Schedule{
		Commission: Policy{Rate: 0.0003, MinFee: 5},
		StampDuty:  Policy{Rate: 0.001, MinFee: 1},
	}
	assert.Equal(t, 5.0+1.0, s.SellFee(10))
}
