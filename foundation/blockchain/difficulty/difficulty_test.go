package difficulty_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/difficulty"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// stamps builds a timestamp series with a fixed interval in seconds.
func stamps(count int, interval uint64) []uint64 {
	ts := make([]uint64, count)
	for i := range ts {
		ts[i] = 1_700_000_000 + uint64(i)*interval
	}

	return ts
}

func TestRetarget(t *testing.T) {
	cfg := difficulty.Config{
		ExpectedInterval: 600 * time.Second,
		MinAdjust:        0.25,
		MaxAdjust:        4.0,
	}

	type table struct {
		name     string
		interval uint64
		ratio    float64
		clamped  bool
	}

	tt := []table{
		{name: "on schedule", interval: 600, ratio: 1.0, clamped: false},
		{name: "twice too fast", interval: 300, ratio: 2.0, clamped: false},
		{name: "twice too slow", interval: 1200, ratio: 0.5, clamped: false},
		{name: "fast beyond the clamp", interval: 60, ratio: 4.0, clamped: true},
		{name: "slow beyond the clamp", interval: 6000, ratio: 0.25, clamped: true},
	}

	t.Log("Given windows mined at different speeds.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen the window is %s.", testID, tst.name)
			{
				pred, err := difficulty.Retarget(stamps(11, tst.interval), 256, cfg)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould retarget: %v.", failed, testID, err)
				}

				if math.Abs(pred.Ratio-tst.ratio) > 1e-9 {
					t.Fatalf("\t%s\tTest %d:\tShould compute ratio %.2f, got %.4f.", failed, testID, tst.ratio, pred.Ratio)
				}
				t.Logf("\t%s\tTest %d:\tShould compute ratio %.2f.", success, testID, tst.ratio)

				if pred.Clamped != tst.clamped {
					t.Fatalf("\t%s\tTest %d:\tShould report clamped[%t].", failed, testID, tst.clamped)
				}
				t.Logf("\t%s\tTest %d:\tShould report clamped[%t].", success, testID, tst.clamped)

				if want := 256 * tst.ratio; math.Abs(pred.NewDifficulty-want) > 1e-9 {
					t.Fatalf("\t%s\tTest %d:\tShould scale difficulty to %.2f, got %.4f.", failed, testID, want, pred.NewDifficulty)
				}
				t.Logf("\t%s\tTest %d:\tShould scale difficulty to %.2f.", success, testID, 256*tst.ratio)
			}
		}
	}
}

func TestRetargetDeterministic(t *testing.T) {
	t.Log("Given the same window twice.")
	{
		ts := stamps(8, 450)
		a, err := difficulty.Retarget(ts, 128, difficulty.DefaultConfig())
		if err != nil {
			t.Fatalf("\t%s\tShould retarget: %v.", failed, err)
		}
		b, err := difficulty.Retarget(ts, 128, difficulty.DefaultConfig())
		if err != nil {
			t.Fatalf("\t%s\tShould retarget: %v.", failed, err)
		}

		if a != b {
			t.Fatalf("\t%s\tShould produce identical predictions.", failed)
		}
		t.Logf("\t%s\tShould produce identical predictions.", success)
	}
}

func TestRetargetEdges(t *testing.T) {
	t.Log("Given too little history.")
	{
		if _, err := difficulty.Retarget([]uint64{1_700_000_000}, 256, difficulty.DefaultConfig()); !errors.Is(err, difficulty.ErrInsufficientHistory) {
			t.Fatalf("\t%s\tShould refuse a single timestamp: %v.", failed, err)
		}
		t.Logf("\t%s\tShould refuse a single timestamp.", success)
	}

	t.Log("Given a window with no elapsed time.")
	{
		pred, err := difficulty.Retarget([]uint64{5, 5, 5}, 256, difficulty.DefaultConfig())
		if err != nil {
			t.Fatalf("\t%s\tShould still retarget: %v.", failed, err)
		}

		if pred.Ratio != difficulty.DefaultMaxAdjust || !pred.Clamped {
			t.Fatalf("\t%s\tShould clamp straight to the maximum: %+v.", failed, pred)
		}
		t.Logf("\t%s\tShould clamp straight to the maximum.", success)
	}
}

func TestNextBits(t *testing.T) {
	type table struct {
		name  string
		bits  uint
		ratio float64
		want  uint
	}

	tt := []table{
		{name: "steady", bits: 8, ratio: 1.0, want: 8},
		{name: "double", bits: 8, ratio: 2.0, want: 9},
		{name: "quadruple", bits: 8, ratio: 4.0, want: 10},
		{name: "halve", bits: 8, ratio: 0.5, want: 7},
		{name: "quarter", bits: 8, ratio: 0.25, want: 6},
		{name: "floor at one bit", bits: 1, ratio: 0.25, want: 1},
		{name: "bad ratio", bits: 8, ratio: 0, want: 8},
	}

	t.Log("Given the need to map ratios onto bit targets.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen the ratio is %s.", testID, tst.name)
			{
				if got := difficulty.NextBits(tst.bits, tst.ratio); got != tst.want {
					t.Fatalf("\t%s\tTest %d:\tShould produce %d bits, got %d.", failed, testID, tst.want, got)
				}
				t.Logf("\t%s\tTest %d:\tShould produce %d bits.", success, testID, tst.want)
			}
		}
	}
}
