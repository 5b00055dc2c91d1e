package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
)

// Number of precomputed sub-pixel sample offsets.
const jitterTableSize = 1024

var (
	initOnce  sync.Once
	initDone  atomic.Bool
	jitterTab []jitter
)

type jitter struct {
	dx, dy float32
}

// Init performs the one-time module setup that every engine instance
// depends on. It is safe to call Init multiple times and from multiple
// go-routines; only the first call does any work.
func Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	initOnce.Do(func() {
		jitterTab = buildJitterTable(jitterTableSize)
		initDone.Store(true)
		logger.Debugf("initialized %d-entry sample jitter table", jitterTableSize)
	})
	return nil
}

func initialized() bool {
	return initDone.Load()
}

// Build sub-pixel offsets in [-0.5, 0.5) using the R2 low discrepancy
// sequence so that small sample counts still cover the pixel evenly.
func buildJitterTable(n int) []jitter {
	// 1/g and 1/g^2 where g is the plastic number
	const (
		a1 float32 = 0.7548776662466927
		a2 float32 = 0.5698402909980532
	)

	out := make([]jitter, n)
	for i := range out {
		x := float32(i + 1)
		out[i] = jitter{
			dx: frac(0.5+a1*x) - 0.5,
			dy: frac(0.5+a2*x) - 0.5,
		}
	}
	return out
}

func frac(v float32) float32 {
	return v - math32.Floor(v)
}
