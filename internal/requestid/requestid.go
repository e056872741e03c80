package requestid

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sqids/sqids-go"
)

// Generator hands out short, URL-safe request IDs built from the process start
// time and a per-process sequence number.
type Generator struct {
	sqids *sqids.Sqids
	epoch uint64
	seq   atomic.Uint64
}

func New() (*Generator, error) {
	s, err := sqids.New(sqids.Options{
		MinLength: 10,
	})
	if err != nil {
		return nil, err
	}
	return &Generator{sqids: s, epoch: uint64(time.Now().Unix())}, nil
}

func (g *Generator) Next() string {
	n := g.seq.Add(1)
	id, err := g.sqids.Encode([]uint64{g.epoch, n})
	if err != nil {
		return strconv.FormatUint(g.epoch, 36) + "-" + strconv.FormatUint(n, 36)
	}
	return id
}
