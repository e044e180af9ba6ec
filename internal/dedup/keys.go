package dedup

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/jacoelho/contentlist/internal/match"
	"github.com/jacoelho/contentlist/pkg/dom"
)

// TagKey identifies a tag-name list.
type TagKey struct {
	Root      *dom.Node
	Tag       string
	Namespace dom.NamespaceID
	HTML      bool
}

// Hash mixes every key component; it only selects a recent slot. It runs on
// every tag lookup and does not allocate.
func (k TagKey) Hash() uint64 {
	var buf [13]byte
	binary.LittleEndian.PutUint64(buf[:8], k.Root.Serial())
	binary.LittleEndian.PutUint32(buf[8:12], uint32(k.Namespace))
	if k.HTML {
		buf[12] = 1
	}
	return xxhash.Sum64(buf[:]) ^ bits.RotateLeft64(xxhash.Sum64String(k.Tag), 31)
}

func (k TagKey) String() string {
	return fmt.Sprintf("tag(root=#%d ns=%d name=%q html=%t)", k.Root.Serial(), k.Namespace, k.Tag, k.HTML)
}

// FuncKey identifies a function-predicate list.
type FuncKey struct {
	Root *dom.Node
	Kind *match.FuncKind
	Arg  string
}

func (k FuncKey) String() string {
	name := "<nil>"
	if k.Kind != nil {
		name = k.Kind.Name
	}
	return fmt.Sprintf("func(root=#%d kind=%s arg=%q)", k.Root.Serial(), name, k.Arg)
}
