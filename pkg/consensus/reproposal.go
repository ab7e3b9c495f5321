package consensus

import (
	"sort"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
)

// DelegateWeight is one committee member's vote and stake weight, used by
// the quorum and reproposal-subset calculations of §4.3.2.
type DelegateWeight struct {
	Vote  uint64
	Stake uint64
}

// Subset is one candidate re-proposal group: the delegates guaranteed to
// accept it (Support) and the request indices it covers (Indices, sorted
// ascending).
type Subset struct {
	Support crypto.Bitmap
	Indices []int
}

// GenerateSubsets implements §4.3.2's re-proposal subset generator.
//
// support[i] is the set of delegates whose rejection bitmap marked request i
// as acceptable. alreadyVote/alreadyStake is the weight already counted from
// delegates who accepted the whole original batch — they never appear in any
// per-request rejection bitmap, since they rejected nothing, but they still
// support every candidate subset. weights is indexed by delegate id.
// quorumVote/quorumStake are the committee's quorum thresholds.
func GenerateSubsets(alreadyVote, alreadyStake uint64, support []crypto.Bitmap, weights [consensustype.DelegateCount]DelegateWeight, quorumVote, quorumStake uint64) []Subset {
	groups := groupByIdenticalSupport(support)
	merged := mergeSubsetsIntoSupersets(groups)

	var out []Subset
	for _, g := range merged {
		vote, stake := sumWeight(g.Support, weights)
		if alreadyVote+vote >= quorumVote && alreadyStake+stake >= quorumStake {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return bitmapLess(out[i].Support, out[j].Support)
	})
	return out
}

// groupByIdenticalSupport partitions request indices by identical S_i.
func groupByIdenticalSupport(support []crypto.Bitmap) []Subset {
	byBitmap := make(map[crypto.Bitmap][]int)
	var order []crypto.Bitmap
	for i, s := range support {
		if _, ok := byBitmap[s]; !ok {
			order = append(order, s)
		}
		byBitmap[s] = append(byBitmap[s], i)
	}
	groups := make([]Subset, 0, len(order))
	for _, s := range order {
		groups = append(groups, Subset{Support: s, Indices: byBitmap[s]})
	}
	return groups
}

// mergeSubsetsIntoSupersets merges any group whose support set is a subset
// of another's into that superset, iterating from the largest support set
// down so a chain of subsets collapses into its single maximal superset.
func mergeSubsetsIntoSupersets(groups []Subset) []Subset {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Support.PopCount() > groups[j].Support.PopCount()
	})

	var kept []Subset
	for _, g := range groups {
		merged := false
		for i := range kept {
			if isSubset(g.Support, kept[i].Support) {
				kept[i].Indices = append(kept[i].Indices, g.Indices...)
				merged = true
				break
			}
		}
		if !merged {
			kept = append(kept, g)
		}
	}
	for i := range kept {
		sort.Ints(kept[i].Indices)
	}
	return kept
}

func isSubset(a, b crypto.Bitmap) bool {
	return a&b == a
}

func sumWeight(support crypto.Bitmap, weights [consensustype.DelegateCount]DelegateWeight) (vote, stake uint64) {
	for i := uint8(0); i < consensustype.DelegateCount; i++ {
		if support.IsSet(i) {
			vote += weights[i].Vote
			stake += weights[i].Stake
		}
	}
	return
}

// delegateIDs returns the ascending list of delegate ids set in b.
func delegateIDs(b crypto.Bitmap) []uint8 {
	var ids []uint8
	for i := uint8(0); i < consensustype.DelegateCount; i++ {
		if b.IsSet(i) {
			ids = append(ids, i)
		}
	}
	return ids
}

// bitmapLess orders two delegate sets by lexicographic comparison of their
// ascending id sequences (§4.3.2's tie-break rule).
func bitmapLess(a, b crypto.Bitmap) bool {
	as, bs := delegateIDs(a), delegateIDs(b)
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}
