package shardrecon

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// TallyEntry aggregates every subset that interpolated to the same value.
// FirstPosition is the lexicographic position of the earliest such subset and
// FirstIndices its member indices, kept so the elected value can name the
// shares that vouch for it.
type TallyEntry struct {
	Value         Rational
	Count         int64
	FirstPosition int64
	FirstIndices  []int
}

// Tally counts candidate values keyed by their canonical rational form.
// Recording is order-independent and merging is associative, so per-worker
// tallies folded together give the same result as one sequential pass.
// A Tally is not safe for concurrent use; workers keep their own and merge.
type Tally struct {
	entries map[string]*TallyEntry
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{entries: make(map[string]*TallyEntry)}
}

// Record adds one subset result. position is the subset's lexicographic
// position within the full enumeration and indices its member indices.
func (t *Tally) Record(value Rational, position int64, indices []int) {
	key := value.String()
	entry, ok := t.entries[key]
	if !ok {
		entry = &TallyEntry{
			Value:         value,
			FirstPosition: position,
			FirstIndices:  append([]int(nil), indices...),
		}
		t.entries[key] = entry
	}
	entry.Count++
	if position < entry.FirstPosition {
		entry.FirstPosition = position
		entry.FirstIndices = append([]int(nil), indices...)
	}
}

// Merge folds other into t. Counts add and each value keeps the earliest
// first position seen by either side.
func (t *Tally) Merge(other *Tally) {
	for key, oe := range other.entries {
		entry, ok := t.entries[key]
		if !ok {
			t.entries[key] = &TallyEntry{
				Value:         oe.Value,
				Count:         oe.Count,
				FirstPosition: oe.FirstPosition,
				FirstIndices:  append([]int(nil), oe.FirstIndices...),
			}
			continue
		}
		entry.Count += oe.Count
		if oe.FirstPosition < entry.FirstPosition {
			entry.FirstPosition = oe.FirstPosition
			entry.FirstIndices = append([]int(nil), oe.FirstIndices...)
		}
	}
}

// Len returns the number of distinct candidate values.
func (t *Tally) Len() int {
	return len(t.entries)
}

// Leader returns the winning entry: highest count, ties broken by the
// earliest first position. The second result is false when the tally is
// empty.
func (t *Tally) Leader() (*TallyEntry, bool) {
	var best *TallyEntry
	for _, entry := range t.entries {
		if best == nil ||
			entry.Count > best.Count ||
			(entry.Count == best.Count && entry.FirstPosition < best.FirstPosition) {
			best = entry
		}
	}
	return best, best != nil
}

// Entries returns every candidate ordered by descending count, ties broken
// by the earlier first position.
func (t *Tally) Entries() []*TallyEntry {
	out := make([]*TallyEntry, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].FirstPosition < out[j].FirstPosition
	})
	return out
}

// ReconstructorConfig controls how a Reconstructor runs.
type ReconstructorConfig struct {
	// Workers sets how many goroutines split the subset enumeration.
	// Values below two select the sequential path.
	Workers int

	// Audit receives lifecycle events. Nil installs the NullAuditHandler.
	Audit AuditEventHandler
}

// Reconstructor elects a secret from a redundant share set by interpolating
// every k-subset and counting which constant value the subsets agree on.
// Subsets whose interpolation fails, for example because two chosen shares
// collide on x, are skipped and counted rather than failing the run, which is
// what makes the election tolerant of corrupted shares.
type Reconstructor struct {
	workers int
	audit   AuditEventHandler
}

// NewReconstructor creates a reconstructor from config, applying defaults
// for zero fields.
func NewReconstructor(config ReconstructorConfig) *Reconstructor {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	audit := config.Audit
	if audit == nil {
		audit = &NullAuditHandler{}
	}
	return &Reconstructor{workers: workers, audit: audit}
}

// Reconstruct runs the full election over all k-subsets of shares and
// returns the elected secret. It fails with ErrInsufficientShares when fewer
// than k shares are supplied and with ErrNoConsensus when no subset produced
// a candidate value. The context cancels the enumeration between subsets.
//
// The sequential and parallel paths elect the same winner: both orders rank
// candidates by total support and break ties with the globally earliest
// subset position.
func (r *Reconstructor) Reconstruct(ctx context.Context, shares []Share, k int) (*Secret, error) {
	n := len(shares)
	if n < k {
		err := ErrInsufficientShares.
			WithDetails(fmt.Sprintf("need %d shares, have %d", k, n)).
			WithContext("share_count", n).
			WithContext("threshold", k)
		r.emitValidationFailure(n, k, err)
		return nil, err
	}

	digest := ShareSetFingerprint(shares)
	start := time.Now()
	r.emitStarted(n, k, digest)

	var (
		tally   *Tally
		total   int64
		skipped int64
		err     error
	)
	if r.workers > 1 {
		tally, total, skipped, err = r.tallyParallel(ctx, shares, k, digest)
	} else {
		tally, total, skipped, err = r.tallySequential(ctx, shares, k, digest)
	}
	if err != nil {
		return nil, err
	}

	leader, ok := tally.Leader()
	if !ok {
		consensusErr := ErrNoConsensus.
			WithDetails("no subset produced a candidate value").
			WithContext("subsets_total", total).
			WithContext("subsets_skipped", skipped)
		r.emitReconstructionFailure(n, k, digest, total, skipped, consensusErr)
		return nil, consensusErr
	}

	secret := buildSecret(leader, shares, total, skipped)
	r.emitConsensusReached(n, k, digest, secret, time.Since(start))
	return secret, nil
}

// tallySequential enumerates every subset on the calling goroutine.
func (r *Reconstructor) tallySequential(ctx context.Context, shares []Share, k int, digest string) (*Tally, int64, int64, error) {
	tally := NewTally()
	var total, skipped int64
	it := NewSubsetIterator(len(shares), k)
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, 0, 0, err
		}
		total++
		value, err := InterpolateAtZero(pickShares(shares, it.Indices()))
		if err != nil {
			skipped++
			r.emitSubsetSkipped(digest, it.Position(), it.Indices(), err)
			continue
		}
		tally.Record(value, it.Position(), it.Indices())
	}
	return tally, total, skipped, nil
}

// tallyParallel splits the enumeration across workers with strided
// iterators, then merges the per-worker tallies.
func (r *Reconstructor) tallyParallel(ctx context.Context, shares []Share, k int, digest string) (*Tally, int64, int64, error) {
	g, gctx := errgroup.WithContext(ctx)

	tallies := make([]*Tally, r.workers)
	totals := make([]int64, r.workers)
	skips := make([]int64, r.workers)

	for w := 0; w < r.workers; w++ {
		g.Go(func() error {
			local := NewTally()
			it := NewStridedSubsetIterator(len(shares), k, w, r.workers)
			for it.Next() {
				if err := gctx.Err(); err != nil {
					return err
				}
				totals[w]++
				value, err := InterpolateAtZero(pickShares(shares, it.Indices()))
				if err != nil {
					skips[w]++
					r.emitSubsetSkipped(digest, it.Position(), it.Indices(), err)
					continue
				}
				local.Record(value, it.Position(), it.Indices())
			}
			tallies[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}

	tally := NewTally()
	var total, skipped int64
	for w := 0; w < r.workers; w++ {
		tally.Merge(tallies[w])
		total += totals[w]
		skipped += skips[w]
	}
	return tally, total, skipped, nil
}

func (r *Reconstructor) emitStarted(n, k int, digest string) {
	event := NewAuditEventBuilder(AuditEventReconstructionStarted, ReasonReconstructionRequest).
		WithShareSet(n, k).
		WithDigest(digest).
		BuildReconstructionStarted(SubsetCount(n, k).String(), r.workers)
	r.audit.OnReconstructionStarted(event)
}

func (r *Reconstructor) emitSubsetSkipped(digest string, position int64, indices []int, cause error) {
	event := NewAuditEventBuilder(AuditEventSubsetSkipped, ReasonInterpolationError).
		WithDigest(digest).
		WithError(cause).
		BuildSubsetSkipped(position, indices)
	r.audit.OnSubsetSkipped(event)
}

func (r *Reconstructor) emitConsensusReached(n, k int, digest string, secret *Secret, elapsed time.Duration) {
	event := NewAuditEventBuilder(AuditEventConsensusReached, ReasonConsensusElection).
		WithShareSet(n, k).
		WithDigest(digest).
		BuildConsensusReached(secret.String(), secret.Support, secret.TotalSubsets, secret.SkippedSubsets, elapsed)
	r.audit.OnConsensusReached(event)
}

func (r *Reconstructor) emitValidationFailure(n, k int, cause error) {
	event := NewAuditEventBuilder(AuditEventValidationFailure, ReasonValidationError).
		WithShareSet(n, k).
		WithError(cause).
		BuildValidationFailure("threshold", cause.Error(), map[string]interface{}{
			"share_count": n,
			"threshold":   k,
		})
	r.audit.OnValidationFailure(event)
}

func (r *Reconstructor) emitReconstructionFailure(n, k int, digest string, total, skipped int64, cause error) {
	event := NewAuditEventBuilder(AuditEventReconstructionFailure, ReasonEmptyTally).
		WithShareSet(n, k).
		WithDigest(digest).
		WithError(cause).
		BuildReconstructionFailure(total, skipped)
	r.audit.OnReconstructionFailure(event)
}

// ReconstructSecret runs a sequential election with default settings. It is
// the plain-library entry point for callers that do not need workers or
// audit wiring.
func ReconstructSecret(ctx context.Context, shares []Share, k int) (*Secret, error) {
	return NewReconstructor(ReconstructorConfig{}).Reconstruct(ctx, shares, k)
}

// pickShares resolves subset indices against the share slice.
func pickShares(shares []Share, indices []int) []Share {
	out := make([]Share, len(indices))
	for i, idx := range indices {
		out[i] = shares[idx]
	}
	return out
}

// buildSecret shapes the elected tally entry into the public Secret,
// collapsing the rational to a plain integer when it divides evenly.
func buildSecret(leader *TallyEntry, shares []Share, total, skipped int64) *Secret {
	secret := &Secret{
		SubsetIndices:  append([]int(nil), leader.FirstIndices...),
		SubsetXValues:  make([]*big.Int, 0, len(leader.FirstIndices)),
		Support:        leader.Count,
		TotalSubsets:   total,
		SkippedSubsets: skipped,
	}
	for _, idx := range leader.FirstIndices {
		secret.SubsetXValues = append(secret.SubsetXValues, shares[idx].X())
	}
	if v, ok := leader.Value.AsExactInteger(); ok {
		secret.Kind = SecretKindInteger
		secret.Value = v
	} else {
		secret.Kind = SecretKindRational
		secret.Numerator = leader.Value.Num()
		secret.Denominator = leader.Value.Den()
	}
	return secret
}
