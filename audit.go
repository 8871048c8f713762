package shardrecon

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	// Reconstruction lifecycle events
	AuditEventReconstructionStarted AuditEventType = "reconstruction_started"
	AuditEventConsensusReached      AuditEventType = "consensus_reached"
	AuditEventReconstructionFailure AuditEventType = "reconstruction_failure"

	// Enumeration events
	AuditEventSubsetSkipped AuditEventType = "subset_skipped"

	// Error events
	AuditEventValidationFailure AuditEventType = "validation_failure"
)

// AuditEventReason represents why an event occurred
type AuditEventReason string

const (
	ReasonReconstructionRequest AuditEventReason = "reconstruction_request"
	ReasonConsensusElection     AuditEventReason = "consensus_election"
	ReasonInterpolationError    AuditEventReason = "interpolation_error"
	ReasonEmptyTally            AuditEventReason = "empty_tally"
	ReasonValidationError       AuditEventReason = "validation_error"
)

// AuditEvent represents a single audit event emitted during reconstruction
type AuditEvent struct {
	// Event metadata
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
	EventType AuditEventType   `json:"event_type"`
	Reason    AuditEventReason `json:"reason"`

	// Share set information
	ShareCount     int    `json:"share_count,omitempty"`
	Threshold      int    `json:"threshold,omitempty"`
	ShareSetDigest string `json:"share_set_digest,omitempty"`

	// Success/failure information
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Additional context
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ReconstructionStartedEvent marks the beginning of a reconstruction run
type ReconstructionStartedEvent struct {
	AuditEvent

	// ExpectedSubsets is the subset count as a decimal string, since the
	// binomial can exceed any fixed-width integer
	ExpectedSubsets string `json:"expected_subsets"`
	Workers         int    `json:"workers"`
}

// SubsetSkippedEvent records one subset excluded from the tally because its
// interpolation failed
type SubsetSkippedEvent struct {
	AuditEvent

	Position int64 `json:"position"`
	Indices  []int `json:"indices"`
}

// ConsensusReachedEvent records a successful election
type ConsensusReachedEvent struct {
	AuditEvent

	Value          string        `json:"value"`
	Support        int64         `json:"support"`
	TotalSubsets   int64         `json:"total_subsets"`
	SkippedSubsets int64         `json:"skipped_subsets"`
	Duration       time.Duration `json:"duration"`
}

// ValidationFailureEvent contains details about validation failures
type ValidationFailureEvent struct {
	AuditEvent

	ValidationType string                 `json:"validation_type"`
	FailureReason  string                 `json:"failure_reason"`
	InputValues    map[string]interface{} `json:"input_values,omitempty"`
}

// ReconstructionFailureEvent records a run that ended without a winner
type ReconstructionFailureEvent struct {
	AuditEvent

	TotalSubsets   int64 `json:"total_subsets"`
	SkippedSubsets int64 `json:"skipped_subsets"`
}

// AuditEventHandler defines the interface for handling audit events.
// Applications implement this interface to record events according to their
// needs. Handlers must be safe for concurrent use: a reconstructor running
// with multiple workers invokes OnSubsetSkipped from worker goroutines.
type AuditEventHandler interface {
	// OnReconstructionStarted is called when a reconstruction run begins
	OnReconstructionStarted(event *ReconstructionStartedEvent)

	// OnSubsetSkipped is called for each subset excluded from the tally
	OnSubsetSkipped(event *SubsetSkippedEvent)

	// OnConsensusReached is called when a run elects a winner
	OnConsensusReached(event *ConsensusReachedEvent)

	// OnValidationFailure is called when input validation fails
	OnValidationFailure(event *ValidationFailureEvent)

	// OnReconstructionFailure is called when a run ends without a winner
	OnReconstructionFailure(event *ReconstructionFailureEvent)
}

// NullAuditHandler is a no-op implementation of AuditEventHandler
// Used when no audit handling is needed
type NullAuditHandler struct{}

func (n *NullAuditHandler) OnReconstructionStarted(event *ReconstructionStartedEvent) {}
func (n *NullAuditHandler) OnSubsetSkipped(event *SubsetSkippedEvent)                 {}
func (n *NullAuditHandler) OnConsensusReached(event *ConsensusReachedEvent)           {}
func (n *NullAuditHandler) OnValidationFailure(event *ValidationFailureEvent)         {}
func (n *NullAuditHandler) OnReconstructionFailure(event *ReconstructionFailureEvent) {}

// ZapAuditHandler forwards audit events to a structured logger. Safe for
// concurrent use.
type ZapAuditHandler struct {
	logger *zap.Logger
}

// NewZapAuditHandler creates a handler that logs events through logger.
// A nil logger discards everything.
func NewZapAuditHandler(logger *zap.Logger) *ZapAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAuditHandler{logger: logger}
}

func (h *ZapAuditHandler) OnReconstructionStarted(event *ReconstructionStartedEvent) {
	h.logger.Info("reconstruction started",
		zap.String("event_id", event.EventID),
		zap.Int("share_count", event.ShareCount),
		zap.Int("threshold", event.Threshold),
		zap.String("expected_subsets", event.ExpectedSubsets),
		zap.Int("workers", event.Workers),
		zap.String("share_set", event.ShareSetDigest),
	)
}

func (h *ZapAuditHandler) OnSubsetSkipped(event *SubsetSkippedEvent) {
	h.logger.Warn("subset skipped",
		zap.String("event_id", event.EventID),
		zap.Int64("position", event.Position),
		zap.Ints("indices", event.Indices),
		zap.String("error", event.Error),
	)
}

func (h *ZapAuditHandler) OnConsensusReached(event *ConsensusReachedEvent) {
	h.logger.Info("consensus reached",
		zap.String("event_id", event.EventID),
		zap.String("value", event.Value),
		zap.Int64("support", event.Support),
		zap.Int64("total_subsets", event.TotalSubsets),
		zap.Int64("skipped_subsets", event.SkippedSubsets),
		zap.Duration("elapsed", event.Duration),
	)
}

func (h *ZapAuditHandler) OnValidationFailure(event *ValidationFailureEvent) {
	h.logger.Error("validation failure",
		zap.String("event_id", event.EventID),
		zap.String("validation_type", event.ValidationType),
		zap.String("reason", event.FailureReason),
		zap.Any("input_values", event.InputValues),
	)
}

func (h *ZapAuditHandler) OnReconstructionFailure(event *ReconstructionFailureEvent) {
	h.logger.Error("reconstruction failure",
		zap.String("event_id", event.EventID),
		zap.Int64("total_subsets", event.TotalSubsets),
		zap.Int64("skipped_subsets", event.SkippedSubsets),
		zap.String("error", event.Error),
	)
}

// AuditEventBuilder helps construct audit events with proper defaults
type AuditEventBuilder struct {
	event *AuditEvent
}

// NewAuditEventBuilder creates a new audit event builder
func NewAuditEventBuilder(eventType AuditEventType, reason AuditEventReason) *AuditEventBuilder {
	return &AuditEventBuilder{
		event: &AuditEvent{
			EventID:   generateEventID(),
			Timestamp: time.Now(),
			EventType: eventType,
			Reason:    reason,
			Success:   true, // Default to success, can be overridden
			Metadata:  make(map[string]interface{}),
		},
	}
}

// WithShareSet sets the share count and subset size for the event
func (b *AuditEventBuilder) WithShareSet(shareCount, threshold int) *AuditEventBuilder {
	b.event.ShareCount = shareCount
	b.event.Threshold = threshold
	return b
}

// WithDigest sets the share set digest for the event
func (b *AuditEventBuilder) WithDigest(digest string) *AuditEventBuilder {
	b.event.ShareSetDigest = digest
	return b
}

// WithError marks the event as failed and sets error information
func (b *AuditEventBuilder) WithError(err error) *AuditEventBuilder {
	b.event.Success = false
	if err != nil {
		b.event.Error = err.Error()
	}
	return b
}

// WithMetadata adds metadata to the event
func (b *AuditEventBuilder) WithMetadata(key string, value interface{}) *AuditEventBuilder {
	b.event.Metadata[key] = value
	return b
}

// Build returns the constructed audit event
func (b *AuditEventBuilder) Build() *AuditEvent {
	return b.event
}

// BuildReconstructionStarted returns a ReconstructionStartedEvent
func (b *AuditEventBuilder) BuildReconstructionStarted(expectedSubsets string, workers int) *ReconstructionStartedEvent {
	return &ReconstructionStartedEvent{
		AuditEvent:      *b.event,
		ExpectedSubsets: expectedSubsets,
		Workers:         workers,
	}
}

// BuildSubsetSkipped returns a SubsetSkippedEvent
func (b *AuditEventBuilder) BuildSubsetSkipped(position int64, indices []int) *SubsetSkippedEvent {
	return &SubsetSkippedEvent{
		AuditEvent: *b.event,
		Position:   position,
		Indices:    indices,
	}
}

// BuildConsensusReached returns a ConsensusReachedEvent
func (b *AuditEventBuilder) BuildConsensusReached(value string, support, total, skipped int64, duration time.Duration) *ConsensusReachedEvent {
	return &ConsensusReachedEvent{
		AuditEvent:     *b.event,
		Value:          value,
		Support:        support,
		TotalSubsets:   total,
		SkippedSubsets: skipped,
		Duration:       duration,
	}
}

// BuildValidationFailure returns a ValidationFailureEvent
func (b *AuditEventBuilder) BuildValidationFailure(validationType, failureReason string, inputValues map[string]interface{}) *ValidationFailureEvent {
	return &ValidationFailureEvent{
		AuditEvent:     *b.event,
		ValidationType: validationType,
		FailureReason:  failureReason,
		InputValues:    inputValues,
	}
}

// BuildReconstructionFailure returns a ReconstructionFailureEvent
func (b *AuditEventBuilder) BuildReconstructionFailure(total, skipped int64) *ReconstructionFailureEvent {
	return &ReconstructionFailureEvent{
		AuditEvent:     *b.event,
		TotalSubsets:   total,
		SkippedSubsets: skipped,
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return uuid.NewString()
}

// shareSetDomain versions the fingerprint stream layout. Bump it whenever
// the layout changes.
const shareSetDomain = "SHARDRECON_SHARE_SET_FINGERPRINT_v1"

// ShareSetFingerprint returns a stable hex digest identifying a share set.
// Shares are hashed in sorted order, so any permutation of the same set
// produces the same digest. Audit events carry the digest instead of the
// share values, which keeps logs correlatable without repeating shares.
func ShareSetFingerprint(shares []Share) string {
	sorted := make([]Share, len(shares))
	copy(sorted, shares)
	sort.Slice(sorted, func(i, j int) bool {
		c := valueOrZero(sorted[i].x).Cmp(valueOrZero(sorted[j].x))
		if c != 0 {
			return c < 0
		}
		return valueOrZero(sorted[i].y).Cmp(valueOrZero(sorted[j].y)) < 0
	})

	var buf bytes.Buffer
	buf.WriteString(shareSetDomain)
	writeFingerprintUint32(&buf, uint32(len(sorted)))
	for _, share := range sorted {
		writeFingerprintInt(&buf, valueOrZero(share.x))
		writeFingerprintInt(&buf, valueOrZero(share.y))
	}

	sum := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// writeFingerprintInt writes sign, length and magnitude so distinct integers
// occupy distinct positions in the stream.
func writeFingerprintInt(buf *bytes.Buffer, v *big.Int) {
	sign := byte(1)
	switch {
	case v.Sign() < 0:
		sign = 0
	case v.Sign() > 0:
		sign = 2
	}
	buf.WriteByte(sign)
	mag := v.Bytes()
	writeFingerprintUint32(buf, uint32(len(mag)))
	buf.Write(mag)
}

func writeFingerprintUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
