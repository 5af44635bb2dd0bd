package substratenode

import "github.com/chainswarm/substrate-indexer/internal/xerrors"

// wrapTransport classifies a raw RPC error as retryable unless it looks
// like a metadata-null condition, in which case withRetry's isMetadataNull
// check (applied to the returned, already-wrapped error's message) still
// recognizes it and forces a reset before the next attempt.
func wrapTransport(err error, msg string) error {
	return xerrors.Retryable(err, msg)
}
