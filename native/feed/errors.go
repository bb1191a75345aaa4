package feed

import nativecommon "namechain/native/common"

// Errors shared by the chat and comment engines.
var (
	ErrPaused          = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "feed: contract is paused")
	ErrSuspended       = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "feed: author is suspended from posting")
	ErrEmptyURL        = nativecommon.Wrap(nativecommon.ErrInvalidInput, "feed: url cannot be empty")
	ErrPriceNotMet     = nativecommon.Wrap(nativecommon.ErrInsufficientPayment, "feed: payment is less than the price")
	ErrNotModOrOwner   = nativecommon.Wrap(nativecommon.ErrUnauthorized, "feed: not a mod or owner")
	ErrNotModOrAuthor  = nativecommon.Wrap(nativecommon.ErrUnauthorized, "feed: not a mod, owner or author")
	ErrMessageNotFound = nativecommon.Wrap(nativecommon.ErrStateConflict, "feed: message not found")
	ErrNotDeleted      = nativecommon.Wrap(nativecommon.ErrStateConflict, "feed: message is not deleted")
	ErrMinBalance      = nativecommon.Wrap(nativecommon.ErrUnauthorized, "feed: minimum balance required to post")
	ErrInvalidPrice    = nativecommon.Wrap(nativecommon.ErrInvalidInput, "feed: invalid price")
)
