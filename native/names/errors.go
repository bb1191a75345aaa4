package names

import nativecommon "namechain/native/common"

// Top-level name validation errors, in the order the factory checks them.
var (
	ErrTldTooShort         = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: tld name too short")
	ErrTldTooLong          = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: tld name too long")
	ErrTldInvalidDotCount  = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: tld name must have exactly one dot")
	ErrTldMustStartWithDot = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: tld name must start with a dot")
	ErrTldForbidden        = nativecommon.Wrap(nativecommon.ErrStateConflict, "names: tld name forbidden or already in use")
)

// Factory and registry purchase errors.
var (
	ErrBuyingDisabled         = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "names: buying tlds disabled")
	ErrDomainBuyingDisabled   = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "names: domain buying disabled")
	ErrMintingDisabledForever = nativecommon.Wrap(nativecommon.ErrPermanentlyBlocked, "names: domain minting disabled forever")
	ErrValueBelowPrice        = nativecommon.Wrap(nativecommon.ErrInsufficientPayment, "names: value below price")
	ErrPriceZero              = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: price cannot be zero")
	ErrMintingPaused          = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "names: minting paused")
)

// Registry state errors.
var (
	ErrNameTaken            = nativecommon.Wrap(nativecommon.ErrStateConflict, "names: domain name already taken")
	ErrInvalidName          = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: invalid domain name")
	ErrNameTooLong          = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: domain name too long")
	ErrDomainNotFound       = nativecommon.Wrap(nativecommon.ErrStateConflict, "names: domain not found")
	ErrNotDomainHolder      = nativecommon.Wrap(nativecommon.ErrUnauthorized, "names: caller does not hold this domain")
	ErrMetadataFrozen       = nativecommon.Wrap(nativecommon.ErrPermanentlyBlocked, "names: metadata frozen")
	ErrReferralFeeTooHigh   = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: referral fee cannot exceed 20%")
	ErrRoyaltyTooHigh       = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: royalty cannot exceed 100%")
	ErrInvalidPrice         = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: invalid price")
	ErrInvalidLength        = nativecommon.Wrap(nativecommon.ErrInvalidInput, "names: invalid length")
	ErrNotRoyaltyFeeUpdater = nativecommon.Wrap(nativecommon.ErrUnauthorized, "names: caller is not the royalty fee updater")
	ErrNotFactory           = nativecommon.Wrap(nativecommon.ErrUnauthorized, "names: caller is not a registered factory")
	ErrTldNotFound          = nativecommon.Wrap(nativecommon.ErrStateConflict, "names: tld not found")
)
