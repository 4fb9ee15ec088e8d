package services

import (
	"errors"
	"fmt"
)

// Domain-rule failures returned as values to the interaction layer. Call
// sites wrap these with the actionable detail, e.g.
//
//	fmt.Errorf("%w: officer slots 8/8", ErrRankFull)
//
// so handlers can errors.Is-match the kind and still render the specific
// message the user needs.
var (
	// Clan directory
	ErrClanNotFound           = errors.New("clan not found")
	ErrAlreadyRegistered      = errors.New("role is already registered as a clan")
	ErrOwnerAlreadyAffiliated = errors.New("owner is already affiliated with a clan")
	ErrUserAlreadyAffiliated  = errors.New("user is already affiliated with a clan")
	ErrRankFull               = errors.New("rank is at capacity")
	ErrInvalidRank            = errors.New("invalid rank")
	ErrNotAffiliated          = errors.New("user is not a member of this clan")
	ErrTargetIsOwner          = errors.New("target is the clan owner")
	ErrCannotRemoveOwner      = errors.New("the clan owner cannot be removed")
	ErrInvalidAuthority       = errors.New("insufficient authority")
	ErrInviteNotFound         = errors.New("invite not found")
	ErrInviteExpired          = errors.New("invite has expired")

	// Economy ledger
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientBank    = errors.New("insufficient bank funds")
	ErrBankFull            = errors.New("bank is at capacity")
	ErrSanctuaryFull       = errors.New("sanctuary is at capacity")
	ErrInvalidCurrency     = errors.New("unknown currency")

	// Rewards and shop
	ErrAlreadyClaimed = errors.New("reward already claimed")
	ErrItemNotFound   = errors.New("item not found in shop")

	// ErrStoreIO wraps persistence failures. The only fatal-to-the-operation
	// class: handlers log it and render a generic internal error instead of
	// the raw fault.
	ErrStoreIO = errors.New("store I/O failure")
)

// storeErr tags an underlying persistence failure so the boundary can tell
// it apart from domain-rule violations.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreIO, err)
}
