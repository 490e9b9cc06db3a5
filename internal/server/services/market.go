package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/bits"

	"notemint/internal/common"
	"notemint/internal/dbx"
	"notemint/internal/server/access"
	"notemint/internal/server/config"
	"notemint/internal/server/ledger"
	"notemint/internal/server/models"
	"notemint/internal/server/repositories/repomanager"
)

// FeePercent is the marketplace cut taken from every settled purchase.
const FeePercent = 3

// Receipt summarizes a settled purchase.
type Receipt struct {
	NftID      uint64           `json:"nft_id"`
	NoteID     uint64           `json:"note_id"`
	Buyer      models.Principal `json:"buyer"`
	Seller     models.Principal `json:"seller"`
	PriceSats  uint64           `json:"price_sats"`
	FeeSats    uint64           `json:"fee_sats"`
	SellerSats uint64           `json:"seller_sats"`
	Message    string           `json:"message"`
}

// MarketService settles NFT purchases against the external ledger. A
// purchase is a saga: ledger transfers happen first, local ownership flips
// last, so money never moves without the transfer at least being attempted
// and local state never changes when payment failed.
type MarketService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ledger      ledger.Client
	config      *config.Config
}

func NewMarketService(db *sql.DB, m repomanager.RepositoryManager, lc ledger.Client, cfg *config.Config) *MarketService {
	return &MarketService{db: db, repomanager: m, ledger: lc, config: cfg}
}

// FeeSplit divides a price into the marketplace fee and the seller's share.
// The fee is floor(price * FeePercent / 100), computed in 128-bit
// intermediate precision so prices near the uint64 ceiling do not overflow.
func FeeSplit(priceSats uint64) (fee, seller uint64) {
	hi, lo := bits.Mul64(priceSats, FeePercent)
	fee, _ = bits.Div64(hi, lo, 100)
	return fee, priceSats - fee
}

// Balance returns the caller's spendable balance on the ledger in sats.
func (s *MarketService) Balance(ctx context.Context, caller models.Principal) (uint64, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return 0, err
	}
	return s.ledger.BalanceOf(ctx, ledger.Account{Owner: caller})
}

// Buy settles the purchase of a listed NFT by the caller.
//
// Order of operations:
//  1. validate the listing,
//  2. pull the seller's share from the buyer,
//  3. pull the marketplace fee from the buyer (skipped when the fee
//     rounds to zero),
//  4. flip note ownership, revoke all sharing grants, and close the
//     listing in one database transaction.
//
// A failed fee transfer after a successful seller transfer is reported as
// *common.FeeTransferError so operators can reconcile it; local state is
// still left unchanged in that case.
func (s *MarketService) Buy(ctx context.Context, buyer models.Principal, nftID uint64) (*Receipt, error) {
	if err := access.AssertNotAnonymous(buyer); err != nil {
		return nil, err
	}

	nft, err := s.repomanager.Nfts(s.db).GetByID(ctx, nftID)
	if err != nil {
		return nil, err
	}
	if !nft.Listed {
		return nil, common.ErrNftNotListed
	}
	if nft.Price == nil || *nft.Price == 0 {
		return nil, common.ErrNftPriceInvalid
	}
	if nft.Owner == buyer {
		return nil, fmt.Errorf("%w: cannot buy your own NFT", common.ErrorValidation)
	}

	price := *nft.Price
	fee, sellerShare := FeeSplit(price)
	if sellerShare == 0 {
		return nil, common.ErrPriceBelowFee
	}

	seller := nft.Owner

	_, err = s.ledger.TransferFrom(ctx, ledger.TransferFromArgs{
		From:   ledger.Account{Owner: buyer},
		To:     ledger.Account{Owner: seller},
		Amount: sellerShare,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger transfer failed: %w", err)
	}

	if fee > 0 {
		_, err = s.ledger.TransferFrom(ctx, ledger.TransferFromArgs{
			From:   ledger.Account{Owner: buyer},
			To:     ledger.Account{Owner: models.Principal(s.config.TreasuryPrincipal)},
			Amount: fee,
		})
		if err != nil {
			return nil, &common.FeeTransferError{Err: err}
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Notes(tx).TransferOwnership(ctx, nft.NoteID, buyer); err != nil {
			return err
		}
		return s.repomanager.Nfts(tx).CompletePurchase(ctx, nftID, buyer)
	})
	if err != nil {
		return nil, err
	}

	return &Receipt{
		NftID:      nftID,
		NoteID:     nft.NoteID,
		Buyer:      buyer,
		Seller:     seller,
		PriceSats:  price,
		FeeSats:    fee,
		SellerSats: sellerShare,
		Message:    fmt.Sprintf("purchase settled: %d sats to seller, %d sats marketplace fee", sellerShare, fee),
	}, nil
}
