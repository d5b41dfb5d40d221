package lending

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/storage"
)

// KVState persists the decomposed lending records in a key-value database
// using RLP encoding. Each record lives under its own prefixed key so an
// operation reads and writes only the slices of state it touches.
type KVState struct {
	db storage.Database
}

// NewKVState binds the lending state layer to a database.
func NewKVState(db storage.Database) *KVState {
	return &KVState{db: db}
}

var (
	poolKey                = []byte("lending/pool")
	reservePrefix          = "lending/reserve/"
	positionPrefix         = "lending/position/"
	lenderSharesPrefix     = "lending/lender/"
	auctionPrefix          = "lending/auction/"
	activeAuctionPrefix    = "lending/auction-active/"
	collateralFactorPrefix = "lending/collateral-factor/"
	tokenContractPrefix    = "lending/token/"
)

func reserveKey(asset string) []byte {
	return []byte(reservePrefix + asset)
}

func positionKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", positionPrefix, addr.Bytes()))
}

func lenderSharesKey(asset string, addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%s/%x", lenderSharesPrefix, asset, addr.Bytes()))
}

func auctionKey(id [32]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", auctionPrefix, id))
}

func activeAuctionKey(borrower crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", activeAuctionPrefix, borrower.Bytes()))
}

func collateralFactorKey(token crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", collateralFactorPrefix, token.Bytes()))
}

func tokenContractKey(asset string) []byte {
	return []byte(tokenContractPrefix + asset)
}

func (s *KVState) get(key []byte, out interface{}) (bool, error) {
	raw, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("lending state: decode %q: %w", key, err)
	}
	return true, nil
}

func (s *KVState) put(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("lending state: encode %q: %w", key, err)
	}
	return s.db.Put(key, encoded)
}

func (s *KVState) LendingGetPool() (*Pool, bool, error) {
	pool := new(Pool)
	ok, err := s.get(poolKey, pool)
	if err != nil || !ok {
		return nil, false, err
	}
	return pool, true, nil
}

func (s *KVState) LendingPutPool(pool *Pool) error {
	return s.put(poolKey, pool)
}

func (s *KVState) LendingGetReserve(asset string) (*Reserve, bool, error) {
	reserve := new(Reserve)
	ok, err := s.get(reserveKey(asset), reserve)
	if err != nil || !ok {
		return nil, false, err
	}
	return reserve, true, nil
}

func (s *KVState) LendingPutReserve(asset string, reserve *Reserve) error {
	return s.put(reserveKey(asset), reserve)
}

func (s *KVState) LendingGetPosition(addr crypto.Address) (*Position, bool, error) {
	position := new(Position)
	ok, err := s.get(positionKey(addr), position)
	if err != nil || !ok {
		return nil, false, err
	}
	return position, true, nil
}

func (s *KVState) LendingPutPosition(addr crypto.Address, position *Position) error {
	return s.put(positionKey(addr), position)
}

func (s *KVState) LendingLenderShares(asset string, addr crypto.Address) (*big.Int, error) {
	shares := new(big.Int)
	ok, err := s.get(lenderSharesKey(asset, addr), shares)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return shares, nil
}

func (s *KVState) LendingSetLenderShares(asset string, addr crypto.Address, shares *big.Int) error {
	return s.put(lenderSharesKey(asset, addr), cloneBigInt(shares))
}

func (s *KVState) LendingGetAuction(id [32]byte) (*Auction, bool, error) {
	auction := new(Auction)
	ok, err := s.get(auctionKey(id), auction)
	if err != nil || !ok {
		return nil, false, err
	}
	return auction, true, nil
}

func (s *KVState) LendingPutAuction(auction *Auction) error {
	return s.put(auctionKey(auction.ID), auction)
}

func (s *KVState) LendingActiveAuction(borrower crypto.Address) ([32]byte, bool, error) {
	var id [32]byte
	ok, err := s.get(activeAuctionKey(borrower), &id)
	return id, ok, err
}

func (s *KVState) LendingSetActiveAuction(borrower crypto.Address, id [32]byte) error {
	return s.put(activeAuctionKey(borrower), id)
}

func (s *KVState) LendingClearActiveAuction(borrower crypto.Address) error {
	err := s.db.Delete(activeAuctionKey(borrower))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KVState) LendingGetBackstopDeposit(addr crypto.Address) (*BackstopDeposit, bool, error) {
	deposit := new(BackstopDeposit)
	ok, err := s.get([]byte(fmt.Sprintf("lending/backstop/%x", addr.Bytes())), deposit)
	if err != nil || !ok {
		return nil, false, err
	}
	return deposit, true, nil
}

func (s *KVState) LendingPutBackstopDeposit(addr crypto.Address, deposit *BackstopDeposit) error {
	return s.put([]byte(fmt.Sprintf("lending/backstop/%x", addr.Bytes())), deposit)
}

func (s *KVState) LendingCollateralFactor(token crypto.Address) (uint32, bool, error) {
	var factor uint32
	ok, err := s.get(collateralFactorKey(token), &factor)
	return factor, ok, err
}

func (s *KVState) LendingSetCollateralFactor(token crypto.Address, factorBps uint32) error {
	return s.put(collateralFactorKey(token), factorBps)
}

func (s *KVState) LendingTokenContract(asset string) (crypto.Address, bool, error) {
	var raw [20]byte
	ok, err := s.get(tokenContractKey(asset), &raw)
	if err != nil || !ok {
		return crypto.Address{}, false, err
	}
	return keyAddress(raw, crypto.RWAPrefix), true, nil
}

func (s *KVState) LendingSetTokenContract(asset string, token crypto.Address) error {
	return s.put(tokenContractKey(asset), addressKey(token))
}
