package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/storage"
)

// KVState persists token records in a key-value database using RLP encoding.
type KVState struct {
	db storage.Database
}

// NewKVState binds the token ledger state to a database.
func NewKVState(db storage.Database) *KVState {
	return &KVState{db: db}
}

func infoKey(token crypto.Address) []byte {
	return []byte(fmt.Sprintf("token/info/%x", token.Bytes()))
}

func balanceKey(token, account crypto.Address) []byte {
	return []byte(fmt.Sprintf("token/balance/%x/%x", token.Bytes(), account.Bytes()))
}

func frozenKey(token, account crypto.Address) []byte {
	return []byte(fmt.Sprintf("token/frozen/%x/%x", token.Bytes(), account.Bytes()))
}

func allowanceKey(token, owner, spender crypto.Address) []byte {
	return []byte(fmt.Sprintf("token/allowance/%x/%x/%x", token.Bytes(), owner.Bytes(), spender.Bytes()))
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
		return false, fmt.Errorf("token state: decode %q: %w", key, err)
	}
	return true, nil
}

func (s *KVState) put(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("token state: encode %q: %w", key, err)
	}
	return s.db.Put(key, encoded)
}

func (s *KVState) TokenGetInfo(token crypto.Address) (*Info, bool, error) {
	info := new(Info)
	ok, err := s.get(infoKey(token), info)
	if err != nil || !ok {
		return nil, false, err
	}
	return info, true, nil
}

func (s *KVState) TokenPutInfo(token crypto.Address, info *Info) error {
	return s.put(infoKey(token), info)
}

func (s *KVState) TokenBalance(token, account crypto.Address) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := s.get(balanceKey(token, account), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

func (s *KVState) TokenSetBalance(token, account crypto.Address, balance *big.Int) error {
	if balance == nil {
		balance = big.NewInt(0)
	}
	return s.put(balanceKey(token, account), balance)
}

func (s *KVState) TokenFrozen(token, account crypto.Address) (bool, error) {
	var frozen bool
	ok, err := s.get(frozenKey(token, account), &frozen)
	if err != nil || !ok {
		return false, err
	}
	return frozen, nil
}

func (s *KVState) TokenSetFrozen(token, account crypto.Address, frozen bool) error {
	return s.put(frozenKey(token, account), frozen)
}

func (s *KVState) TokenAllowance(token, owner, spender crypto.Address) (*Allowance, bool, error) {
	allowance := new(Allowance)
	ok, err := s.get(allowanceKey(token, owner, spender), allowance)
	if err != nil || !ok {
		return nil, false, err
	}
	return allowance, true, nil
}

func (s *KVState) TokenPutAllowance(token, owner, spender crypto.Address, allowance *Allowance) error {
	return s.put(allowanceKey(token, owner, spender), allowance)
}
