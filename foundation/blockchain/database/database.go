// Package database handles the lower level support for maintaining the
// blockchain: transactions, blocks, and the append only chain of accepted
// blocks seeded with a genesis block.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
)

// Set of errors returned by the database.
var (
	// ErrBlockNotFound is returned when the requested block number is past
	// the end of the chain.
	ErrBlockNotFound = errors.New("block does not exist")

	// ErrTxNotFound is returned when a block doesn't hold the transaction.
	ErrTxNotFound = errors.New("transaction does not exist")

	// ErrTxHashMismatch is returned when a transaction's hash isn't the
	// digest of its other fields.
	ErrTxHashMismatch = errors.New("transaction hash does not match its content")
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(num uint64) (Block, error)
	Blocks() []Block
	Reset() error
}

// =============================================================================

// Database manages the chain of accepted blocks.
type Database struct {
	mu sync.RWMutex

	hasher      hashing.Hasher
	latestBlock Block
	length      uint64

	storage Storage
}

// New constructs a database over the specified storage. When the storage is
// empty the genesis block is written first.
func New(hasher hashing.Hasher, storage Storage) (*Database, error) {
	db := Database{
		hasher:  hasher,
		storage: storage,
	}

	blocks := storage.Blocks()
	if len(blocks) == 0 {
		genesis := GenesisBlock(hasher)
		if err := storage.Write(genesis); err != nil {
			return nil, fmt.Errorf("write genesis: %w", err)
		}
		blocks = append(blocks, genesis)
	}

	db.latestBlock = blocks[len(blocks)-1]
	db.length = uint64(len(blocks))

	return &db, nil
}

// Reset re-initializes the database back to the genesis block.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return err
	}

	genesis := GenesisBlock(db.hasher)
	if err := db.storage.Write(genesis); err != nil {
		return err
	}

	db.latestBlock = genesis
	db.length = 1

	return nil
}

// Append adds a new block to the end of the chain. The caller is responsible
// for the block being built on top of the current tip.
func (db *Database) Append(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Write(block); err != nil {
		return err
	}

	db.latestBlock = block
	db.length++

	return nil
}

// Tip returns the latest block.
func (db *Database) Tip() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Length returns the number of blocks in the chain including genesis.
func (db *Database) Length() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.length
}

// Blocks returns a copy of the chain in order starting with genesis.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.storage.Blocks()
}

// GetBlock returns the block at the specified position in the chain.
func (db *Database) GetBlock(num uint64) (Block, error) {
	return db.storage.GetBlock(num)
}

// Hasher returns the hasher the chain is linked with.
func (db *Database) Hasher() hashing.Hasher {
	return db.hasher
}

// ValidateChain walks the chain and checks every block against its parent.
func (db *Database) ValidateChain(difficulty uint) error {
	blocks := db.Blocks()

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], db.hasher, difficulty); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	return nil
}
