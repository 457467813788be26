package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/merkle"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	PrevBlockHash hashing.Digest `json:"prev_block_hash"` // Hash of the previous block in the chain.
	Nonce         uint64         `json:"nonce"`           // Value identified to solve the hash solution.
	TimeStamp     uint64         `json:"timestamp"`       // Unix milliseconds the block was created.
	MerkleRoot    hashing.Digest `json:"merkle_root"`     // Merkle root hash for the transactions in this block.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  *merkle.Tree[Tx]
}

// GenesisBlock returns the first block of every chain. It has zero valued
// hashes of the hasher's width and no transactions.
func GenesisBlock(hasher hashing.Hasher) Block {
	return Block{
		Header: BlockHeader{
			PrevBlockHash: hasher.Zero(),
			MerkleRoot:    hasher.Zero(),
		},
	}
}

// Transactions returns the ordered transactions held by the block.
func (b Block) Transactions() []Tx {
	if b.Trans == nil {
		return nil
	}
	return b.Trans.Values()
}

// EncodeCanonical implements the hashing.Canonical interface. The layout is
// the header fields in declaration order followed by the transaction count
// and each transaction's hash, id and value.
func (b Block) EncodeCanonical(enc *hashing.Encoder) error {
	enc.PutBytes(b.Header.PrevBlockHash)
	enc.PutUint64(b.Header.Nonce)
	enc.PutUint64(b.Header.TimeStamp)
	enc.PutBytes(b.Header.MerkleRoot)

	trans := b.Transactions()
	enc.PutUint64(uint64(len(trans)))
	for _, tx := range trans {
		enc.PutBytes(tx.TxHash)
		if err := enc.PutValue(tx); err != nil {
			return err
		}
	}

	return nil
}

// Hash returns the unique hash for the Block.
func (b Block) Hash(hasher hashing.Hasher) (hashing.Digest, error) {
	return hasher.Hash(b)
}

// ValidateBlock takes a block and validates it against the block it was
// built on top of.
func (b Block) ValidateBlock(previousBlock Block, hasher hashing.Hasher, difficulty uint) error {
	prevHash, err := previousBlock.Hash(hasher)
	if err != nil {
		return err
	}

	if !b.Header.PrevBlockHash.Equal(prevHash) {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.Header.PrevBlockHash, prevHash)
	}

	hash, err := b.Hash(hasher)
	if err != nil {
		return err
	}

	if !hash.HasLeadingZeros(difficulty) {
		return fmt.Errorf("%s invalid block hash", hash)
	}

	trans := b.Transactions()
	if len(trans) == 0 {
		return errors.New("block has no transactions")
	}

	hashes := make([][]byte, len(trans))
	for i, tx := range trans {
		txHash, err := hasher.Hash(tx)
		if err != nil {
			return err
		}

		if !txHash.Equal(tx.TxHash) {
			return fmt.Errorf("tx[%s]: %w, got %s, exp %s", tx.TxID, ErrTxHashMismatch, tx.TxHash, txHash)
		}

		if err := b.Trans.VerifyData(tx); err != nil {
			return fmt.Errorf("tx[%s]: %w", tx.TxID, err)
		}

		hashes[i] = tx.TxHash
	}

	if err := b.Trans.Verify(); err != nil {
		return err
	}

	root, err := merkle.Root(hasher.NewHash, hashes...)
	if err != nil {
		return err
	}

	if !b.Header.MerkleRoot.Equal(root) {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", hashing.Digest(root), b.Header.MerkleRoot)
	}

	return nil
}

// TxProof represents the hashes needed to rebuild the merkle root of a
// block starting from one transaction hash.
type TxProof struct {
	TxID       string           `json:"txid"`
	TxHash     hashing.Digest   `json:"tx_hash"`
	MerkleRoot string           `json:"merkle_root"`
	Proof      []hashing.Digest `json:"proof"`
	Order      []int64          `json:"order"`
}

// Proof returns the inclusion proof for the specified transaction. An order
// of 0 means the proof hash goes first in the concatenation, 1 second.
func (b Block) Proof(txID string) (TxProof, error) {
	for _, tx := range b.Transactions() {
		if tx.TxID != txID {
			continue
		}

		hashes, order, err := b.Trans.Proof(tx)
		if err != nil {
			return TxProof{}, err
		}

		proof := make([]hashing.Digest, len(hashes))
		for i, h := range hashes {
			proof[i] = h
		}

		txp := TxProof{
			TxID:       tx.TxID,
			TxHash:     tx.TxHash,
			MerkleRoot: b.Trans.RootHex(),
			Proof:      proof,
			Order:      order,
		}

		return txp, nil
	}

	return TxProof{}, ErrTxNotFound
}

// =============================================================================

// BlockFactory assembles candidate blocks on top of a chain tip.
type BlockFactory struct {
	Hasher hashing.Hasher
	Tx     TxFactory

	// Now overrides the clock used to timestamp blocks.
	Now func() time.Time
}

// Create constructs a new candidate block referencing the specified tip. The
// block holds a single coinbase transaction and a nonce of zero.
func (f BlockFactory) Create(tip Block) (Block, error) {
	prevHash, err := tip.Hash(f.Hasher)
	if err != nil {
		return Block{}, fmt.Errorf("hash tip: %w", err)
	}

	coinbase, err := f.Tx.Create()
	if err != nil {
		return Block{}, fmt.Errorf("create coinbase: %w", err)
	}

	// Construct a merkle tree from the transactions for this block. The root
	// of this tree will be part of the block to be mined.
	tree, err := merkle.NewTree([]Tx{coinbase}, merkle.WithHashStrategy[Tx](f.Hasher.NewHash))
	if err != nil {
		return Block{}, err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	nb := Block{
		Header: BlockHeader{
			PrevBlockHash: prevHash,
			Nonce:         0,
			TimeStamp:     uint64(now().UnixMilli()),
			MerkleRoot:    tree.MerkleRoot,
		},
		Trans: tree,
	}

	return nb, nil
}

// =============================================================================

// BlockData represents the block as it's presented outside the engine.
type BlockData struct {
	Hash   hashing.Digest `json:"hash"`
	Header BlockHeader    `json:"block"`
	Trans  []Tx           `json:"trans"`
}

// NewBlockData constructs the value to present a block.
func NewBlockData(block Block, hasher hashing.Hasher) (BlockData, error) {
	hash, err := block.Hash(hasher)
	if err != nil {
		return BlockData{}, err
	}

	trans := block.Transactions()
	if trans == nil {
		trans = []Tx{}
	}

	bd := BlockData{
		Hash:   hash,
		Header: block.Header,
		Trans:  trans,
	}

	return bd, nil
}

// ToBlock converts a BlockData back into a Block.
func ToBlock(blockData BlockData, hasher hashing.Hasher) (Block, error) {
	nb := Block{
		Header: blockData.Header,
	}

	if len(blockData.Trans) > 0 {
		tree, err := merkle.NewTree(blockData.Trans, merkle.WithHashStrategy[Tx](hasher.NewHash))
		if err != nil {
			return Block{}, err
		}
		nb.Trans = tree
	}

	return nb, nil
}
