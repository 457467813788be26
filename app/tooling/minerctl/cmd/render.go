package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/pterm/pterm"
)

// renderBlock prints the header and the transactions of a block in a box.
func renderBlock(num int, bd database.BlockData) error {
	data := pterm.TableData{
		{"PreviousHash", bd.Header.PrevBlockHash.HexDigits()},
		{"MerkleRoot", bd.Header.MerkleRoot.HexDigits()},
		{"Nonce", strconv.FormatUint(bd.Header.Nonce, 10)},
		{"Timestamp", time.UnixMilli(int64(bd.Header.TimeStamp)).UTC().Format(time.RFC3339Nano)},
	}
	for _, tx := range bd.Trans {
		data = append(data, []string{"Tx " + tx.TxID, fmt.Sprintf("%s value=%d", tx.TxHash.HexDigits(), tx.Value)})
	}

	table, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Block %d  %s", num, bd.Hash.HexDigits())
	pterm.DefaultBox.WithTitle(pterm.LightCyan(title)).WithTitleTopLeft().Println(table)

	return nil
}

// renderChain prints every block from genesis to the tip.
func renderChain(blocks []database.BlockData) error {
	pterm.DefaultSection.Println("Start of blockchain")

	for i, bd := range blocks {
		if err := renderBlock(i, bd); err != nil {
			return err
		}
	}

	pterm.DefaultSection.Println("End of blockchain")

	return nil
}

// renderStats prints the mining statistics.
func renderStats(st stats) error {
	data := pterm.TableData{
		{"Blocks mined", "Attempts", "Last mine", "Average mine", "Paused"},
		{
			strconv.Itoa(st.BlocksMined),
			strconv.FormatUint(st.Attempts, 10),
			formatMs(st.LastMineDurationMs),
			formatMs(st.AverageMineDurationMs),
			strconv.FormatBool(st.Paused),
		},
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatMs(ms int64) string {
	return fmt.Sprintf("%.3fs", float64(ms)/1000)
}
