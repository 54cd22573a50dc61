package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
)

func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"timestamp", "direction", "token_symbol", "amount_in", "amount_out", "rate", "tx_hash", "is_twap"})

	for _, t := range trades {
		writer.Write([]string{
			t.Timestamp.Format(time.RFC3339),
			string(t.Direction),
			t.TokenSymbol,
			t.AmountIn,
			t.AmountOut,
			strconv.FormatFloat(t.Rate, 'f', -1, 64),
			t.TxHash,
			strconv.FormatBool(t.IsTwap),
		})
	}
	return writer.Error()
}
