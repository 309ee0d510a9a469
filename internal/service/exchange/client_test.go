package exchange

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseKline(t *testing.T) {
	var row []json.RawMessage
	raw := `[1700000000000, "35000.5", "35100.0", "34900.25", "35050.75", "123.456", 1700003599999]`
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	c, err := parseKline("BTC/USDT", row)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Symbol != "BTC/USDT" {
		t.Fatalf("symbol = %s", c.Symbol)
	}
	if !c.Timestamp.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Fatalf("timestamp = %v", c.Timestamp)
	}
	if c.Open != 35000.5 || c.High != 35100.0 || c.Low != 34900.25 || c.Close != 35050.75 || c.Volume != 123.456 {
		t.Fatalf("ohlcv = %+v", c)
	}
}

func TestParseKlineShortRow(t *testing.T) {
	var row []json.RawMessage
	if err := json.Unmarshal([]byte(`[1700000000000, "1.0"]`), &row); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	if _, err := parseKline("BTC/USDT", row); err == nil {
		t.Fatal("expected error on short row")
	}
}

func TestVenueSymbol(t *testing.T) {
	if got := venueSymbol("BTC/USDT"); got != "BTCUSDT" {
		t.Fatalf("venueSymbol = %s", got)
	}
	if got := venueSymbol("ETHUSDT"); got != "ETHUSDT" {
		t.Fatalf("venueSymbol = %s", got)
	}
}
