package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tslfeed/internal/config"
	"tslfeed/internal/datafeed/tinysoft"
	"tslfeed/internal/market"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagExchange string
	flagSymbol   string
	flagClass    string
	flagInterval string
	flagStart    string
	flagEnd      string
)

func addInstrumentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagExchange, "exchange", "", "exchange (CFFEX/SHFE/DCE/CZCE/INE/SSE/SZSE)")
	cmd.Flags().StringVar(&flagSymbol, "symbol", "", "contract symbol, e.g. rb2410")
	cmd.Flags().StringVar(&flagClass, "class", "future", "product class (future/future_option/stock_option)")
	cmd.Flags().StringVar(&flagStart, "start", "", "range start, 2006-01-02 or RFC3339")
	cmd.Flags().StringVar(&flagEnd, "end", "", "range end, 2006-01-02 or RFC3339")
	_ = cmd.MarkFlagRequired("exchange")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

var barsCmd = &cobra.Command{
	Use:   "bars",
	Short: "查询K线历史",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, feed, err := prepare()
		if err != nil {
			return err
		}
		defer feed.Close()
		iv, err := market.ParseInterval(flagInterval)
		if err != nil {
			return err
		}
		req.Interval = iv
		bars, err := feed.QueryBarHistory(cmd.Context(), req)
		if err != nil {
			return err
		}
		renderBars(bars)
		return nil
	},
}

var ticksCmd = &cobra.Command{
	Use:   "ticks",
	Short: "查询逐笔历史",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, feed, err := prepare()
		if err != nil {
			return err
		}
		defer feed.Close()
		ticks, err := feed.QueryTickHistory(cmd.Context(), req)
		if err != nil {
			return err
		}
		renderTicks(ticks)
		return nil
	},
}

func init() {
	addInstrumentFlags(barsCmd)
	barsCmd.Flags().StringVar(&flagInterval, "interval", "1d", "bar interval (1m/5m/1h/1d)")
	addInstrumentFlags(ticksCmd)
}

func prepare() (market.HistoryRequest, *tinysoft.Datafeed, error) {
	var req market.HistoryRequest

	cfg, err := loadConfig()
	if err != nil {
		return req, nil, err
	}
	start, err := parseTimeFlag(flagStart)
	if err != nil {
		return req, nil, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseTimeFlag(flagEnd)
	if err != nil {
		return req, nil, fmt.Errorf("invalid --end: %w", err)
	}
	req = market.HistoryRequest{
		Instrument: market.InstrumentKey{
			Exchange: market.Exchange(strings.ToUpper(strings.TrimSpace(flagExchange))),
			Symbol:   strings.TrimSpace(flagSymbol),
			Class:    market.ProductClass(strings.ToLower(strings.TrimSpace(flagClass))),
		},
		Start: start,
		End:   end,
	}
	feed, err := buildFeed(cfg)
	if err != nil {
		return req, nil, err
	}
	return req, feed, nil
}

func buildFeed(cfg *config.Config) (*tinysoft.Datafeed, error) {
	ts := cfg.Tinysoft
	client, err := tinysoft.NewClient(tinysoft.ClientConfig{
		Host:               ts.Host,
		Port:               ts.Port,
		Username:           ts.Username,
		Password:           ts.Password,
		Timeout:            time.Duration(ts.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: ts.InsecureSkipVerify,
		BreakerThreshold:   ts.BreakerThreshold,
		BreakerCooldown:    time.Duration(ts.BreakerCooldownSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return tinysoft.New(client, tinysoft.Options{
		MaxRetries:   ts.MaxRetries,
		RetryBackoff: time.Duration(ts.RetryBackoffMS) * time.Millisecond,
	}), nil
}

func parseTimeFlag(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc := time.FixedZone("CST", 8*60*60)
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func renderBars(bars []market.Bar) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"time", "open", "high", "low", "close", "volume", "turnover", "oi", "settle"})
	for _, b := range bars {
		t.AppendRow(table.Row{
			b.Timestamp.Format("2006-01-02 15:04:05"),
			b.Open, b.High, b.Low, b.Close, b.Volume, b.Turnover,
			optString(b.OpenInterest), optString(b.Settlement),
		})
	}
	t.Render()
}

func renderTicks(ticks []market.Tick) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"time", "last", "volume", "oi", "bid1", "bidVol1", "ask1", "askVol1"})
	for _, tk := range ticks {
		var bid, bidVol, ask, askVol decimal.Decimal
		if len(tk.Bids) > 0 {
			bid, bidVol = tk.Bids[0].Price, tk.Bids[0].Volume
		}
		if len(tk.Asks) > 0 {
			ask, askVol = tk.Asks[0].Price, tk.Asks[0].Volume
		}
		t.AppendRow(table.Row{
			tk.Timestamp.Format("2006-01-02 15:04:05.000"),
			tk.LastPrice, tk.Volume, optString(tk.OpenInterest),
			bid, bidVol, ask, askVol,
		})
	}
	t.Render()
}

func optString(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
