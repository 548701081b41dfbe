package domain

import "time"

// Candle is one OHLCV bar. Sequences are ordered oldest first.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // open time, unix millis
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// TickerSnapshot is the 24h market state of a single asset.
type TickerSnapshot struct {
	Symbol    string  `json:"symbol"` // e.g. "BTC-USDT"
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"` // percent
	Volume24h float64 `json:"volume24h"` // quote notional
	High24h   float64 `json:"high24h"`
	Low24h    float64 `json:"low24h"`
}

// MACDSignal classifies the MACD state.
type MACDSignal string

const (
	MACDBullish MACDSignal = "bullish"
	MACDBearish MACDSignal = "bearish"
	MACDNeutral MACDSignal = "neutral"
)

// MACDResult holds the last MACD, signal line and histogram values.
type MACDResult struct {
	Value      float64    `json:"value"`
	SignalLine float64    `json:"signalLine"`
	Histogram  float64    `json:"histogram"`
	Signal     MACDSignal `json:"signal"`
	Crossover  bool       `json:"crossover"` // line crossed signal on the last bar
}

// TrendDirection is the dominant close-to-close direction.
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

type TrendResult struct {
	Direction TrendDirection `json:"direction"`
	Strength  float64        `json:"strength"` // 0-100
}

type VolumeResult struct {
	Increase float64 `json:"increase"` // percent vs previous window
	Trend    string  `json:"trend"`    // "increasing", "decreasing", "flat"
}

// AdvancedIndicators are only computed when the advanced variant is enabled.
type AdvancedIndicators struct {
	ADX        float64 `json:"adx"`
	ATR        float64 `json:"atr"`
	ATRPercent float64 `json:"atrPercent"`
}

// IndicatorSet is the full indicator readout for one asset.
type IndicatorSet struct {
	RSI        float64             `json:"rsi"`
	MACD       MACDResult          `json:"macd"`
	SMA        float64             `json:"sma"`
	Trend      TrendResult         `json:"trend"`
	Volume     VolumeResult        `json:"volume"`
	Liquidity  float64             `json:"liquidity"`  // -1..1 price/volume correlation
	Resistance float64             `json:"resistance"` // mean of recent top highs
	Volatility float64             `json:"volatility"`
	Advanced   *AdvancedIndicators `json:"advanced,omitempty"`
}

// DynamicLevel is a support or resistance candidate ranked by touches.
type DynamicLevel struct {
	Price   float64 `json:"price"`
	Touches int     `json:"touches"`
}

// FibonacciLevels holds retracements from the 24h high and extensions above price.
type FibonacciLevels struct {
	Level236 float64 `json:"level236"`
	Level382 float64 `json:"level382"`
	Level500 float64 `json:"level500"`
	Level618 float64 `json:"level618"`
	Level786 float64 `json:"level786"`
	Ext1272  float64 `json:"ext1272"`
	Ext1618  float64 `json:"ext1618"`
	Ext2000  float64 `json:"ext2000"`
	Ext2618  float64 `json:"ext2618"`
}

// LevelSet holds support/resistance levels. After sanitization
// Support3 < Support2 < Support1 < price < Resistance1 < Resistance2 < Resistance3.
type LevelSet struct {
	Pivot              float64         `json:"pivot"`
	Support1           float64         `json:"support1"`
	Support2           float64         `json:"support2"`
	Support3           float64         `json:"support3"`
	Resistance1        float64         `json:"resistance1"`
	Resistance2        float64         `json:"resistance2"`
	Resistance3        float64         `json:"resistance3"`
	Fibonacci          FibonacciLevels `json:"fibonacci"`
	DynamicSupports    []DynamicLevel  `json:"dynamicSupports,omitempty"`
	DynamicResistances []DynamicLevel  `json:"dynamicResistances,omitempty"`
}

// TargetSet is a strictly increasing ladder of price targets above the current price.
type TargetSet struct {
	Immediate float64   `json:"immediate"`
	Targets   []float64 `json:"targets"`
	LongTerm  float64   `json:"longTerm"`
}

type StopLossTiers struct {
	Conservative float64 `json:"conservative"`
	Moderate     float64 `json:"moderate"`
	Aggressive   float64 `json:"aggressive"`
}

type TakeProfitLevel struct {
	Price      float64 `json:"price"`
	GainPct    float64 `json:"gainPct"`
	Allocation string  `json:"allocation"`
}

// RiskRating is the qualitative volatility bucket of a plan.
type RiskRating string

const (
	RiskLow    RiskRating = "low"
	RiskMedium RiskRating = "medium"
	RiskHigh   RiskRating = "high"
)

// EntryExitPlan is the trade plan derived from indicators and levels.
type EntryExitPlan struct {
	EntryPoint         float64           `json:"entryPoint"`
	StopLoss           float64           `json:"stopLoss"` // selected tier
	StopLossTiers      StopLossTiers     `json:"stopLossTiers"`
	TakeProfits        []TakeProfitLevel `json:"takeProfits"`
	RiskRewardRatio    float64           `json:"riskRewardRatio"`
	MeetsTargetRatio   bool              `json:"meetsTargetRatio"`
	Strategy           string            `json:"strategy"`
	RiskRating         RiskRating        `json:"riskRating"`
	PositionSizeAdvice string            `json:"positionSizeAdvice"`
}

// SignalKind names a scoring rule.
type SignalKind string

const (
	SignalRSIBreakout     SignalKind = "RSI_BREAKOUT"
	SignalMACD            SignalKind = "MACD_SIGNAL"
	SignalSMABreakout     SignalKind = "SMA_BREAKOUT"
	SignalResistanceBreak SignalKind = "RESISTANCE_BREAK"
	SignalLiquidityCross  SignalKind = "LIQUIDITY_CROSS"
	SignalVolumeIncrease  SignalKind = "VOLUME_INCREASE"
	SignalTrendStrength   SignalKind = "TREND_STRENGTH"
)

// Signal is a fired scoring rule.
type Signal struct {
	Kind   SignalKind `json:"kind"`
	Points float64    `json:"points"`
	Detail string     `json:"detail"`
}

// AssetState tracks an asset through the ranking pipeline.
type AssetState string

const (
	StatePending   AssetState = "PENDING"
	StateEvaluated AssetState = "EVALUATED"
	StateAccepted  AssetState = "ACCEPTED"
	StateRejected  AssetState = "REJECTED"
)

// AnalysisRecord is the full evaluation of one asset.
type AnalysisRecord struct {
	Symbol     string         `json:"symbol"`
	Snapshot   TickerSnapshot `json:"snapshot"`
	Indicators IndicatorSet   `json:"indicators"`
	Levels     LevelSet       `json:"levels"`
	Score      float64        `json:"score"`
	Status     string         `json:"status"` // "STRONG", "GOOD", "MODERATE", "WEAK"
	Signals    []Signal       `json:"signals"`
	Targets    *TargetSet     `json:"targets,omitempty"`
	Plan       *EntryExitPlan `json:"plan,omitempty"`
	Confidence float64        `json:"confidence"`
	Analysis   string         `json:"analysis"`
	State      AssetState     `json:"state"`
	Simulated  bool           `json:"simulated,omitempty"`
}

// RankingCycle is one scheduled evaluation of the market.
type RankingCycle struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Evaluated  int              `json:"evaluated"`
	Records    []AnalysisRecord `json:"records"`
}

// DeviceToken is a registered FCM device.
type DeviceToken struct {
	Token        string    `json:"token"`
	RegisteredAt time.Time `json:"registeredAt"`
}
